package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for derived documents that have no natural
// single-column key in the relational store.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b
// hashing. Identical content always produces the same ID, which keeps writes
// of derived documents idempotent.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// String returns the decimal form used as a search-index document id.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Post is a forum post as replicated from the relational store.
// Content holds the rendered rich-text markup as scraped.
type Post struct {
	PostID    int64
	TopicID   int64
	BoardID   int64
	AuthorUID int64
	Author    string
	Title     string
	Content   string
	PostedAt  time.Time
	Archived  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostVersion is one observed edit of a post. Deleted marks the observation
// where the post was found removed rather than edited.
type PostVersion struct {
	VersionID int64
	PostID    int64
	Title     string
	Content   string
	EditedAt  time.Time
	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time

	// Denormalized from the parent post by the extractor join.
	TopicID   int64
	BoardID   int64
	AuthorUID int64
	Author    string
}

// Merit is a merit award attached to a post.
type Merit struct {
	MeritID     int64
	PostID      int64
	TopicID     int64
	Amount      int
	SenderUID   int64
	ReceiverUID int64
	AwardedAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Topic is a forum thread, identified by its first post.
type Topic struct {
	TopicID     int64
	FirstPostID int64
	BoardID     int64
	AuthorUID   int64
	Author      string
	Title       string
	PostedAt    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Board is a forum board. ParentID is zero for top-level boards.
type Board struct {
	BoardID   int64
	Name      string
	ParentID  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AddressMention is a cryptocurrency address extracted from a post by the
// scraping layer. The pair (Address, PostID) is its identity.
type AddressMention struct {
	Address     string
	Coin        string
	PostID      int64
	TopicID     int64
	BoardID     int64
	AuthorUID   int64
	Author      string
	MentionedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DocID derives the stable document id for an address mention from its
// identity pair.
func (m *AddressMention) DocID() ID {
	return IDFromContent(m.Address + ":" + strconv.FormatInt(m.PostID, 10))
}
