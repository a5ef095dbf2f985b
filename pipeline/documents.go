package pipeline

import (
	"time"

	"github.com/poiesic/forumsync/core"
	"github.com/poiesic/forumsync/transform"
)

// PostDocument is the owner view of a post in the posts index. Merge-managed
// fields (merits, versions, topic_starter and their aggregates) are absent
// here so refreshing an edited post never touches them.
type PostDocument struct {
	PostID               int64             `json:"post_id"`
	TopicID              int64             `json:"topic_id"`
	BoardID              int64             `json:"board_id"`
	Author               string            `json:"author"`
	AuthorUID            int64             `json:"author_uid"`
	Title                string            `json:"title"`
	Content              string            `json:"content"`
	ContentWithoutQuotes string            `json:"content_without_quotes"`
	Quotes               []transform.Quote `json:"quotes"`
	URLs                 []string          `json:"urls"`
	ImageURLs            []string          `json:"image_urls"`
	Date                 time.Time         `json:"date"`
	Archived             bool              `json:"archived"`
}

// NewPostDocument builds a post's owner document from the row and its
// transformed content.
func NewPostDocument(post core.Post, res *transform.Result) PostDocument {
	return PostDocument{
		PostID:               post.PostID,
		TopicID:              post.TopicID,
		BoardID:              post.BoardID,
		Author:               post.Author,
		AuthorUID:            post.AuthorUID,
		Title:                post.Title,
		Content:              res.Content,
		ContentWithoutQuotes: res.ContentWithoutQuotes,
		Quotes:               res.Quotes,
		URLs:                 res.URLs,
		ImageURLs:            res.ImageURLs,
		Date:                 post.PostedAt,
		Archived:             post.Archived,
	}
}

// MeritEntry is one merit award inside a post document's merits array.
type MeritEntry struct {
	MeritID   int64     `json:"merit_id"`
	Amount    int       `json:"amount"`
	SenderUID int64     `json:"sender_uid"`
	Date      time.Time `json:"date"`
}

// NewMeritEntry converts a merit row to its in-document form.
func NewMeritEntry(m core.Merit) MeritEntry {
	return MeritEntry{
		MeritID:   m.MeritID,
		Amount:    m.Amount,
		SenderUID: m.SenderUID,
		Date:      m.AwardedAt,
	}
}

// VersionEntry is one observed edit inside a post document's versions array.
type VersionEntry struct {
	VersionID int64     `json:"version_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Date      time.Time `json:"date"`
	Deleted   bool      `json:"deleted"`
}

// NewVersionEntry converts an edit-history row to its in-document form.
func NewVersionEntry(v core.PostVersion) VersionEntry {
	return VersionEntry{
		VersionID: v.VersionID,
		Title:     v.Title,
		Content:   v.Content,
		Date:      v.EditedAt,
		Deleted:   v.Deleted,
	}
}

// TopicDocument is a thread in the topics index.
type TopicDocument struct {
	TopicID     int64     `json:"topic_id"`
	FirstPostID int64     `json:"first_post_id"`
	BoardID     int64     `json:"board_id"`
	Author      string    `json:"author"`
	AuthorUID   int64     `json:"author_uid"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
}

// HistoryDocument is one edit observation in the posts_history index, with
// the edited content transformed the same way live posts are.
type HistoryDocument struct {
	VersionID            int64     `json:"version_id"`
	PostID               int64     `json:"post_id"`
	TopicID              int64     `json:"topic_id"`
	BoardID              int64     `json:"board_id"`
	Author               string    `json:"author"`
	AuthorUID            int64     `json:"author_uid"`
	Title                string    `json:"title"`
	Content              string    `json:"content"`
	ContentWithoutQuotes string    `json:"content_without_quotes"`
	Date                 time.Time `json:"date"`
	Deleted              bool      `json:"deleted"`
}

// AddressDocument is one address mention in the addresses index.
type AddressDocument struct {
	Address   string    `json:"address"`
	Coin      string    `json:"coin"`
	PostID    int64     `json:"post_id"`
	TopicID   int64     `json:"topic_id"`
	BoardID   int64     `json:"board_id"`
	Author    string    `json:"author"`
	AuthorUID int64     `json:"author_uid"`
	Date      time.Time `json:"date"`
}

// BoardDocument is one board in the boards index.
type BoardDocument struct {
	BoardID  int64  `json:"board_id"`
	Name     string `json:"name"`
	ParentID int64  `json:"parent_id"`
}
