package source

import (
	"context"
	"time"

	"github.com/poiesic/forumsync/core"
)

// Posts reads post rows. PostsAfter is the steady-state path ordered by
// modification time; PostsAfterID is the backfill path ordered by post id,
// used once when seeding a fresh index from a known starting id.
type Posts interface {
	PostsAfter(ctx context.Context, since time.Time, limit int) ([]core.Post, error)
	PostsAfterID(ctx context.Context, id int64, limit int) ([]core.Post, error)
}

// PostVersions reads edit-history rows, denormalized with the parent post's
// topic, board and author via a join.
type PostVersions interface {
	PostVersionsAfter(ctx context.Context, since time.Time, limit int) ([]core.PostVersion, error)
}

// Merits reads merit-award rows.
type Merits interface {
	MeritsAfter(ctx context.Context, since time.Time, limit int) ([]core.Merit, error)
}

// Topics reads topic rows.
type Topics interface {
	TopicsAfter(ctx context.Context, since time.Time, limit int) ([]core.Topic, error)
}

// Boards reads board rows.
type Boards interface {
	BoardsAfter(ctx context.Context, since time.Time, limit int) ([]core.Board, error)
}

// AddressMentions reads scraped address-mention rows.
type AddressMentions interface {
	AddressMentionsAfter(ctx context.Context, since time.Time, limit int) ([]core.AddressMention, error)
}

// Store aggregates every extractor contract the pipelines consume.
type Store interface {
	Posts
	PostVersions
	Merits
	Topics
	Boards
	AddressMentions
	Close() error
}
