package pipeline

import (
	"context"

	"github.com/poiesic/forumsync/search"
	"github.com/poiesic/forumsync/watermark"
)

// Batch is one extracted-and-transformed slice of a pipeline's source.
// Next is the cursor to persist once every operation has loaded; Count is
// the number of source rows the batch covers, which can exceed the number
// of operations when rows are grouped per document.
type Batch struct {
	Operations []search.Operation
	Next       watermark.Cursor
	Count      int
}

// Pipeline is one replication stream from a source table into the index.
type Pipeline interface {
	// Name is the stable identifier the cursor is stored under.
	Name() string

	// DefaultCursor is the starting position when no cursor is stored.
	DefaultCursor() watermark.Cursor

	// EnsureSchema makes the target index, templates and merge scripts
	// ready before the first write.
	EnsureSchema(ctx context.Context) error

	// Fetch extracts at most limit rows past the cursor and transforms
	// them into index operations. A Count below limit means the pipeline
	// is caught up.
	Fetch(ctx context.Context, cursor watermark.Cursor, limit int) (*Batch, error)
}

// Loader applies a batch of operations to the index. The batch either
// succeeds in full or returns an error; there is no partial success.
type Loader interface {
	Load(ctx context.Context, ops []search.Operation) (*search.LoadResult, error)
}

var _ Loader = (*search.BulkLoader)(nil)

// SchemaEnsurer installs index templates and stored scripts. Satisfied by
// *search.Client.
type SchemaEnsurer interface {
	EnsureSchema(ctx context.Context, s search.Schema) error
}

var _ SchemaEnsurer = (*search.Client)(nil)
