package pipeline

import (
	"context"
	"strconv"
	"time"

	"github.com/poiesic/forumsync/core"
	"github.com/poiesic/forumsync/search"
	"github.com/poiesic/forumsync/source"
	"github.com/poiesic/forumsync/watermark"
)

// BoardsPipeline replicates the board hierarchy.
type BoardsPipeline struct {
	source  source.Boards
	schemas SchemaEnsurer
}

// NewBoardsPipeline creates the boards pipeline.
func NewBoardsPipeline(src source.Boards, schemas SchemaEnsurer) *BoardsPipeline {
	return &BoardsPipeline{source: src, schemas: schemas}
}

var _ Pipeline = (*BoardsPipeline)(nil)

func (p *BoardsPipeline) Name() string { return "boards" }

func (p *BoardsPipeline) DefaultCursor() watermark.Cursor { return watermark.Epoch() }

func (p *BoardsPipeline) EnsureSchema(ctx context.Context) error {
	return p.schemas.EnsureSchema(ctx, search.BoardsSchema())
}

func (p *BoardsPipeline) Fetch(ctx context.Context, cursor watermark.Cursor, limit int) (*Batch, error) {
	boards, full, err := fetchPastTies(ctx, limit, p.Name(),
		func(ctx context.Context, n int) ([]core.Board, error) {
			return p.source.BoardsAfter(ctx, cursor.LastUpdatedAt, n)
		},
		func(b core.Board) time.Time { return b.UpdatedAt })
	if err != nil {
		return nil, err
	}
	count := len(boards)
	if full {
		count = limit
	}

	next := cursor
	ops := make([]search.Operation, 0, len(boards))
	for _, b := range boards {
		doc := BoardDocument{BoardID: b.BoardID, Name: b.Name, ParentID: b.ParentID}
		ops = append(ops, search.UpsertOp(search.BoardsIndex, strconv.FormatInt(b.BoardID, 10), doc))
		next.LastUpdatedAt = b.UpdatedAt
	}

	return &Batch{Operations: ops, Next: next, Count: count}, nil
}
