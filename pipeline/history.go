package pipeline

import (
	"context"
	"strconv"
	"time"

	"github.com/poiesic/forumsync/core"
	"github.com/poiesic/forumsync/search"
	"github.com/poiesic/forumsync/source"
	"github.com/poiesic/forumsync/transform"
	"github.com/poiesic/forumsync/watermark"
)

// HistoryPipeline replicates edit observations into their own index, one
// document per version, with the edited content run through the same
// transformation as live posts.
type HistoryPipeline struct {
	source      source.PostVersions
	transformer *transform.Transformer
	schemas     SchemaEnsurer
}

// NewHistoryPipeline creates the edit-history pipeline.
func NewHistoryPipeline(src source.PostVersions, tr *transform.Transformer, schemas SchemaEnsurer) *HistoryPipeline {
	return &HistoryPipeline{source: src, transformer: tr, schemas: schemas}
}

var _ Pipeline = (*HistoryPipeline)(nil)

func (p *HistoryPipeline) Name() string { return "post_history" }

func (p *HistoryPipeline) DefaultCursor() watermark.Cursor { return watermark.Epoch() }

func (p *HistoryPipeline) EnsureSchema(ctx context.Context) error {
	return p.schemas.EnsureSchema(ctx, search.HistorySchema())
}

func (p *HistoryPipeline) Fetch(ctx context.Context, cursor watermark.Cursor, limit int) (*Batch, error) {
	versions, full, err := fetchPastTies(ctx, limit, p.Name(),
		func(ctx context.Context, n int) ([]core.PostVersion, error) {
			return p.source.PostVersionsAfter(ctx, cursor.LastUpdatedAt, n)
		},
		func(v core.PostVersion) time.Time { return v.UpdatedAt })
	if err != nil {
		return nil, err
	}
	count := len(versions)
	if full {
		count = limit
	}

	next := cursor
	ops := make([]search.Operation, 0, len(versions))
	for _, v := range versions {
		res := p.transformer.Transform(v.Content)
		doc := HistoryDocument{
			VersionID:            v.VersionID,
			PostID:               v.PostID,
			TopicID:              v.TopicID,
			BoardID:              v.BoardID,
			Author:               v.Author,
			AuthorUID:            v.AuthorUID,
			Title:                v.Title,
			Content:              res.Content,
			ContentWithoutQuotes: res.ContentWithoutQuotes,
			Date:                 v.EditedAt,
			Deleted:              v.Deleted,
		}
		ops = append(ops, search.UpsertOp(search.HistoryIndex, strconv.FormatInt(v.VersionID, 10), doc))
		next.LastUpdatedAt = v.UpdatedAt
	}

	return &Batch{Operations: ops, Next: next, Count: count}, nil
}
