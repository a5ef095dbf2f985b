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

// TopicsPipeline replicates threads into the topics index and flags each
// thread's first post as topic starter in the posts index.
type TopicsPipeline struct {
	source  source.Topics
	schemas SchemaEnsurer
}

// NewTopicsPipeline creates the topics pipeline.
func NewTopicsPipeline(src source.Topics, schemas SchemaEnsurer) *TopicsPipeline {
	return &TopicsPipeline{source: src, schemas: schemas}
}

var _ Pipeline = (*TopicsPipeline)(nil)

func (p *TopicsPipeline) Name() string { return "topics" }

func (p *TopicsPipeline) DefaultCursor() watermark.Cursor { return watermark.Epoch() }

func (p *TopicsPipeline) EnsureSchema(ctx context.Context) error {
	// The starter flag lands in the posts index, so both schema families
	// must be in place.
	if err := p.schemas.EnsureSchema(ctx, search.TopicsSchema()); err != nil {
		return err
	}
	return p.schemas.EnsureSchema(ctx, search.PostsSchema())
}

func (p *TopicsPipeline) Fetch(ctx context.Context, cursor watermark.Cursor, limit int) (*Batch, error) {
	topics, full, err := fetchPastTies(ctx, limit, p.Name(),
		func(ctx context.Context, n int) ([]core.Topic, error) {
			return p.source.TopicsAfter(ctx, cursor.LastUpdatedAt, n)
		},
		func(t core.Topic) time.Time { return t.UpdatedAt })
	if err != nil {
		return nil, err
	}
	count := len(topics)
	if full {
		count = limit
	}

	next := cursor
	ops := make([]search.Operation, 0, 2*len(topics))
	for _, t := range topics {
		doc := TopicDocument{
			TopicID:     t.TopicID,
			FirstPostID: t.FirstPostID,
			BoardID:     t.BoardID,
			Author:      t.Author,
			AuthorUID:   t.AuthorUID,
			Title:       t.Title,
			Date:        t.PostedAt,
		}
		ops = append(ops, search.UpsertOp(search.TopicsIndex, strconv.FormatInt(t.TopicID, 10), doc))

		seed := map[string]any{
			"post_id":       t.FirstPostID,
			"topic_id":      t.TopicID,
			"board_id":      t.BoardID,
			"author":        t.Author,
			"author_uid":    t.AuthorUID,
			"topic_starter": true,
		}
		ops = append(ops, search.MergeOp(search.PostsIndex, strconv.FormatInt(t.FirstPostID, 10),
			search.ScriptPostStarterMerge, map[string]any{}, seed))

		next.LastUpdatedAt = t.UpdatedAt
	}

	return &Batch{Operations: ops, Next: next, Count: count}, nil
}
