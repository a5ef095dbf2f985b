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

// MeritsPipeline merges merit awards into post documents. Each batch groups
// awards by post and emits one scripted merge per post; the script skips
// awards already present and recomputes the merit sum, so replays and
// overlaps converge to the same document.
type MeritsPipeline struct {
	source  source.Merits
	schemas SchemaEnsurer
}

// NewMeritsPipeline creates the merits pipeline.
func NewMeritsPipeline(src source.Merits, schemas SchemaEnsurer) *MeritsPipeline {
	return &MeritsPipeline{source: src, schemas: schemas}
}

var _ Pipeline = (*MeritsPipeline)(nil)

func (p *MeritsPipeline) Name() string { return "merits" }

func (p *MeritsPipeline) DefaultCursor() watermark.Cursor { return watermark.Epoch() }

func (p *MeritsPipeline) EnsureSchema(ctx context.Context) error {
	return p.schemas.EnsureSchema(ctx, search.PostsSchema())
}

func (p *MeritsPipeline) Fetch(ctx context.Context, cursor watermark.Cursor, limit int) (*Batch, error) {
	merits, full, err := fetchPastTies(ctx, limit, p.Name(),
		func(ctx context.Context, n int) ([]core.Merit, error) {
			return p.source.MeritsAfter(ctx, cursor.LastUpdatedAt, n)
		},
		func(m core.Merit) time.Time { return m.UpdatedAt })
	if err != nil {
		return nil, err
	}
	count := len(merits)
	if full {
		count = limit
	}

	next := cursor
	byPost := make(map[int64][]core.Merit)
	order := make([]int64, 0, len(merits))
	for _, m := range merits {
		if _, seen := byPost[m.PostID]; !seen {
			order = append(order, m.PostID)
		}
		byPost[m.PostID] = append(byPost[m.PostID], m)
		next.LastUpdatedAt = m.UpdatedAt
	}

	ops := make([]search.Operation, 0, len(order))
	for _, postID := range order {
		group := byPost[postID]
		entries := make([]MeritEntry, len(group))
		sum := 0
		for i, m := range group {
			entries[i] = NewMeritEntry(m)
			sum += m.Amount
		}

		// The seed is indexed verbatim when the post document does not
		// exist yet, so it must already carry the computed aggregate.
		seed := map[string]any{
			"post_id":   postID,
			"topic_id":  group[0].TopicID,
			"merits":    entries,
			"merit_sum": sum,
		}
		params := map[string]any{"merits": entries}
		ops = append(ops, search.MergeOp(search.PostsIndex, strconv.FormatInt(postID, 10),
			search.ScriptPostMeritsMerge, params, seed))
	}

	return &Batch{Operations: ops, Next: next, Count: count}, nil
}
