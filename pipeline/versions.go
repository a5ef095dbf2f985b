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

// VersionsPipeline merges observed edits into post documents, grouped per
// post. The merge script keeps one entry per version id and recomputes the
// edit count and deleted flag from the merged set.
type VersionsPipeline struct {
	source  source.PostVersions
	schemas SchemaEnsurer
}

// NewVersionsPipeline creates the post-versions pipeline.
func NewVersionsPipeline(src source.PostVersions, schemas SchemaEnsurer) *VersionsPipeline {
	return &VersionsPipeline{source: src, schemas: schemas}
}

var _ Pipeline = (*VersionsPipeline)(nil)

func (p *VersionsPipeline) Name() string { return "post_versions" }

func (p *VersionsPipeline) DefaultCursor() watermark.Cursor { return watermark.Epoch() }

func (p *VersionsPipeline) EnsureSchema(ctx context.Context) error {
	return p.schemas.EnsureSchema(ctx, search.PostsSchema())
}

func (p *VersionsPipeline) Fetch(ctx context.Context, cursor watermark.Cursor, limit int) (*Batch, error) {
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
	byPost := make(map[int64][]core.PostVersion)
	order := make([]int64, 0, len(versions))
	for _, v := range versions {
		if _, seen := byPost[v.PostID]; !seen {
			order = append(order, v.PostID)
		}
		byPost[v.PostID] = append(byPost[v.PostID], v)
		next.LastUpdatedAt = v.UpdatedAt
	}

	ops := make([]search.Operation, 0, len(order))
	for _, postID := range order {
		group := byPost[postID]
		entries := make([]VersionEntry, len(group))
		deleted := false
		for i, v := range group {
			entries[i] = NewVersionEntry(v)
			if v.Deleted {
				deleted = true
			}
		}

		seed := map[string]any{
			"post_id":    postID,
			"topic_id":   group[0].TopicID,
			"board_id":   group[0].BoardID,
			"author":     group[0].Author,
			"author_uid": group[0].AuthorUID,
			"versions":   entries,
			"edit_count": len(entries),
			"deleted":    deleted,
		}
		params := map[string]any{"versions": entries}
		ops = append(ops, search.MergeOp(search.PostsIndex, strconv.FormatInt(postID, 10),
			search.ScriptPostVersionsMerge, params, seed))
	}

	return &Batch{Operations: ops, Next: next, Count: count}, nil
}
