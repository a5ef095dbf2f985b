// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

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

// PostsPipeline replicates posts into the posts index. It has two cursor
// modes: a backfill walks posts by id from a chosen starting point, and once
// a short batch shows the walk has caught up the cursor hands over to
// modification-time order for steady-state operation. While backfilling it
// tracks the highest modification time seen so the handoff loses nothing.
type PostsPipeline struct {
	source      source.Posts
	transformer *transform.Transformer
	schemas     SchemaEnsurer
}

// NewPostsPipeline creates the posts pipeline.
func NewPostsPipeline(src source.Posts, tr *transform.Transformer, schemas SchemaEnsurer) *PostsPipeline {
	return &PostsPipeline{source: src, transformer: tr, schemas: schemas}
}

var _ Pipeline = (*PostsPipeline)(nil)

func (p *PostsPipeline) Name() string { return "posts" }

func (p *PostsPipeline) DefaultCursor() watermark.Cursor { return watermark.Epoch() }

func (p *PostsPipeline) EnsureSchema(ctx context.Context) error {
	return p.schemas.EnsureSchema(ctx, search.PostsSchema())
}

func (p *PostsPipeline) Fetch(ctx context.Context, cursor watermark.Cursor, limit int) (*Batch, error) {
	var posts []core.Post
	var err error
	var count int

	switch cursor.Mode {
	case watermark.ModeMonotonicID:
		// Ids are unique, so the id walk has no tie groups to protect.
		posts, err = p.source.PostsAfterID(ctx, cursor.LastID, limit)
		if err != nil {
			return nil, err
		}
		count = len(posts)
	default:
		var full bool
		posts, full, err = fetchPastTies(ctx, limit, p.Name(),
			func(ctx context.Context, n int) ([]core.Post, error) {
				return p.source.PostsAfter(ctx, cursor.LastUpdatedAt, n)
			},
			func(p core.Post) time.Time { return p.UpdatedAt })
		if err != nil {
			return nil, err
		}
		count = len(posts)
		if full {
			count = limit
		}
	}

	next := cursor
	ops := make([]search.Operation, 0, len(posts))
	for _, post := range posts {
		doc := NewPostDocument(post, p.transformer.Transform(post.Content))
		ops = append(ops, search.UpsertOp(search.PostsIndex, strconv.FormatInt(post.PostID, 10), doc))

		if cursor.Mode == watermark.ModeMonotonicID {
			next.LastID = post.PostID
			if post.UpdatedAt.After(next.LastUpdatedAt) {
				next.LastUpdatedAt = post.UpdatedAt
			}
		} else {
			next.LastUpdatedAt = post.UpdatedAt
		}
	}

	// Backfill exhausted: switch to modification-time order, resuming from
	// the highest updated_at the walk observed.
	if cursor.Mode == watermark.ModeMonotonicID && count < limit {
		next.Mode = watermark.ModeUpdatedAt
	}

	// Count reports limit for any full batch, so a tie trim or a widened
	// read never ends the run early.
	return &Batch{Operations: ops, Next: next, Count: count}, nil
}
