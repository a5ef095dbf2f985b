package pipeline

import (
	"context"
	"time"

	"github.com/poiesic/forumsync/core"
	"github.com/poiesic/forumsync/search"
	"github.com/poiesic/forumsync/source"
	"github.com/poiesic/forumsync/watermark"
)

// AddressesPipeline replicates scraped address mentions. A mention has no
// single-column key, so its document id is derived from the address and
// post id pair; re-observing the same mention rewrites the same document.
type AddressesPipeline struct {
	source  source.AddressMentions
	schemas SchemaEnsurer
}

// NewAddressesPipeline creates the address-mentions pipeline.
func NewAddressesPipeline(src source.AddressMentions, schemas SchemaEnsurer) *AddressesPipeline {
	return &AddressesPipeline{source: src, schemas: schemas}
}

var _ Pipeline = (*AddressesPipeline)(nil)

func (p *AddressesPipeline) Name() string { return "post_addresses" }

func (p *AddressesPipeline) DefaultCursor() watermark.Cursor { return watermark.Epoch() }

func (p *AddressesPipeline) EnsureSchema(ctx context.Context) error {
	return p.schemas.EnsureSchema(ctx, search.AddressesSchema())
}

func (p *AddressesPipeline) Fetch(ctx context.Context, cursor watermark.Cursor, limit int) (*Batch, error) {
	mentions, full, err := fetchPastTies(ctx, limit, p.Name(),
		func(ctx context.Context, n int) ([]core.AddressMention, error) {
			return p.source.AddressMentionsAfter(ctx, cursor.LastUpdatedAt, n)
		},
		func(m core.AddressMention) time.Time { return m.UpdatedAt })
	if err != nil {
		return nil, err
	}
	count := len(mentions)
	if full {
		count = limit
	}

	next := cursor
	ops := make([]search.Operation, 0, len(mentions))
	for i := range mentions {
		m := &mentions[i]
		doc := AddressDocument{
			Address:   m.Address,
			Coin:      m.Coin,
			PostID:    m.PostID,
			TopicID:   m.TopicID,
			BoardID:   m.BoardID,
			Author:    m.Author,
			AuthorUID: m.AuthorUID,
			Date:      m.MentionedAt,
		}
		ops = append(ops, search.UpsertOp(search.AddressesIndex, m.DocID().String(), doc))
		next.LastUpdatedAt = m.UpdatedAt
	}

	return &Batch{Operations: ops, Next: next, Count: count}, nil
}
