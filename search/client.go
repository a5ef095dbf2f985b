package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olivere/elastic/v7"
)

// Client wraps the search engine client with the schema operations the
// pipelines need.
type Client struct {
	es     *elastic.Client
	logger *slog.Logger
}

// NewClient connects to the search engine and verifies it responds.
func NewClient(addr string) (*Client, error) {
	es, err := elastic.NewClient(
		elastic.SetURL(addr),
		elastic.SetSniff(false),
	)
	if err != nil {
		return nil, err
	}

	info, _, err := es.Ping(addr).Do(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to ping search engine: %w", err)
	}
	slog.Debug("connected to search engine", "cluster", info.ClusterName, "version", info.Version.Number)

	return &Client{es: es, logger: slog.Default()}, nil
}

// NewClientWithElastic wraps an already constructed client. Used by tests.
func NewClientWithElastic(es *elastic.Client) *Client {
	return &Client{es: es, logger: slog.Default()}
}

// Schema describes one index family: the index itself, its template, and the
// named server-side merge scripts its documents rely on.
type Schema struct {
	Index    string
	Template string
	// Body is the template body carrying settings and mappings for the
	// index pattern.
	Body string
	// Scripts maps stored-script ids to their painless sources.
	Scripts map[string]string
}

// EnsureSchema makes the schema ready for writes: the template and scripts
// are put unconditionally, the index is created only if absent (templates
// apply their mappings at creation time). The whole operation is idempotent.
func (c *Client) EnsureSchema(ctx context.Context, s Schema) error {
	if _, err := c.es.IndexPutTemplate(s.Template).BodyString(s.Body).Do(ctx); err != nil {
		return fmt.Errorf("put template %s: %w", s.Template, err)
	}

	for id, src := range s.Scripts {
		body := fmt.Sprintf(`{"script":{"lang":"painless","source":%q}}`, src)
		if _, err := c.es.PutScript().Id(id).BodyString(body).Do(ctx); err != nil {
			return fmt.Errorf("put script %s: %w", id, err)
		}
	}

	exists, err := c.es.IndexExists(s.Index).Do(ctx)
	if err != nil {
		return fmt.Errorf("check index %s: %w", s.Index, err)
	}
	if !exists {
		c.logger.Info("creating index", "index", s.Index)
		if _, err := c.es.CreateIndex(s.Index).Do(ctx); err != nil {
			return fmt.Errorf("create index %s: %w", s.Index, err)
		}
	}

	return nil
}
