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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/forumsync/config"
	"github.com/poiesic/forumsync/pipeline"
	"github.com/poiesic/forumsync/search"
	"github.com/poiesic/forumsync/source/sqlite"
	"github.com/poiesic/forumsync/transform"
	"github.com/poiesic/forumsync/watermark"
)

func main() {
	app := &cli.App{
		Name:  "forumsync",
		Usage: "Incremental forum-to-search-index replication",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "Run replication pipelines until caught up",
				Action: syncCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "pipeline",
						Aliases: []string{"p"},
						Usage:   "Run only the named pipeline",
					},
					&cli.BoolFlag{
						Name:  "follow",
						Usage: "Keep running, re-syncing at the configured interval",
					},
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "Re-sync interval; setting it implies --follow",
					},
				},
			},
			{
				Name:   "bootstrap",
				Usage:  "Reset a pipeline's cursor for a fresh walk",
				Action: bootstrapCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "pipeline",
						Aliases:  []string{"p"},
						Usage:    "Pipeline whose cursor to reset",
						Required: true,
					},
					&cli.Int64Flag{
						Name:  "from-id",
						Usage: "Start a backfill walk from this row id (posts only)",
					},
					&cli.BoolFlag{
						Name:  "epoch",
						Usage: "Reset to the beginning of time in incremental mode (default)",
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Show stored cursor positions",
				Action: statusCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// buildRunner wires every component from the configuration. The returned
// cleanup closes them in reverse order.
func buildRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, func(), error) {
	store, err := sqlite.Open(ctx, cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	cursors, err := watermark.OpenBadger(cfg.Cursors.Path, false)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("open cursor store: %w", err)
	}

	client, err := search.NewClient(cfg.Search.Address)
	if err != nil {
		cursors.Close()
		store.Close()
		return nil, nil, fmt.Errorf("connect to search index: %w", err)
	}

	loader, err := search.NewBulkLoader(client, cfg.Search.ChunkSize, cfg.Search.ChunkWorkers)
	if err != nil {
		cursors.Close()
		store.Close()
		return nil, nil, fmt.Errorf("create bulk loader: %w", err)
	}

	orchOpts := []pipeline.OrchestratorOption{
		pipeline.WithBatchSize(cfg.Sync.BatchSize),
		pipeline.WithProgress(os.Stderr),
	}
	for name, n := range cfg.Sync.BatchSizes {
		orchOpts = append(orchOpts, pipeline.WithPipelineBatchSize(name, n))
	}
	orch, err := pipeline.NewOrchestrator(cursors, loader, orchOpts...)
	if err != nil {
		loader.Release()
		cursors.Close()
		store.Close()
		return nil, nil, err
	}

	pipelines := pipeline.DefaultPipelines(store, transform.NewTransformer(), client)
	runner, err := pipeline.NewRunner(orch, pipelines,
		pipeline.WithRunnerWorkers(cfg.Sync.Workers))
	if err != nil {
		loader.Release()
		cursors.Close()
		store.Close()
		return nil, nil, err
	}

	cleanup := func() {
		loader.Release()
		cursors.Close()
		store.Close()
	}
	return runner, cleanup, nil
}

func syncCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, cleanup, err := buildRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	runOnce := func() error {
		if name := c.String("pipeline"); name != "" {
			_, err := runner.Run(ctx, name)
			return err
		}
		return runner.RunAll(ctx)
	}

	if err := runOnce(); err != nil {
		return err
	}
	if !c.Bool("follow") && !c.IsSet("interval") {
		return nil
	}

	interval := cfg.Sync.Interval
	if c.Duration("interval") > 0 {
		interval = c.Duration("interval")
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := runOnce(); err != nil {
				// Transient downstream failures should not kill follow
				// mode; the cursor guarantees the next tick resumes where
				// this one left off.
				slog.Error("sync pass failed", "error", err)
			}
		}
	}
}

func bootstrapCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	ctx := context.Background()
	cursors, err := watermark.OpenBadger(cfg.Cursors.Path, false)
	if err != nil {
		return fmt.Errorf("open cursor store: %w", err)
	}
	defer cursors.Close()

	name := c.String("pipeline")
	cursor := watermark.Epoch()
	if c.IsSet("from-id") {
		if c.Bool("epoch") {
			return fmt.Errorf("--from-id and --epoch are mutually exclusive")
		}
		if name != "posts" {
			return fmt.Errorf("--from-id only applies to the posts pipeline")
		}
		cursor = watermark.FromID(c.Int64("from-id"))
	}

	if err := cursors.Reset(ctx, name, cursor); err != nil {
		return fmt.Errorf("reset cursor: %w", err)
	}

	fmt.Fprintf(os.Stderr, "cursor for %s reset (mode %s)\n", name, cursor.Mode)
	return nil
}

func statusCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	ctx := context.Background()
	cursors, err := watermark.OpenBadger(cfg.Cursors.Path, false)
	if err != nil {
		return fmt.Errorf("open cursor store: %w", err)
	}
	defer cursors.Close()

	for _, name := range pipeline.PipelineNames() {
		cursor, found, err := cursors.Load(ctx, name)
		if err != nil {
			return err
		}
		if !found {
			fmt.Printf("%-16s (no cursor)\n", name)
			continue
		}
		switch cursor.Mode {
		case watermark.ModeMonotonicID:
			fmt.Printf("%-16s backfill, last id %d\n", name, cursor.LastID)
		default:
			fmt.Printf("%-16s synced through %s\n", name,
				cursor.LastUpdatedAt.UTC().Format(time.RFC3339))
		}
	}
	return nil
}
