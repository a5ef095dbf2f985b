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
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/forumsync/watermark"
)

const (
	// DefaultBatchSize bounds how many rows one Fetch pulls.
	DefaultBatchSize = 500

	// defaultReportInterval is how many rows pass between progress reports.
	defaultReportInterval = 1000
)

// Orchestrator runs pipelines against a cursor store and a loader. It owns
// the checkpoint discipline: a cursor is saved only after its batch has
// loaded in full, and any extract or load error aborts the run with the
// cursor unchanged.
type Orchestrator struct {
	cursors    watermark.Store
	loader     Loader
	batchSize  int
	batchSizes map[string]int
	progress   io.Writer
	logger     *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithBatchSize sets the default rows-per-batch limit.
func WithBatchSize(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithPipelineBatchSize overrides the batch size for one pipeline.
func WithPipelineBatchSize(name string, n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.batchSizes[name] = n
		}
	}
}

// WithProgress sets the writer progress lines go to.
func WithProgress(w io.Writer) OrchestratorOption {
	return func(o *Orchestrator) {
		if w != nil {
			o.progress = w
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOrchestrator creates an orchestrator over the given cursor store and
// loader.
func NewOrchestrator(cursors watermark.Store, loader Loader, opts ...OrchestratorOption) (*Orchestrator, error) {
	if cursors == nil || loader == nil {
		return nil, fmt.Errorf("%w: orchestrator requires a cursor store and a loader", ErrNilDependency)
	}

	o := &Orchestrator{
		cursors:    cursors,
		loader:     loader,
		batchSize:  DefaultBatchSize,
		batchSizes: make(map[string]int),
		progress:   io.Discard,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

func (o *Orchestrator) limitFor(name string) int {
	if n, ok := o.batchSizes[name]; ok {
		return n
	}
	return o.batchSize
}

// Run drains one pipeline until it is caught up. It returns the number of
// rows processed; on error the cursor keeps its last durable value and the
// run can simply be retried.
func (o *Orchestrator) Run(ctx context.Context, p Pipeline) (int, error) {
	logger := o.logger.With("pipeline", p.Name())
	limit := o.limitFor(p.Name())

	if err := p.EnsureSchema(ctx); err != nil {
		return 0, fmt.Errorf("ensure schema for %s: %w", p.Name(), err)
	}

	cursor, found, err := o.cursors.Load(ctx, p.Name())
	if err != nil {
		return 0, fmt.Errorf("load cursor for %s: %w", p.Name(), err)
	}
	if !found {
		cursor = p.DefaultCursor()
		logger.Info("no stored cursor, starting from default",
			"mode", cursor.Mode, "lastUpdatedAt", cursor.LastUpdatedAt, "lastId", cursor.LastID)
	}

	tracker := NewProgressTracker(o.progress, p.Name(), defaultReportInterval)
	tracker.Start()
	// Error and cancellation returns must still terminate the progress line.
	defer tracker.Finish()

	for {
		select {
		case <-ctx.Done():
			return tracker.Count(), ctx.Err()
		default:
		}

		batch, err := p.Fetch(ctx, cursor, limit)
		if err != nil {
			return tracker.Count(), fmt.Errorf("extract %s: %w", p.Name(), err)
		}

		if batch.Count == 0 {
			// A zero-row batch can still hand the cursor over to a new
			// mode, e.g. when a backfill finishes exactly at its boundary.
			if batch.Next.Mode != cursor.Mode {
				if err := o.cursors.Save(ctx, p.Name(), batch.Next); err != nil {
					return tracker.Count(), fmt.Errorf("save cursor for %s: %w", p.Name(), err)
				}
				logger.Info("cursor mode handed over", "mode", batch.Next.Mode)
			}
			break
		}

		if _, err := o.loader.Load(ctx, batch.Operations); err != nil {
			return tracker.Count(), fmt.Errorf("load %s: %w", p.Name(), err)
		}

		if err := o.cursors.Save(ctx, p.Name(), batch.Next); err != nil {
			return tracker.Count(), fmt.Errorf("save cursor for %s: %w", p.Name(), err)
		}
		cursor = batch.Next
		tracker.Increment(batch.Count)

		logger.Debug("batch loaded",
			"rows", batch.Count,
			"operations", len(batch.Operations),
			"lastUpdatedAt", cursor.LastUpdatedAt,
			"lastId", cursor.LastID)

		if batch.Count < limit {
			break
		}
	}

	logger.Info("caught up", "rows", tracker.Count(), "elapsed", tracker.Elapsed())
	return tracker.Count(), nil
}
