package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/forumsync/source"
	"github.com/poiesic/forumsync/transform"
)

// DefaultRunnerWorkers bounds how many pipelines run at once.
const DefaultRunnerWorkers = 3

// Runner holds the registered pipelines and runs them through one
// orchestrator. Pipelines checkpoint independently, so they can run
// concurrently; merge scripts keep concurrent writes to shared documents
// convergent.
type Runner struct {
	orch      *Orchestrator
	pipelines map[string]Pipeline
	workers   int
	logger    *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerWorkers sets how many pipelines may run concurrently.
func WithRunnerWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithRunnerLogger sets the structured logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a runner over the given pipelines.
func NewRunner(orch *Orchestrator, pipelines []Pipeline, opts ...RunnerOption) (*Runner, error) {
	if orch == nil {
		return nil, fmt.Errorf("%w: runner requires an orchestrator", ErrNilDependency)
	}

	r := &Runner{
		orch:      orch,
		pipelines: make(map[string]Pipeline, len(pipelines)),
		workers:   DefaultRunnerWorkers,
		logger:    slog.Default(),
	}
	for _, p := range pipelines {
		if _, dup := r.pipelines[p.Name()]; dup {
			return nil, fmt.Errorf("duplicate pipeline %s", p.Name())
		}
		r.pipelines[p.Name()] = p
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// DefaultPipelines builds the full replication set over one source store.
func DefaultPipelines(src source.Store, tr *transform.Transformer, schemas SchemaEnsurer) []Pipeline {
	return []Pipeline{
		NewPostsPipeline(src, tr, schemas),
		NewVersionsPipeline(src, schemas),
		NewMeritsPipeline(src, schemas),
		NewTopicsPipeline(src, schemas),
		NewHistoryPipeline(src, tr, schemas),
		NewAddressesPipeline(src, schemas),
		NewBoardsPipeline(src, schemas),
	}
}

// PipelineNames lists every pipeline DefaultPipelines builds, sorted. The
// constructors never touch their collaborators, so building the set with nil
// dependencies just to read the names is safe.
func PipelineNames() []string {
	pipelines := DefaultPipelines(nil, nil, nil)
	names := make([]string, len(pipelines))
	for i, p := range pipelines {
		names[i] = p.Name()
	}
	sort.Strings(names)
	return names
}

// Names lists the registered pipelines in stable order.
func (r *Runner) Names() []string {
	names := make([]string, 0, len(r.pipelines))
	for name := range r.pipelines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the named pipeline.
func (r *Runner) Get(name string) (Pipeline, error) {
	p, ok := r.pipelines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPipeline, name)
	}
	return p, nil
}

// Run drains one named pipeline.
func (r *Runner) Run(ctx context.Context, name string) (int, error) {
	p, err := r.Get(name)
	if err != nil {
		return 0, err
	}
	return r.orch.Run(ctx, p)
}

// RunAll drains every registered pipeline, a bounded number at a time. Every
// pipeline gets its attempt even when a sibling fails; the failures come
// back joined.
func (r *Runner) RunAll(ctx context.Context) error {
	pool, err := ants.NewPool(r.workers)
	if err != nil {
		return fmt.Errorf("create pipeline pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error

	for _, name := range r.Names() {
		p := r.pipelines[name]
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if _, err := r.orch.Run(ctx, p); err != nil {
				r.logger.Error("pipeline run failed", "pipeline", p.Name(), "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("pipeline %s: %w", p.Name(), err))
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("submit pipeline %s: %w", name, submitErr))
			mu.Unlock()
		}
	}

	wg.Wait()
	return errors.Join(errs...)
}
