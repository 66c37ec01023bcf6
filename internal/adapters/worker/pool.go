// Package worker runs independent pipeline jobs on a bounded pool.
package worker

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/okian/scoutgrade/pkg/logger"
	"github.com/okian/scoutgrade/pkg/metrics"
)

// Job is one unit of work. Jobs must not share mutable state.
type Job[T any] func(ctx context.Context) (T, error)

// Pool bounds job concurrency.
type Pool struct {
	name    string
	workers int
	logger  logger.Logger
}

// New creates a pool sized to the CPU count unless WithWorkers says otherwise.
func New(opts ...Option) *Pool {
	p := &Pool{
		name:    "pool",
		workers: runtime.NumCPU(),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named(p.name)
	metrics.UpdateWorkerCount(p.workers)
	return p
}

// Workers returns the concurrency bound.
func (p *Pool) Workers() int { return p.workers }

// Run executes jobs on p and returns their results in job order, regardless
// of completion order. The first failing job cancels the rest; jobs not yet
// started when ctx is done are skipped.
func Run[T any](ctx context.Context, p *Pool, jobs []Job[T]) ([]T, error) {
	results := make([]T, len(jobs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, job := range jobs {
		if err := gCtx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			metrics.IncWorkerBusy()
			defer metrics.DecWorkerBusy()

			v, err := job(gCtx)
			if err != nil {
				p.logger.Error(gCtx, "job failed", logger.Int("job", i), logger.Error(err))
				return fmt.Errorf("job %d: %w", i, err)
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.logger.Debug(ctx, "jobs completed", logger.Int("jobs", len(jobs)), logger.Int("workers", p.workers))
	return results, nil
}
