package workers

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultLimit is used when a non-positive limit is given.
const DefaultLimit = 4

type Workers struct {
	workers []Worker
	limit   int
}

// New returns a pool running at most limit workers at a time.
func New(limit int, workers ...Worker) *Workers {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Workers{workers: workers, limit: limit}
}

// Add appends workers to the pool. It must not be called during Run.
func (w *Workers) Add(workers ...Worker) {
	w.workers = append(w.workers, workers...)
}

// Len reports how many workers are queued.
func (w *Workers) Len() int {
	return len(w.workers)
}

// Run starts every worker, at most limit at once, and waits for all started
// workers to return. A failing worker does not stop the others; all errors are
// joined. Workers not yet started when ctx is done are skipped and ctx.Err()
// is included in the result.
func (w *Workers) Run(ctx context.Context) error {
	var (
		mu   sync.Mutex
		errs []error
	)

	g := new(errgroup.Group)
	g.SetLimit(w.limit)

	for _, worker := range w.workers {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if err := worker.Run(ctx); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
