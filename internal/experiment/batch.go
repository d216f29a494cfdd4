package experiment

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/encsim/internal/log"
	"github.com/san-kum/encsim/internal/sim"
)

// Batch runs independent encounters concurrently. Each run owns its
// steppers and schedules, so runs share no mutable state.
type Batch struct {
	workers int
	lg      *log.Logger
}

func NewBatch(workers int, lg *log.Logger) *Batch {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Batch{workers: workers, lg: lg}
}

// Run returns results in input order. The first error cancels the
// remaining runs.
func (b *Batch) Run(ctx context.Context, encs []Encounter) ([]*sim.Result, error) {
	results := make([]*sim.Result, len(encs))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(b.workers)

	for i, enc := range encs {
		eg.Go(func() error {
			res, err := SimulateWith(ctx, enc, b.lg)
			if err != nil {
				b.lg.Warn("encounter failed", "index", i, "name", enc.Name, "error", err)
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
