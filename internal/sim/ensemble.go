package sim

import (
	"context"

	"github.com/san-kum/starfield/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Ensemble repeats a run over consecutive seeds in parallel.
type Ensemble struct {
	numRuns   int
	seedStart int64
	metrics   func() []metrics.Metric
	log       *zap.Logger
}

// NewEnsemble runs numRuns copies seeded seedStart, seedStart+1, ... Each
// run gets its own metrics from newMetrics, which may be nil.
func NewEnsemble(numRuns int, seedStart int64, newMetrics func() []metrics.Metric, log *zap.Logger) *Ensemble {
	return &Ensemble{numRuns: numRuns, seedStart: seedStart, metrics: newMetrics, log: log}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)
			// surfaces are not shared between runs
			cfgCopy.Surface = nil

			r := New(e.log)
			if e.metrics != nil {
				for _, m := range e.metrics() {
					r.AddMetric(m)
				}
			}

			res, err := r.Run(ctx, cfgCopy)
			if err != nil {
				return err
			}
			results[idx] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
