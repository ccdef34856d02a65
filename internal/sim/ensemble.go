package sim

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/gbarello/qwave/internal/quantum"
)

// Ensemble runs many independent copies of the same configuration in
// parallel, one engine per goroutine, with consecutive RNG seeds. Useful
// for measurement statistics, where each trial needs a fresh state.
type Ensemble struct {
	params    quantum.Params
	logger    *log.Logger
	metrics   func() []Metric
	numRuns   int
	seedStart int64
}

// NewEnsemble prepares numRuns runs of params, seeding run i with
// seedStart+i. metrics may be nil; otherwise it is called once per run so
// each engine gets its own metric instances.
func NewEnsemble(params quantum.Params, logger *log.Logger, metrics func() []Metric, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{
		params:    params,
		logger:    logger,
		metrics:   metrics,
		numRuns:   numRuns,
		seedStart: seedStart,
	}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			p := e.params
			p.Seed = e.seedStart + int64(idx)

			engine, err := quantum.New(p, e.logger)
			if err != nil {
				errs[idx] = err
				return
			}

			runner := New(engine)
			if e.metrics != nil {
				for _, m := range e.metrics() {
					runner.AddMetric(m)
				}
			}
			results[idx], errs[idx] = runner.Run(ctx, cfg)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
