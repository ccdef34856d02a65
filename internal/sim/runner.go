// Package sim orchestrates runs of the quantum engine: a step loop with
// metrics, observers, scheduled measurements, and context cancellation.
// The engine itself does no pacing or scheduling; this package owns it.
package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/gbarello/qwave/internal/quantum"
)

// Runner steps a single engine for a configured number of ticks.
// It is not safe for concurrent use; see Ensemble for parallel runs.
type Runner struct {
	engine    *quantum.Simulation
	metrics   []Metric
	observers []Observer
}

func New(engine *quantum.Simulation) *Runner {
	return &Runner{
		engine:    engine,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// Engine exposes the underlying simulation for read access between runs.
func (r *Runner) Engine() *quantum.Simulation { return r.engine }

// Run advances the engine cfg.Steps ticks, sampling the norm and invoking
// metrics/observers along the way. Scheduled measurements fire after the
// step they name. Cancelling ctx returns the partial result with ctx.Err().
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	sampleEvery := cfg.SampleEvery
	if sampleEvery <= 0 {
		sampleEvery = 1
	}

	measureAt := make(map[int][]MeasureEvent, len(cfg.Measure))
	for _, ev := range cfg.Measure {
		measureAt[ev.Step] = append(measureAt[ev.Step], ev)
	}

	samples := cfg.Steps/sampleEvery + 1
	result := &Result{
		Times:   make([]float64, 0, samples),
		Norms:   make([]float64, 0, samples),
		Metrics: make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	record := func() {
		result.Times = append(result.Times, r.engine.Time())
		result.Norms = append(result.Norms, r.engine.TotalProbability())
	}
	record()

	for step := 1; step <= cfg.Steps; step++ {
		select {
		case <-ctx.Done():
			r.finish(result)
			return result, ctx.Err()
		default:
		}

		r.engine.Step()
		result.StepsTaken++

		for _, ev := range measureAt[step] {
			m := r.engine.Measure(ev.X, ev.Y)
			result.Measurements = append(result.Measurements, MeasurementRecord{
				Step: step, X: ev.X, Y: ev.Y, Measurement: m,
			})
		}

		t := r.engine.Time()
		for _, m := range r.metrics {
			m.Observe(r.engine, t)
		}
		for _, obs := range r.observers {
			obs.OnStep(r.engine, step, t)
		}

		if step%sampleEvery == 0 {
			record()
		}

		if cfg.ValidateState {
			if p := r.engine.TotalProbability(); math.IsNaN(p) || math.IsInf(p, 0) {
				result.Errors = append(result.Errors, RunError{
					Step: step, Time: t, Message: "total probability is NaN/Inf",
				})
				break
			}
		}
	}

	r.finish(result)
	return result, nil
}

func (r *Runner) finish(result *Result) {
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validate(cfg Config) error {
	if cfg.Steps <= 0 {
		return fmt.Errorf("sim: steps must be positive, got %d", cfg.Steps)
	}
	return nil
}
