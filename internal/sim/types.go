package sim

import (
	"fmt"

	"github.com/gbarello/qwave/internal/quantum"
)

// Metric accumulates an observable over a run.
type Metric interface {
	Name() string
	Observe(eng *quantum.Simulation, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every completed step. Observers must not
// mutate the engine.
type Observer interface {
	OnStep(eng *quantum.Simulation, step int, t float64)
}

// MeasureEvent schedules a detector readout at a given step and grid cell.
type MeasureEvent struct {
	Step int
	X, Y int
}

// Config controls a single run.
type Config struct {
	Steps         int
	SampleEvery   int  // record norm/time every k steps, default 1
	ValidateState bool // stop on NaN/Inf total probability
	Measure       []MeasureEvent
}

// MeasurementRecord is a scheduled measurement and its outcome.
type MeasurementRecord struct {
	Step int
	X, Y int
	quantum.Measurement
}

// Result collects the time series and metric values of a run.
type Result struct {
	Times        []float64
	Norms        []float64
	Metrics      map[string]float64
	Measurements []MeasurementRecord
	StepsTaken   int
	Errors       []error
}

// RunError reports a failure at a specific step of a run.
type RunError struct {
	Step    int
	Time    float64
	Message string
}

func (e RunError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
