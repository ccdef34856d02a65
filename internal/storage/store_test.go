package storage

import (
	"math"
	"testing"

	"github.com/gbarello/qwave/internal/quantum"
	"github.com/gbarello/qwave/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Times:      []float64{0, 0.05, 0.1},
		Norms:      []float64{1.0, 0.9999999, 1.0000001},
		Metrics:    map[string]float64{"norm_drift": 1e-7},
		StepsTaken: 20,
		Measurements: []sim.MeasurementRecord{
			{Step: 10, X: 16, Y: 16, Measurement: quantum.Measurement{Found: true, Probability: 0.42}},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	params := quantum.DefaultParams()
	params.Potential = quantum.PotentialSingle
	n := params.GridSize
	density := make([]float64, n*n)
	density[n/2*n+n/2] = 0.25

	runID, err := st.Save(params, testResult(), density)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.GridSize != n || meta.Potential != "single" || meta.Steps != 20 {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if len(meta.Measurements) != 1 || !meta.Measurements[0].Found {
		t.Errorf("measurement records lost: %+v", meta.Measurements)
	}

	times, norms, err := st.LoadNorms(runID)
	if err != nil {
		t.Fatalf("load norms failed: %v", err)
	}
	if len(times) != 3 || len(norms) != 3 {
		t.Fatalf("expected 3 samples, got %d/%d", len(times), len(norms))
	}
	if math.Abs(norms[1]-0.9999999) > 1e-12 {
		t.Errorf("norm precision lost: %v", norms[1])
	}

	loaded, size, err := st.LoadDensity(runID)
	if err != nil {
		t.Fatalf("load density failed: %v", err)
	}
	if size != n {
		t.Fatalf("expected grid size %d, got %d", n, size)
	}
	if math.Abs(loaded[n/2*n+n/2]-0.25) > 1e-12 {
		t.Errorf("density value lost: %v", loaded[n/2*n+n/2])
	}
}

func TestSaveWithoutDensity(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	runID, err := st.Save(quantum.DefaultParams(), testResult(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := st.LoadDensity(runID); err == nil {
		t.Error("expected error loading missing density")
	}
}

func TestListEmptyAndPopulated(t *testing.T) {
	st := New(t.TempDir())

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Save(quantum.DefaultParams(), testResult(), nil); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Save(quantum.DefaultParams(), testResult(), nil); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) == 0 {
		t.Error("expected runs after saving")
	}
}

func TestLoadMissingRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("no_such_run"); err == nil {
		t.Error("expected error for missing run")
	}
}
