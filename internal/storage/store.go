// Package storage persists completed runs: metadata, the norm time series,
// and the final probability density.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gbarello/qwave/internal/quantum"
	"github.com/gbarello/qwave/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type MeasurementRecord struct {
	Step        int     `json:"step"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Found       bool    `json:"found"`
	Probability float64 `json:"probability"`
}

type RunMetadata struct {
	ID           string              `json:"id"`
	Timestamp    time.Time           `json:"timestamp"`
	GridSize     int                 `json:"grid_size"`
	Dx           float64             `json:"dx"`
	Dt           float64             `json:"dt"`
	TimeScale    float64             `json:"time_scale"`
	Hbar         float64             `json:"hbar"`
	Mass         float64             `json:"mass"`
	Potential    string              `json:"potential"`
	Strength     float64             `json:"potential_strength"`
	Seed         int64               `json:"seed"`
	Steps        int                 `json:"steps"`
	Metrics      map[string]float64  `json:"metrics"`
	Measurements []MeasurementRecord `json:"measurements,omitempty"`
}

// Save writes a run directory: metadata.json, norms.csv (step series of
// time and total probability), and density.csv (the final |ψ|² field, one
// grid row per CSV row). Returns the run ID.
func (s *Store) Save(params quantum.Params, result *sim.Result, density []float64) (string, error) {
	runID := fmt.Sprintf("%s_%d", params.Potential, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Timestamp: time.Now(),
		GridSize:  params.GridSize,
		Dx:        params.Dx,
		Dt:        params.Dt,
		TimeScale: params.TimeScale,
		Hbar:      params.Hbar,
		Mass:      params.Mass,
		Potential: params.Potential.String(),
		Strength:  params.PotentialStrength,
		Seed:      params.Seed,
		Steps:     result.StepsTaken,
		Metrics:   result.Metrics,
	}
	for _, m := range result.Measurements {
		meta.Measurements = append(meta.Measurements, MeasurementRecord{
			Step: m.Step, X: m.X, Y: m.Y, Found: m.Found, Probability: m.Probability,
		})
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeNorms(filepath.Join(runDir, "norms.csv"), result); err != nil {
		return "", err
	}
	if density != nil {
		if err := writeDensity(filepath.Join(runDir, "density.csv"), density, params.GridSize); err != nil {
			return "", err
		}
	}
	return runID, nil
}

func writeJSON(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeNorms(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time", "total_probability"}); err != nil {
		return err
	}
	for i := range result.Times {
		row := []string{
			strconv.FormatFloat(result.Times[i], 'f', 6, 64),
			strconv.FormatFloat(result.Norms[i], 'g', 12, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeDensity(path string, density []float64, n int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	row := make([]string, n)
	for iy := 0; iy < n; iy++ {
		for ix := 0; ix < n; ix++ {
			row[ix] = strconv.FormatFloat(density[iy*n+ix], 'g', 12, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadNorms reads back the norm time series of a stored run.
func (s *Store) LoadNorms(runID string) (times, norms []float64, err error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "norms.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	for i := 1; i < len(records); i++ {
		if len(records[i]) < 2 {
			continue
		}
		t, err1 := strconv.ParseFloat(records[i][0], 64)
		p, err2 := strconv.ParseFloat(records[i][1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		times = append(times, t)
		norms = append(norms, p)
	}
	return times, norms, nil
}

// LoadDensity reads back the stored final density as a row-major field,
// returning the field and its grid size.
func (s *Store) LoadDensity(runID string) ([]float64, int, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "density.csv"))
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, 0, err
	}
	n := len(records)
	density := make([]float64, 0, n*n)
	for _, record := range records {
		if len(record) != n {
			return nil, 0, fmt.Errorf("storage: density.csv is not square: row has %d of %d cells", len(record), n)
		}
		for _, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, 0, err
			}
			density = append(density, v)
		}
	}
	return density, n, nil
}
