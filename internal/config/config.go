// Package config loads and saves run configuration for the qwave CLI.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gbarello/qwave/internal/quantum"
)

const (
	DefaultGridSize    = 64
	DefaultDx          = 0.1
	DefaultDt          = 0.005
	DefaultSteps       = 1000
	DefaultWidthCells  = 3.0
	DefaultStrength    = 5.0
	DefaultRadius      = 3.0
	DefaultCenterFrac  = 0.5
	DefaultSampleEvery = 10
)

type Config struct {
	GridSize    int     `yaml:"grid_size"`
	Dx          float64 `yaml:"dx"`
	Dt          float64 `yaml:"dt"`
	TimeScale   float64 `yaml:"time_scale"`
	Hbar        float64 `yaml:"hbar"`
	Mass        float64 `yaml:"mass"`
	Steps       int     `yaml:"steps"`
	SampleEvery int     `yaml:"sample_every"`
	Seed        int64   `yaml:"seed"`

	Potential   PotentialConfig   `yaml:"potential"`
	Measurement MeasurementConfig `yaml:"measurement"`
	Packet      PacketConfig      `yaml:"packet"`
}

type PotentialConfig struct {
	Type     string  `yaml:"type"`
	Strength float64 `yaml:"strength"`
}

type MeasurementConfig struct {
	Radius float64 `yaml:"radius"`
}

// PacketConfig describes the initial Gaussian state. Centers are fractions
// of the domain size so a config is grid-size independent; width is in
// units of dx; momenta are physical.
type PacketConfig struct {
	CenterXFrac float64 `yaml:"center_x"`
	CenterYFrac float64 `yaml:"center_y"`
	WidthCells  float64 `yaml:"width_cells"`
	MomentumX   float64 `yaml:"momentum_x"`
	MomentumY   float64 `yaml:"momentum_y"`
}

func DefaultConfig() *Config {
	return &Config{
		GridSize:    DefaultGridSize,
		Dx:          DefaultDx,
		Dt:          DefaultDt,
		TimeScale:   1.0,
		Hbar:        1.0,
		Mass:        1.0,
		Steps:       DefaultSteps,
		SampleEvery: DefaultSampleEvery,
		Potential: PotentialConfig{
			Type:     "none",
			Strength: DefaultStrength,
		},
		Measurement: MeasurementConfig{Radius: DefaultRadius},
		Packet: PacketConfig{
			CenterXFrac: DefaultCenterFrac,
			CenterYFrac: DefaultCenterFrac,
			WidthCells:  DefaultWidthCells,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Params translates the config into engine parameters. Unknown potential
// names map to "none" silently here; callers that want the fallback
// diagnostic route the raw string through the engine's SetPotentialType.
func (c *Config) Params() quantum.Params {
	typ, _ := quantum.ParsePotentialType(c.Potential.Type)
	return quantum.Params{
		GridSize:          c.GridSize,
		Dx:                c.Dx,
		Dt:                c.Dt,
		Hbar:              c.Hbar,
		Mass:              c.Mass,
		Boundary:          quantum.BoundaryPeriodic,
		TimeScale:         c.TimeScale,
		MeasurementRadius: c.Measurement.Radius,
		Potential:         typ,
		PotentialStrength: c.Potential.Strength,
		Seed:              c.Seed,
	}
}

// WavePacket resolves the fractional packet description against the grid.
func (c *Config) WavePacket() quantum.WavePacket {
	l := float64(c.GridSize) * c.Dx
	return quantum.WavePacket{
		CenterX:   c.Packet.CenterXFrac * l,
		CenterY:   c.Packet.CenterYFrac * l,
		Width:     c.Packet.WidthCells * c.Dx,
		MomentumX: c.Packet.MomentumX,
		MomentumY: c.Packet.MomentumY,
	}
}
