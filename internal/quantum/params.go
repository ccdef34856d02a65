package quantum

// Boundary identifies the grid topology. Only periodic boundaries are
// supported; the field exists so a parameter snapshot is self-describing.
type Boundary string

const BoundaryPeriodic Boundary = "periodic"

// Params is the scalar configuration of a Simulation. GridSize is fixed for
// the lifetime of an instance; everything else is mutable through setters.
type Params struct {
	GridSize          int     // N, must be a power of two
	Dx                float64 // spatial step
	Dt                float64 // base time step
	Hbar              float64 // reduced Planck constant
	Mass              float64 // particle mass
	Boundary          Boundary
	TimeScale         float64 // dt_eff = Dt * TimeScale
	MeasurementRadius float64 // detector width multiplier, σ_m = MeasurementRadius * Dx
	Potential         PotentialType
	PotentialStrength float64
	Seed              int64 // measurement RNG seed, 0 means time-based
}

// DefaultParams returns the configuration used by the CLI when nothing else
// is specified: a 64×64 grid with ħ = m = 1.
func DefaultParams() Params {
	return Params{
		GridSize:          64,
		Dx:                0.1,
		Dt:                0.005,
		Hbar:              1.0,
		Mass:              1.0,
		Boundary:          BoundaryPeriodic,
		TimeScale:         1.0,
		MeasurementRadius: 3.0,
		Potential:         PotentialNone,
		PotentialStrength: 5.0,
	}
}

// DomainSize returns the physical side length L = N·dx.
func (p Params) DomainSize() float64 {
	return float64(p.GridSize) * p.Dx
}

// EffectiveDt returns dt·timeScale, the step actually applied per tick.
func (p Params) EffectiveDt() float64 {
	return p.Dt * p.TimeScale
}

// StableDt returns the largest effective time step that keeps the
// split-operator scheme accurate, 2·m·dx²/ħ. Exceeding it degrades
// accuracy but does not stop evolution.
func (p Params) StableDt() float64 {
	return 2 * p.Mass * p.Dx * p.Dx / p.Hbar
}

// WavePacket describes the initial Gaussian state in physical coordinates.
type WavePacket struct {
	CenterX   float64
	CenterY   float64
	Width     float64 // σ
	MomentumX float64
	MomentumY float64
}

// DefaultWavePacket centers the packet on the domain with width 3·dx and
// zero momentum.
func DefaultWavePacket(p Params) WavePacket {
	return WavePacket{
		CenterX: float64(p.GridSize/2) * p.Dx,
		CenterY: float64(p.GridSize/2) * p.Dx,
		Width:   3 * p.Dx,
	}
}
