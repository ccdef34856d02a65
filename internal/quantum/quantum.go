// Package quantum implements split-operator time evolution of a single
// particle's wavefunction on a 2D periodic grid, with Born-rule measurement
// and collapse.
//
// Each [Simulation.Step] advances one Strang-split step:
//
//	ψ ← exp(-iVΔt/2ħ) · F⁻¹ · exp(-iħk²Δt/2m) · F · exp(-iVΔt/2ħ) · ψ
//
// which is unitary and 2nd-order accurate in Δt. Both exponentials are
// precomputed per-cell operator grids, recomputed only when a setter
// changes the potential or the effective time step.
//
// Simulations are not safe for concurrent use; the caller serializes
// access (see the run loop in internal/sim).
package quantum

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/floats"

	"github.com/gbarello/qwave/internal/fft"
	"github.com/gbarello/qwave/internal/grid"
)

// normEpsilon is the smallest wavefunction norm renormalization will divide
// by; below it the state is left untouched and a warning is logged.
const normEpsilon = 1e-10

// Simulation owns one wavefunction, its potential landscape, and the two
// precomputed evolution operators.
type Simulation struct {
	params Params
	logger *log.Logger
	rng    *rand.Rand

	psi       *grid.Grid // position-space wavefunction
	kinetic   *grid.Grid // exp(-iħk²Δt_eff/2m), momentum-space ordering
	halfPot   *grid.Grid // exp(-iVΔt_eff/2ħ)
	potential []float64  // V(x,y), strength applied, row-major
	baseShape []float64  // unit-strength shape of the current potential type
	transform *fft.Transform

	packet WavePacket // last initial state, reused by Reset
	clock  float64
}

// New constructs a simulation from p. The grid size must be a power of two;
// anything else is a fatal configuration error. A violated stability
// condition only logs a warning — evolution proceeds with degraded
// accuracy. A nil logger falls back to the package default.
func New(p Params, logger *log.Logger) (*Simulation, error) {
	if logger == nil {
		logger = log.Default()
	}
	transform, err := fft.New(p.GridSize)
	if err != nil {
		return nil, fmt.Errorf("quantum: grid size %d: %w", p.GridSize, err)
	}
	if p.Dx <= 0 || p.Dt <= 0 {
		return nil, fmt.Errorf("quantum: dx and dt must be positive, got dx=%g dt=%g", p.Dx, p.Dt)
	}
	if p.Hbar <= 0 || p.Mass <= 0 {
		return nil, fmt.Errorf("quantum: hbar and mass must be positive, got hbar=%g mass=%g", p.Hbar, p.Mass)
	}
	if p.Boundary == "" {
		p.Boundary = BoundaryPeriodic
	}
	if p.Boundary != BoundaryPeriodic {
		return nil, fmt.Errorf("quantum: unsupported boundary condition %q", p.Boundary)
	}
	if p.TimeScale <= 0 {
		p.TimeScale = 1.0
	}
	if p.MeasurementRadius == 0 {
		p.MeasurementRadius = DefaultParams().MeasurementRadius
	}
	p.MeasurementRadius = clampRadius(p.MeasurementRadius, logger)

	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	n := p.GridSize
	s := &Simulation{
		params:    p,
		logger:    logger,
		rng:       rand.New(rand.NewSource(seed)),
		psi:       grid.New(n),
		kinetic:   grid.New(n),
		halfPot:   grid.New(n),
		potential: make([]float64, n*n),
		baseShape: make([]float64, n*n),
		transform: transform,
	}

	s.warnIfUnstable()
	s.computeKineticOperator()
	s.computePotential()
	s.Initialize(DefaultWavePacket(p))
	return s, nil
}

// Initialize fills the wavefunction with a Gaussian wavepacket
//
//	ψ(x,y) = exp(-((x−x₀)²+(y−y₀)²)/4σ²) · exp(i(pₓx+p_y y)/ħ)
//
// normalizes it so Σ|ψ|² = 1, and zeroes the clock.
func (s *Simulation) Initialize(w WavePacket) {
	if w.Width <= 0 {
		w.Width = 3 * s.params.Dx
	}
	s.packet = w

	h := s.params.Dx
	fourSigma2 := 4 * w.Width * w.Width
	hbar := s.params.Hbar
	for iy := 0; iy < s.params.GridSize; iy++ {
		y := float64(iy) * h
		dy := y - w.CenterY
		for ix := 0; ix < s.params.GridSize; ix++ {
			x := float64(ix) * h
			dx := x - w.CenterX
			amp := math.Exp(-(dx*dx + dy*dy) / fourSigma2)
			phase := (w.MomentumX*x + w.MomentumY*y) / hbar
			s.psi.Set(ix, iy, amp*math.Cos(phase), amp*math.Sin(phase))
		}
	}
	s.normalize()
	s.clock = 0
}

// Reset reinitializes with the packet from the previous Initialize call.
func (s *Simulation) Reset() {
	s.Initialize(s.packet)
}

// Step advances one tick: half potential rotation, forward FFT, kinetic
// rotation in momentum space, inverse FFT, half potential rotation. The
// wavefunction is modified in place and the clock advances by dt_eff.
func (s *Simulation) Step() {
	hasPotential := s.params.Potential != PotentialNone
	if hasPotential {
		s.psi.MulElem(s.halfPot)
	}
	s.transform.Forward(s.psi)
	s.psi.MulElem(s.kinetic)
	s.transform.Inverse(s.psi)
	if hasPotential {
		s.psi.MulElem(s.halfPot)
	}
	s.clock += s.params.EffectiveDt()
}

// normalize rescales ψ so Σ|ψ|² = 1. A near-zero state cannot be
// renormalized; it is left as-is with a warning.
func (s *Simulation) normalize() {
	norm := math.Sqrt(s.psi.SumAbs2())
	if norm < normEpsilon {
		s.logger.Warn("wavefunction norm near zero, skipping renormalization", "norm", norm)
		return
	}
	s.psi.Scale(1 / norm)
}

// computeKineticOperator precomputes exp(-iħk²Δt_eff/2m) on the momentum
// grid, using the FFT bin ordering k[n] = 2πn/L for n < N/2 and
// 2π(n−N)/L otherwise.
func (s *Simulation) computeKineticOperator() {
	n := s.params.GridSize
	l := s.params.DomainSize()
	factor := -s.params.Hbar * s.params.EffectiveDt() / (2 * s.params.Mass)

	k := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < n/2 {
			k[i] = 2 * math.Pi * float64(i) / l
		} else {
			k[i] = 2 * math.Pi * float64(i-n) / l
		}
	}

	for iy := 0; iy < n; iy++ {
		ky2 := k[iy] * k[iy]
		for ix := 0; ix < n; ix++ {
			arg := factor * (k[ix]*k[ix] + ky2)
			s.kinetic.Set(ix, iy, math.Cos(arg), math.Sin(arg))
		}
	}
}

// computePotential evaluates the current potential type into the potential
// grid and rebuilds the half-step operator exp(-iVΔt_eff/2ħ).
func (s *Simulation) computePotential() {
	s.params.Potential.evaluate(s.baseShape, s.params.GridSize, s.params.Dx)
	floats.ScaleTo(s.potential, s.params.PotentialStrength, s.baseShape)

	n := s.params.GridSize
	factor := -s.params.EffectiveDt() / (2 * s.params.Hbar)
	for iy := 0; iy < n; iy++ {
		for ix := 0; ix < n; ix++ {
			arg := factor * s.potential[iy*n+ix]
			s.halfPot.Set(ix, iy, math.Cos(arg), math.Sin(arg))
		}
	}
}

func (s *Simulation) warnIfUnstable() {
	if dt, limit := s.params.EffectiveDt(), s.params.StableDt(); dt >= limit {
		s.logger.Warn("effective time step violates stability condition, accuracy degraded",
			"dt_eff", dt, "limit", limit)
	}
}

// Time returns the accumulated simulation time.
func (s *Simulation) Time() float64 { return s.clock }

// Params returns a snapshot of the current configuration.
func (s *Simulation) Params() Params { return s.params }

// TotalProbability returns Σ|ψ|², which stays within rounding of 1 under
// error-free evolution. Callers use it to monitor normalization drift.
func (s *Simulation) TotalProbability() float64 {
	return s.psi.SumAbs2()
}

// ProbabilityAt returns |ψ|² at grid cell (x, y).
func (s *Simulation) ProbabilityAt(x, y int) float64 {
	return s.psi.Abs2(x, y)
}

// ProbabilityDensity returns the full |ψ|² field, row-major, length N².
func (s *Simulation) ProbabilityDensity() []float64 {
	n := s.params.GridSize
	return s.ProbabilityDensityInto(make([]float64, n*n))
}

// ProbabilityDensityInto fills dst with the |ψ|² field and returns it,
// letting per-frame consumers reuse a buffer. dst must have length N².
func (s *Simulation) ProbabilityDensityInto(dst []float64) []float64 {
	n := s.params.GridSize
	if len(dst) != n*n {
		panic(fmt.Sprintf("quantum: density buffer length %d, want %d", len(dst), n*n))
	}
	for iy := 0; iy < n; iy++ {
		for ix := 0; ix < n; ix++ {
			dst[iy*n+ix] = s.psi.Abs2(ix, iy)
		}
	}
	return dst
}

// Phase returns the phase field arg(ψ) in [-π, π], row-major, length N².
func (s *Simulation) Phase() []float64 {
	n := s.params.GridSize
	out := make([]float64, n*n)
	for iy := 0; iy < n; iy++ {
		for ix := 0; ix < n; ix++ {
			out[iy*n+ix] = s.psi.Phase(ix, iy)
		}
	}
	return out
}

// Potential returns a copy of the potential grid V(x,y), row-major.
func (s *Simulation) Potential() []float64 {
	out := make([]float64, len(s.potential))
	copy(out, s.potential)
	return out
}

// SetTimeScale changes the time-scale multiplier, re-checks stability, and
// recomputes both evolution operators.
func (s *Simulation) SetTimeScale(scale float64) {
	if scale <= 0 {
		s.logger.Warn("ignoring non-positive time scale", "scale", scale)
		return
	}
	s.params.TimeScale = scale
	s.warnIfUnstable()
	s.computeKineticOperator()
	s.computePotential()
}

// SetMeasurementRadius sets the detector width multiplier, clamped to a
// sane range.
func (s *Simulation) SetMeasurementRadius(multiplier float64) {
	s.params.MeasurementRadius = clampRadius(multiplier, s.logger)
}

func clampRadius(multiplier float64, logger *log.Logger) float64 {
	const minRadius, maxRadius = 0.5, 10.0
	if multiplier < minRadius {
		logger.Warn("measurement radius clamped", "requested", multiplier, "clamped", minRadius)
		return minRadius
	}
	if multiplier > maxRadius {
		logger.Warn("measurement radius clamped", "requested", multiplier, "clamped", maxRadius)
		return maxRadius
	}
	return multiplier
}

// SetPotentialType switches the potential landscape by name. Unknown names
// fall back to "none" with a warning rather than failing; the caller may be
// driving this from user input.
func (s *Simulation) SetPotentialType(name string) {
	typ, ok := ParsePotentialType(name)
	if !ok {
		s.logger.Warn("unknown potential type, falling back to none", "type", name)
	}
	s.params.Potential = typ
	s.computePotential()
}

// SetPotentialStrength rescales the potential magnitude and rebuilds the
// half-step operator.
func (s *Simulation) SetPotentialStrength(strength float64) {
	s.params.PotentialStrength = strength
	s.computePotential()
}
