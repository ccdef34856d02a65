package quantum

import (
	"math"
)

// Measurement is the outcome of a single detection attempt: whether the
// particle was found, and the pre-collapse detection probability.
type Measurement struct {
	Found       bool
	Probability float64
}

// Measure models a finite-resolution detector centered at grid cell (x, y)
// with Gaussian sensitivity w = exp(-r²/2σ_m²), σ_m = radiusMultiplier·dx,
// where r is the periodic-wrapped distance to the detector center. The
// detection probability is the sensitivity-weighted sum of |ψ|² over the
// grid; one uniform draw against it decides the outcome (Born rule), and
// the wavefunction collapses accordingly.
func (s *Simulation) Measure(x, y int) Measurement {
	// Bounds are enforced here; a bad index is a caller bug.
	s.psi.Abs2(x, y)

	p := 0.0
	s.detectorSweep(x, y, func(ix, iy int, w float64) {
		p += w * s.psi.Abs2(ix, iy)
	})
	p = math.Min(math.Max(p, 0), 1)

	found := s.rng.Float64() < p
	if found {
		s.collapsePositive(x, y)
	} else {
		s.collapseNegative(x, y)
	}
	return Measurement{Found: found, Probability: p}
}

// collapsePositive projects ψ onto the detector response: every cell is
// weighted by the same Gaussian used for detection, preserving phase and
// relative amplitude inside the footprint, then renormalized.
func (s *Simulation) collapsePositive(x, y int) {
	s.detectorSweep(x, y, func(ix, iy int, w float64) {
		re, im := s.psi.At(ix, iy)
		s.psi.Set(ix, iy, re*w, im*w)
	})
	s.normalize()
}

// collapseNegative suppresses the detector footprint with the complement
// weight 1−w, then renormalizes. The smooth Gaussian edge avoids injecting
// high-frequency artifacts into the next FFT step.
func (s *Simulation) collapseNegative(x, y int) {
	s.detectorSweep(x, y, func(ix, iy int, w float64) {
		re, im := s.psi.At(ix, iy)
		s.psi.Set(ix, iy, re*(1-w), im*(1-w))
	})
	s.normalize()
}

// detectorSweep visits every grid cell with its detector sensitivity
// relative to center (x, y), using the minimum periodic-wrapped Euclidean
// distance in physical units.
func (s *Simulation) detectorSweep(x, y int, visit func(ix, iy int, w float64)) {
	n := s.params.GridSize
	dx := s.params.Dx
	l := s.params.DomainSize()
	sigma := s.params.MeasurementRadius * dx
	twoSigma2 := 2 * sigma * sigma
	cx := float64(x) * dx
	cy := float64(y) * dx

	for iy := 0; iy < n; iy++ {
		wy := wrap(float64(iy)*dx-cy, l)
		for ix := 0; ix < n; ix++ {
			wx := wrap(float64(ix)*dx-cx, l)
			visit(ix, iy, math.Exp(-(wx*wx+wy*wy)/twoSigma2))
		}
	}
}
