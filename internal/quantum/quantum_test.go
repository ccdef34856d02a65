package quantum

import (
	"bytes"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func testParams(n int) Params {
	p := DefaultParams()
	p.GridSize = n
	p.Seed = 1
	return p
}

func TestNewRejectsNonPowerOfTwo(t *testing.T) {
	for _, n := range []int{0, 3, 48, 100} {
		p := testParams(64)
		p.GridSize = n
		if _, err := New(p, quietLogger()); err == nil {
			t.Errorf("expected error for grid size %d", n)
		}
	}
}

func TestNewRejectsBadScalars(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero dx", func(p *Params) { p.Dx = 0 }},
		{"negative dt", func(p *Params) { p.Dt = -0.1 }},
		{"zero hbar", func(p *Params) { p.Hbar = 0 }},
		{"negative mass", func(p *Params) { p.Mass = -1 }},
		{"reflecting boundary", func(p *Params) { p.Boundary = "reflecting" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams(32)
			tt.mutate(&p)
			if _, err := New(p, quietLogger()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestUnstableTimeStepIsNonFatal(t *testing.T) {
	p := testParams(32)
	p.Dt = 100 * p.StableDt()
	s, err := New(p, quietLogger())
	if err != nil {
		t.Fatalf("stability violation must not fail construction: %v", err)
	}
	s.Step()
}

func TestInitializeNormalization(t *testing.T) {
	s, err := New(testParams(64), quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if got := s.TotalProbability(); math.Abs(got-1.0) > 1e-6 {
		t.Errorf("expected Σ|ψ|² = 1 after initialize, got %.9f", got)
	}
	if s.Time() != 0 {
		t.Errorf("expected zero clock, got %f", s.Time())
	}
}

func TestGaussianWavepacketShape(t *testing.T) {
	p := testParams(64)
	s, _ := New(p, quietLogger())

	c := p.GridSize / 2
	sigma := 3 * p.Dx
	w := WavePacket{CenterX: float64(c) * p.Dx, CenterY: float64(c) * p.Dx, Width: sigma}
	s.Initialize(w)

	peak := s.ProbabilityAt(c, c)
	density := s.ProbabilityDensity()
	for i, d := range density {
		if d > peak+1e-15 {
			t.Fatalf("cell %d has density %g above center %g", i, d, peak)
		}
	}

	// Density falls monotonically along a radial line out to 2σ.
	cells := int(2*sigma/p.Dx) + 1
	prev := peak
	for r := 1; r <= cells; r++ {
		d := s.ProbabilityAt(c+r, c)
		if d > prev+1e-15 {
			t.Errorf("density not monotone at radius %d: %g > %g", r, d, prev)
		}
		prev = d
	}
}

func TestFreeEvolutionUnitarity(t *testing.T) {
	p := testParams(64)
	s, _ := New(p, quietLogger())

	before := s.TotalProbability()
	for i := 0; i < 100; i++ {
		s.Step()
	}

	if got := s.TotalProbability(); math.Abs(got-before) > 1e-6 {
		t.Errorf("norm drifted under free evolution: %.9f -> %.9f", before, got)
	}
	if got := s.Time(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("expected time 0.5 after 100 steps, got %f", got)
	}
}

func TestUnitarityWithPotential(t *testing.T) {
	for _, name := range []string{"single", "double", "sinusoid"} {
		t.Run(name, func(t *testing.T) {
			s, _ := New(testParams(32), quietLogger())
			s.SetPotentialType(name)
			for i := 0; i < 50; i++ {
				s.Step()
			}
			if got := s.TotalProbability(); math.Abs(got-1.0) > 1e-6 {
				t.Errorf("norm drifted with potential %s: %.9f", name, got)
			}
		})
	}
}

func TestPeriodicBoundaryContinuity(t *testing.T) {
	p := testParams(64)
	s, _ := New(p, quietLogger())

	// Packet near the right edge moving right; it must reappear on the left.
	l := p.DomainSize()
	s.Initialize(WavePacket{
		CenterX:   l - 6*p.Dx,
		CenterY:   l / 2,
		Width:     3 * p.Dx,
		MomentumX: 10.0,
	})

	before := s.TotalProbability()
	for i := 0; i < 200; i++ {
		s.Step()
	}

	leftMass := 0.0
	for iy := 0; iy < p.GridSize; iy++ {
		for ix := 0; ix < p.GridSize/4; ix++ {
			leftMass += s.ProbabilityAt(ix, iy)
		}
	}
	if leftMass < 0.01 {
		t.Errorf("expected probability to wrap onto the left quarter, got %g", leftMass)
	}
	if got := s.TotalProbability(); math.Abs(got-before) > 1e-6 {
		t.Errorf("probability lost crossing the boundary: %.9f -> %.9f", before, got)
	}
}

func TestMeasureNormalizationAndOutcome(t *testing.T) {
	p := testParams(64)
	s, _ := New(p, quietLogger())

	c := p.GridSize / 2
	m := s.Measure(c, c)
	if m.Probability < 0 || m.Probability > 1 {
		t.Errorf("probability outside [0, 1]: %f", m.Probability)
	}
	if got := s.TotalProbability(); math.Abs(got-1.0) > 1e-6 {
		t.Errorf("expected Σ|ψ|² = 1 after measure, got %.9f", got)
	}
}

func TestMeasureDeterministicWithSeed(t *testing.T) {
	run := func() Measurement {
		p := testParams(32)
		p.Seed = 12345
		s, _ := New(p, quietLogger())
		return s.Measure(16, 16)
	}
	a, b := run(), run()
	if a != b {
		t.Errorf("seeded measurements differ: %+v vs %+v", a, b)
	}
}

func TestBornRuleStatistics(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical test")
	}

	p := testParams(32)
	p.Seed = 99
	s, _ := New(p, quietLogger())

	const trials = 10000
	c := p.GridSize / 2
	found := 0
	var prob float64
	for i := 0; i < trials; i++ {
		s.Reset()
		m := s.Measure(c, c)
		prob = m.Probability
		if m.Found {
			found++
		}
	}

	freq := float64(found) / trials
	// Binomial std dev; allow four sigma.
	sigma := math.Sqrt(prob * (1 - prob) / trials)
	if math.Abs(freq-prob) > 4*sigma {
		t.Errorf("observed frequency %f deviates from probability %f by more than 4σ (%g)", freq, prob, sigma)
	}
}

func TestCollapsePositiveLocalizes(t *testing.T) {
	p := testParams(64)
	p.Seed = 3
	s, _ := New(p, quietLogger())

	c := p.GridSize / 2
	s.collapsePositive(c, c)

	if got := s.TotalProbability(); math.Abs(got-1.0) > 1e-6 {
		t.Fatalf("expected renormalized state, got %.9f", got)
	}

	// Density beyond a few σ_m of the detector must be near zero.
	cut := int(4*p.MeasurementRadius) + 1
	outside := 0.0
	for iy := 0; iy < p.GridSize; iy++ {
		for ix := 0; ix < p.GridSize; ix++ {
			if abs(ix-c) > cut || abs(iy-c) > cut {
				outside += s.ProbabilityAt(ix, iy)
			}
		}
	}
	if outside > 1e-3 {
		t.Errorf("expected negligible density outside the detector footprint, got %g", outside)
	}
}

func TestCollapseNegativeSuppresses(t *testing.T) {
	p := testParams(64)
	p.Seed = 3
	s, _ := New(p, quietLogger())

	c := p.GridSize / 2
	before := s.ProbabilityAt(c, c)
	s.collapseNegative(c, c)

	if got := s.ProbabilityAt(c, c); got > before*1e-6 {
		t.Errorf("expected density at detector center suppressed, got %g (was %g)", got, before)
	}
	if got := s.TotalProbability(); math.Abs(got-1.0) > 1e-6 {
		t.Errorf("expected renormalized state, got %.9f", got)
	}
}

func TestMeasureOutOfRangePanics(t *testing.T) {
	s, _ := New(testParams(32), quietLogger())
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-range measurement")
		}
	}()
	s.Measure(32, 0)
}

func TestSetTimeScale(t *testing.T) {
	p := testParams(32)
	s, _ := New(p, quietLogger())

	s.SetTimeScale(2.0)
	s.Step()
	if got := s.Time(); math.Abs(got-2*p.Dt) > 1e-12 {
		t.Errorf("expected time %g, got %g", 2*p.Dt, got)
	}
	if got := s.TotalProbability(); math.Abs(got-1.0) > 1e-6 {
		t.Errorf("norm drifted after operator recompute: %.9f", got)
	}

	// Non-positive scales are ignored.
	s.SetTimeScale(-1)
	if s.Params().TimeScale != 2.0 {
		t.Errorf("expected time scale unchanged, got %f", s.Params().TimeScale)
	}
}

func TestSetMeasurementRadiusClamps(t *testing.T) {
	s, _ := New(testParams(32), quietLogger())

	tests := []struct {
		in, want float64
	}{
		{0.1, 0.5},
		{5.0, 5.0},
		{50.0, 10.0},
	}
	for _, tt := range tests {
		s.SetMeasurementRadius(tt.in)
		if got := s.Params().MeasurementRadius; got != tt.want {
			t.Errorf("radius %f: expected clamp to %f, got %f", tt.in, tt.want, got)
		}
	}
}

func TestSetPotentialTypeFallback(t *testing.T) {
	s, _ := New(testParams(32), quietLogger())

	s.SetPotentialType("single")
	if s.Params().Potential != PotentialSingle {
		t.Errorf("expected single, got %v", s.Params().Potential)
	}

	s.SetPotentialType("harmonic")
	if s.Params().Potential != PotentialNone {
		t.Errorf("unknown type must fall back to none, got %v", s.Params().Potential)
	}
}

func TestSetPotentialTypeWarnsOnUnknown(t *testing.T) {
	var buf bytes.Buffer
	s, err := New(testParams(32), log.New(&buf))
	if err != nil {
		t.Fatal(err)
	}

	s.SetPotentialType("single")
	if strings.Contains(buf.String(), "unknown potential") {
		t.Fatal("valid type must not warn")
	}

	s.SetPotentialType("harmonic")
	if !strings.Contains(buf.String(), "unknown potential") {
		t.Error("expected a warning for an unknown potential type")
	}
}

func TestSetPotentialStrengthRescales(t *testing.T) {
	p := testParams(32)
	s, _ := New(p, quietLogger())
	s.SetPotentialType("single")

	v1 := s.Potential()
	s.SetPotentialStrength(2 * p.PotentialStrength)
	v2 := s.Potential()

	c := p.GridSize/2*p.GridSize + p.GridSize/2
	if math.Abs(v2[c]-2*v1[c]) > 1e-12 {
		t.Errorf("expected doubled potential, got %g vs %g", v2[c], v1[c])
	}
}

func TestPhaseRange(t *testing.T) {
	p := testParams(32)
	s, _ := New(p, quietLogger())
	s.Initialize(WavePacket{
		CenterX: p.DomainSize() / 2, CenterY: p.DomainSize() / 2,
		Width: 3 * p.Dx, MomentumX: 5, MomentumY: -3,
	})

	for i, ph := range s.Phase() {
		if ph < -math.Pi || ph > math.Pi {
			t.Fatalf("phase out of range at %d: %f", i, ph)
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
