package grid

import (
	"math"
	"testing"
)

func TestSetAt(t *testing.T) {
	g := New(4)

	g.Set(1, 2, 3.0, -4.0)
	re, im := g.At(1, 2)
	if re != 3.0 || im != -4.0 {
		t.Errorf("expected (3, -4), got (%f, %f)", re, im)
	}

	re, im = g.At(0, 0)
	if re != 0 || im != 0 {
		t.Errorf("unset cell should be zero, got (%f, %f)", re, im)
	}
}

func TestAbsPhase(t *testing.T) {
	g := New(4)
	g.Set(2, 3, 3.0, 4.0)

	if got := g.Abs2(2, 3); math.Abs(got-25.0) > 1e-12 {
		t.Errorf("expected |z|² = 25, got %f", got)
	}
	if got := g.Abs(2, 3); math.Abs(got-5.0) > 1e-12 {
		t.Errorf("expected |z| = 5, got %f", got)
	}

	g.Set(0, 0, 0, 1)
	if got := g.Phase(0, 0); math.Abs(got-math.Pi/2) > 1e-12 {
		t.Errorf("expected phase π/2, got %f", got)
	}
	g.Set(0, 1, -1, 0)
	if got := math.Abs(g.Phase(0, 1)); math.Abs(got-math.Pi) > 1e-12 {
		t.Errorf("expected phase ±π, got %f", g.Phase(0, 1))
	}
}

func TestMul(t *testing.T) {
	g := New(2)
	g.Set(0, 0, 1, 2)
	g.Mul(0, 0, 3, 4)

	// (1+2i)(3+4i) = -5+10i
	re, im := g.At(0, 0)
	if math.Abs(re+5) > 1e-12 || math.Abs(im-10) > 1e-12 {
		t.Errorf("expected (-5, 10), got (%f, %f)", re, im)
	}
}

func TestMulElem(t *testing.T) {
	a := New(2)
	b := New(2)
	a.Set(0, 0, 1, 2)
	b.Set(0, 0, 3, 4)
	a.Set(1, 1, 2, 0)
	b.Set(1, 1, 0, 1)

	a.MulElem(b)

	re, im := a.At(0, 0)
	if math.Abs(re+5) > 1e-12 || math.Abs(im-10) > 1e-12 {
		t.Errorf("expected (-5, 10), got (%f, %f)", re, im)
	}
	re, im = a.At(1, 1)
	if math.Abs(re) > 1e-12 || math.Abs(im-2) > 1e-12 {
		t.Errorf("expected (0, 2), got (%f, %f)", re, im)
	}
	// Cells multiplied by a zero cell vanish.
	if a.Abs2(0, 1) != 0 {
		t.Error("expected zero product")
	}
}

func TestScaleSumAbs2(t *testing.T) {
	g := New(3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			g.Set(x, y, 1, 1)
		}
	}

	if got := g.SumAbs2(); math.Abs(got-18.0) > 1e-12 {
		t.Errorf("expected Σ|z|² = 18, got %f", got)
	}

	g.Scale(0.5)
	if got := g.SumAbs2(); math.Abs(got-4.5) > 1e-12 {
		t.Errorf("expected Σ|z|² = 4.5 after scaling, got %f", got)
	}
}

func TestCopyFrom(t *testing.T) {
	a := New(2)
	a.Set(1, 1, 7, -7)

	b := New(2)
	b.CopyFrom(a)

	re, im := b.At(1, 1)
	if re != 7 || im != -7 {
		t.Errorf("expected (7, -7), got (%f, %f)", re, im)
	}

	// Copies must not alias.
	a.Set(1, 1, 0, 0)
	re, im = b.At(1, 1)
	if re != 7 || im != -7 {
		t.Error("CopyFrom must deep-copy the buffer")
	}
}

func TestZero(t *testing.T) {
	g := New(2)
	g.Set(0, 1, 1, 2)
	g.Zero(0, 1)
	if g.Abs2(0, 1) != 0 {
		t.Error("expected zeroed cell")
	}
}

func TestRowColRoundTrip(t *testing.T) {
	g := New(4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			g.Set(x, y, float64(x), float64(y))
		}
	}

	buf := make([]complex128, 4)
	g.Row(2, buf)
	for x := 0; x < 4; x++ {
		if buf[x] != complex(float64(x), 2) {
			t.Fatalf("row read mismatch at %d: %v", x, buf[x])
		}
	}
	g.SetRow(2, buf)

	g.Col(1, buf)
	for y := 0; y < 4; y++ {
		if buf[y] != complex(1, float64(y)) {
			t.Fatalf("col read mismatch at %d: %v", y, buf[y])
		}
	}
}

func TestOutOfRangePanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func(g *Grid)
	}{
		{"negative x", func(g *Grid) { g.At(-1, 0) }},
		{"negative y", func(g *Grid) { g.At(0, -1) }},
		{"x too large", func(g *Grid) { g.Set(4, 0, 1, 1) }},
		{"y too large", func(g *Grid) { g.Abs2(0, 4) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn(New(4))
		})
	}
}

func TestSizeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on size mismatch")
		}
	}()
	New(2).CopyFrom(New(4))
}
