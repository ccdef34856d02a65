// Package fft provides an in-place 2D discrete Fourier transform over a
// complex grid, built from row-then-column 1D transforms.
//
// The 1D transforms come from go-dsp; this package owns the 2D
// decomposition and the scratch buffers reused across calls. Frequency
// ordering follows the usual FFT convention: bin n maps to wavenumber
// 2πn/L for n < N/2 and 2π(n−N)/L otherwise.
package fft

import (
	"fmt"

	dsp "github.com/mjibson/go-dsp/fft"

	"github.com/gbarello/qwave/internal/grid"
)

// Transform performs forward and inverse 2D FFTs on N×N grids. A Transform
// holds only scratch buffers, so it must not be shared between grids that
// are transformed concurrently.
type Transform struct {
	n    int
	line []complex128
}

// New builds a transform for n×n grids. n must be a power of two.
func New(n int) (*Transform, error) {
	if !IsPowerOfTwo(n) {
		return nil, fmt.Errorf("fft: size must be a power of two, got %d", n)
	}
	return &Transform{n: n, line: make([]complex128, n)}, nil
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Size returns the side length the transform was planned for.
func (t *Transform) Size() int { return t.n }

// Forward transforms g from position space to momentum space in place:
// a 1D FFT along every row, then along every column.
func (t *Transform) Forward(g *grid.Grid) {
	t.check(g)
	for y := 0; y < t.n; y++ {
		g.Row(y, t.line)
		g.SetRow(y, dsp.FFT(t.line))
	}
	for x := 0; x < t.n; x++ {
		g.Col(x, t.line)
		g.SetCol(x, dsp.FFT(t.line))
	}
}

// Inverse transforms g back to position space in place, undoing Forward:
// columns first, then rows. The 1/N² scaling is applied by the underlying
// 1D inverse transforms, so Inverse(Forward(g)) == g up to rounding.
func (t *Transform) Inverse(g *grid.Grid) {
	t.check(g)
	for x := 0; x < t.n; x++ {
		g.Col(x, t.line)
		g.SetCol(x, dsp.IFFT(t.line))
	}
	for y := 0; y < t.n; y++ {
		g.Row(y, t.line)
		g.SetRow(y, dsp.IFFT(t.line))
	}
}

func (t *Transform) check(g *grid.Grid) {
	if g.Size() != t.n {
		panic(fmt.Sprintf("fft: grid size %d does not match plan size %d", g.Size(), t.n))
	}
}
