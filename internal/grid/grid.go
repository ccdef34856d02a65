// Package grid provides a dense 2D complex-valued field stored as an
// interleaved real/imaginary buffer.
package grid

import (
	"fmt"
	"math"
)

// Grid is an N×N field of complex numbers in row-major order. Each cell
// occupies two consecutive float64 slots (re, im) in the backing buffer.
type Grid struct {
	n    int
	data []float64
}

// New allocates a zeroed n×n grid.
func New(n int) *Grid {
	if n <= 0 {
		panic(fmt.Sprintf("grid: size must be positive, got %d", n))
	}
	return &Grid{n: n, data: make([]float64, 2*n*n)}
}

// Size returns the side length N.
func (g *Grid) Size() int { return g.n }

// index maps (x, y) to the buffer offset of the real part.
// Out-of-range indices are a caller bug, not bad input.
func (g *Grid) index(x, y int) int {
	if x < 0 || x >= g.n || y < 0 || y >= g.n {
		panic(fmt.Sprintf("grid: index (%d, %d) out of range for size %d", x, y, g.n))
	}
	return 2 * (y*g.n + x)
}

// At returns the complex value at (x, y).
func (g *Grid) At(x, y int) (re, im float64) {
	i := g.index(x, y)
	return g.data[i], g.data[i+1]
}

// Set stores the complex value at (x, y).
func (g *Grid) Set(x, y int, re, im float64) {
	i := g.index(x, y)
	g.data[i], g.data[i+1] = re, im
}

// Mul multiplies the cell at (x, y) by the complex factor (re, im) in place.
func (g *Grid) Mul(x, y int, re, im float64) {
	i := g.index(x, y)
	a, b := g.data[i], g.data[i+1]
	g.data[i] = a*re - b*im
	g.data[i+1] = a*im + b*re
}

// Abs2 returns |z|² at (x, y).
func (g *Grid) Abs2(x, y int) float64 {
	i := g.index(x, y)
	return g.data[i]*g.data[i] + g.data[i+1]*g.data[i+1]
}

// Abs returns |z| at (x, y).
func (g *Grid) Abs(x, y int) float64 {
	return math.Sqrt(g.Abs2(x, y))
}

// Phase returns arg(z) at (x, y) in [-π, π].
func (g *Grid) Phase(x, y int) float64 {
	i := g.index(x, y)
	return math.Atan2(g.data[i+1], g.data[i])
}

// Zero clears the cell at (x, y).
func (g *Grid) Zero(x, y int) {
	i := g.index(x, y)
	g.data[i], g.data[i+1] = 0, 0
}

// Scale multiplies every cell by a real factor in place.
func (g *Grid) Scale(factor float64) {
	for i := range g.data {
		g.data[i] *= factor
	}
}

// CopyFrom overwrites this grid with the contents of other.
// Both grids must have the same size.
func (g *Grid) CopyFrom(other *Grid) {
	if g.n != other.n {
		panic(fmt.Sprintf("grid: size mismatch %d vs %d", g.n, other.n))
	}
	copy(g.data, other.data)
}

// MulElem multiplies every cell by the matching cell of other in place.
// Both grids must have the same size.
func (g *Grid) MulElem(other *Grid) {
	if g.n != other.n {
		panic(fmt.Sprintf("grid: size mismatch %d vs %d", g.n, other.n))
	}
	for i := 0; i < len(g.data); i += 2 {
		a, b := g.data[i], g.data[i+1]
		c, d := other.data[i], other.data[i+1]
		g.data[i] = a*c - b*d
		g.data[i+1] = a*d + b*c
	}
}

// SumAbs2 returns Σ|z|² over the whole grid, the discrete normalization
// quantity for a wavefunction stored on the grid.
func (g *Grid) SumAbs2() float64 {
	sum := 0.0
	for i := 0; i < len(g.data); i += 2 {
		sum += g.data[i]*g.data[i] + g.data[i+1]*g.data[i+1]
	}
	return sum
}

// Row copies row y into dst as complex128 values. dst must have length N.
func (g *Grid) Row(y int, dst []complex128) {
	i := g.index(0, y)
	for x := 0; x < g.n; x++ {
		dst[x] = complex(g.data[i], g.data[i+1])
		i += 2
	}
}

// SetRow writes src back into row y. src must have length N.
func (g *Grid) SetRow(y int, src []complex128) {
	i := g.index(0, y)
	for x := 0; x < g.n; x++ {
		g.data[i], g.data[i+1] = real(src[x]), imag(src[x])
		i += 2
	}
}

// Col copies column x into dst as complex128 values. dst must have length N.
func (g *Grid) Col(x int, dst []complex128) {
	for y := 0; y < g.n; y++ {
		i := 2 * (y*g.n + x)
		dst[y] = complex(g.data[i], g.data[i+1])
	}
}

// SetCol writes src back into column x. src must have length N.
func (g *Grid) SetCol(x int, src []complex128) {
	for y := 0; y < g.n; y++ {
		i := 2 * (y*g.n + x)
		g.data[i], g.data[i+1] = real(src[y]), imag(src[y])
	}
}
