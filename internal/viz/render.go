// Package viz renders the probability density in the terminal: a static
// shade-character map and an interactive bubbletea view with a movable
// detector cursor. It consumes only the engine's read accessors and
// setters; no physics happens here.
package viz

import (
	"strings"

	"gonum.org/v1/gonum/floats"
)

// shades orders display characters from empty to dense.
var shades = []rune(" .:-=+*#%@")

// DensityMap renders a row-major n×n density field as rows×cols shade
// characters, each sampling its nearest grid cell. Intensity is relative
// to the field maximum, so a dispersing packet stays visible.
func DensityMap(density []float64, n, cols, rows int) string {
	if cols <= 0 || rows <= 0 || len(density) != n*n {
		return ""
	}

	max := floats.Max(density)
	var b strings.Builder
	b.Grow(rows * (cols + 1))

	for r := 0; r < rows; r++ {
		iy := r * n / rows
		for c := 0; c < cols; c++ {
			ix := c * n / cols
			b.WriteRune(shade(density[iy*n+ix], max))
		}
		if r < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func shade(v, max float64) rune {
	if max <= 0 {
		return shades[0]
	}
	idx := int(v / max * float64(len(shades)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(shades) {
		idx = len(shades) - 1
	}
	return shades[idx]
}

// CellAt maps a character position in a rows×cols map back to the grid
// cell it samples, for cursor overlays.
func CellAt(n, cols, rows, c, r int) (ix, iy int) {
	return c * n / cols, r * n / rows
}
