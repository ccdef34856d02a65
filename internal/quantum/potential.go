package quantum

import (
	"math"
)

// PotentialType selects one of the built-in potential-energy landscapes.
type PotentialType int

const (
	// PotentialNone is the free particle, V ≡ 0.
	PotentialNone PotentialType = iota
	// PotentialSingle is one attractive Gaussian well at the domain center.
	PotentialSingle
	// PotentialDouble is two narrower attractive wells on the vertical axis.
	PotentialDouble
	// PotentialSinusoid is a cosine potential with three periods across the domain.
	PotentialSinusoid
)

var potentialNames = map[PotentialType]string{
	PotentialNone:     "none",
	PotentialSingle:   "single",
	PotentialDouble:   "double",
	PotentialSinusoid: "sinusoid",
}

func (p PotentialType) String() string {
	if name, ok := potentialNames[p]; ok {
		return name
	}
	return "none"
}

// ParsePotentialType maps a name to its PotentialType. The second return
// value is false for unknown names, in which case PotentialNone is returned.
func ParsePotentialType(name string) (PotentialType, bool) {
	for typ, n := range potentialNames {
		if n == name {
			return typ, true
		}
	}
	return PotentialNone, false
}

// wrap returns the minimum-image displacement for a periodic axis of
// length l: the shorter of the direct and wrapped distances, signed.
func wrap(d, l float64) float64 {
	d = math.Mod(d, l)
	if d > l/2 {
		d -= l
	} else if d < -l/2 {
		d += l
	}
	return d
}

// evaluate fills v with the unit-strength potential shape for typ on an
// n×n grid with spacing dx. The caller applies the strength scale.
func (typ PotentialType) evaluate(v []float64, n int, dx float64) {
	l := float64(n) * dx
	switch typ {
	case PotentialSingle:
		// One well at the domain center, σ = L/4.
		sigma := l / 4
		fillWell(v, n, dx, l/2, l/2, sigma, 1.0)
	case PotentialDouble:
		// Two wells at (L/2, L/3) and (L/2, 2L/3), each a third as wide
		// and half as deep so the combined depth matches the single well.
		sigma := l / 12
		for i := range v {
			v[i] = 0
		}
		addWell(v, n, dx, l/2, l/3, sigma, 0.5)
		addWell(v, n, dx, l/2, 2*l/3, sigma, 0.5)
		return
	case PotentialSinusoid:
		// Exactly three periods across the domain keeps V periodic.
		for iy := 0; iy < n; iy++ {
			val := -math.Cos(6 * math.Pi * float64(iy) * dx / l)
			for ix := 0; ix < n; ix++ {
				v[iy*n+ix] = val
			}
		}
	default:
		for i := range v {
			v[i] = 0
		}
	}
}

func fillWell(v []float64, n int, dx, cx, cy, sigma, depth float64) {
	for i := range v {
		v[i] = 0
	}
	addWell(v, n, dx, cx, cy, sigma, depth)
}

// addWell accumulates an attractive Gaussian well of the given depth into v,
// using the periodic wrapped distance to the well center.
func addWell(v []float64, n int, dx, cx, cy, sigma, depth float64) {
	l := float64(n) * dx
	twoSigma2 := 2 * sigma * sigma
	for iy := 0; iy < n; iy++ {
		wy := wrap(float64(iy)*dx-cy, l)
		for ix := 0; ix < n; ix++ {
			wx := wrap(float64(ix)*dx-cx, l)
			r2 := wx*wx + wy*wy
			v[iy*n+ix] -= depth * math.Exp(-r2/twoSigma2)
		}
	}
}
