package goarraycore

import (
	"fmt"
	"math"
)

// InnerEpsilon is the inner radius of ring 0. It is never exactly zero so the
// Bessel ratio of the innermost edge stays well defined.
const InnerEpsilon = 1e-9

// Ring is one annular element of the aperture.
type Ring struct {
	Index int
	Inner float64
	Outer float64
}

// NewRing builds a ring and rejects inverted or negative radii.
func NewRing(index int, inner, outer float64) (Ring, error) {
	if math.IsNaN(inner) || math.IsNaN(outer) || inner < 0 || inner > outer {
		return Ring{}, fmt.Errorf("%w: ring %d inner=%v outer=%v", ErrDomainMismatch, index, inner, outer)
	}
	return Ring{Index: index, Inner: inner, Outer: outer}, nil
}

func (r Ring) Center() float64 {
	return (r.Inner + r.Outer) / 2
}

func (r Ring) Width() float64 {
	return r.Outer - r.Inner
}

// Area is the emitting area π(Outer² − Inner²).
func (r Ring) Area() float64 {
	return math.Pi * (r.Outer*r.Outer - r.Inner*r.Inner)
}

// Geometry holds the knobs of an equal-area ring partition.
type Geometry struct {
	OuterRadius float64
	MinGap      float64
	Rings       int
}

func (g Geometry) Build() ([]Ring, error) {
	return BuildRings(g.OuterRadius, g.MinGap, g.Rings)
}

// BuildRings partitions a disk of radius rMax into n rings of equal area
// separated by minGap. The strip lost to each gap is approximated as
// π·rMax·minGap, so the outermost ring may end slightly past rMax; see
// FitRings for an exact fit.
func BuildRings(rMax, minGap float64, n int) ([]Ring, error) {
	if err := validateGeometry(rMax, minGap, n); err != nil {
		return nil, err
	}

	maxArea := math.Pi * rMax * rMax
	ringArea := (maxArea - float64(n-1)*2*math.Pi*rMax/2*minGap) / float64(n)
	if !(ringArea > 0) {
		return nil, fmt.Errorf("%w: %d rings with gap %v leave no area in radius %v",
			ErrInvalidGeometry, n, minGap, rMax)
	}

	return layoutRings(math.Sqrt(ringArea/math.Pi), minGap, n)
}

// layoutRings stacks n rings outward from a ring-0 outer radius. Each ring's
// outer radius satisfies Outer² = Inner² + first², which keeps the areas equal.
func layoutRings(first, minGap float64, n int) ([]Ring, error) {
	rings := make([]Ring, n)

	r0, err := NewRing(0, InnerEpsilon, first)
	if err != nil {
		return nil, err
	}
	rings[0] = r0

	for i := 1; i < n; i++ {
		inner := rings[i-1].Outer + minGap
		outer := math.Sqrt(inner*inner + first*first)
		ring, err := NewRing(i, inner, outer)
		if err != nil {
			return nil, err
		}
		rings[i] = ring
	}
	return rings, nil
}

func validateGeometry(rMax, minGap float64, n int) error {
	if n < 1 {
		return fmt.Errorf("%w: ring count %d", ErrInvalidGeometry, n)
	}
	if !(rMax > 0) || math.IsInf(rMax, 0) {
		return fmt.Errorf("%w: outer radius %v", ErrInvalidGeometry, rMax)
	}
	if !(minGap > 0) || math.IsInf(minGap, 0) {
		return fmt.Errorf("%w: minimum gap %v", ErrInvalidGeometry, minGap)
	}
	return nil
}
