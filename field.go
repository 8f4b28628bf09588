package goarraycore

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
)

// Below this |k·a·sinθ| the Bessel ratio is evaluated from its series.
const seriesThreshold = 1e-4

type SweepMode int

const (
	// AngularSweep evaluates angles at a fixed distance.
	AngularSweep SweepMode = iota
	// DistanceSweep evaluates distances at a fixed angle. Angle 0 selects the
	// on-axis closed form.
	DistanceSweep
)

func (m SweepMode) String() string {
	switch m {
	case AngularSweep:
		return "angular"
	case DistanceSweep:
		return "distance"
	}
	return "unknown"
}

// Observation is the set of points a field is sampled at.
type Observation struct {
	Mode      SweepMode
	Angles    []float64 // radians, AngularSweep
	Distance  float64   // m, AngularSweep
	Distances []float64 // m, DistanceSweep
	Angle     float64   // radians, DistanceSweep
	Time      float64   // s, observation instant shared by every point
}

// Axis returns the swept coordinate.
func (o Observation) Axis() []float64 {
	if o.Mode == DistanceSweep {
		return o.Distances
	}
	return o.Angles
}

func (o Observation) Len() int {
	return len(o.Axis())
}

func (o Observation) Validate() error {
	switch o.Mode {
	case AngularSweep:
		if !(o.Distance > 0) || math.IsInf(o.Distance, 0) {
			return fmt.Errorf("%w: distance %v", ErrInvalidObservation, o.Distance)
		}
		for _, a := range o.Angles {
			if err := checkAngle(a); err != nil {
				return err
			}
		}
	case DistanceSweep:
		if err := checkAngle(o.Angle); err != nil {
			return err
		}
		for _, d := range o.Distances {
			if math.IsNaN(d) || d < 0 || (o.Angle != 0 && d == 0) {
				return fmt.Errorf("%w: distance %v at angle %v", ErrInvalidObservation, d, o.Angle)
			}
		}
	default:
		return fmt.Errorf("%w: mode %d", ErrInvalidObservation, o.Mode)
	}
	if o.Len() == 0 {
		return fmt.Errorf("%w: empty sweep", ErrInvalidObservation)
	}
	return nil
}

// Span returns n evenly spaced values from start to stop inclusive.
func Span(start, stop float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{start}
	}
	out := floats.Span(make([]float64, n), start, stop)
	// pin the ends so ±π/2 grids never round past the valid range
	out[0], out[n-1] = start, stop
	return out
}

// Arange returns start, start+step, ... strictly below stop.
func Arange(start, stop, step float64) []float64 {
	if !(step > 0) || !(stop > start) {
		return nil
	}
	n := int(math.Ceil((stop - start) / step))
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		v := start + float64(i)*step
		if v >= stop {
			break
		}
		out = append(out, v)
	}
	return out
}

func checkAngle(theta float64) error {
	if math.IsNaN(theta) || math.Abs(theta) > math.Pi/2 {
		return fmt.Errorf("%w: %v", ErrInvalidAngleRange, theta)
	}
	return nil
}

// Directivity is the normalized circular-aperture factor 2·J1(x)/x with
// x = k·a·sinθ. A zero radius yields 2 and x → 0 yields 1.
func Directivity(k, a, theta float64) (float64, error) {
	if err := checkAngle(theta); err != nil {
		return 0, err
	}
	return directivity(k, a, theta), nil
}

func directivity(k, a, theta float64) float64 {
	if a == 0 {
		return 2.0
	}
	x := k * a * math.Sin(theta)
	if math.Abs(x) < seriesThreshold {
		x2 := x * x
		return 1 - x2/8 + x2*x2/192
	}
	return 2 * math.J1(x) / x
}

// DirectivityPattern samples the single-aperture factor over angles.
func DirectivityPattern(k, a float64, angles []float64) ([]float64, error) {
	out := make([]float64, len(angles))
	for i, theta := range angles {
		d, err := Directivity(k, a, theta)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

// medium caches the derived constants of Params for the inner loops.
type medium struct {
	k, w float64
	pu   float64
	pcu  float64
}

func newMedium(p Params) medium {
	return medium{
		k:   p.Wavenumber(),
		w:   p.Omega(),
		pu:  p.Pressure * p.Velocity,
		pcu: p.Pressure * p.SoundSpeed * p.Velocity,
	}
}

func (m medium) ring(r float64, ring Ring, theta, t float64) complex128 {
	amp := m.w * m.pu / r
	outer := ring.Outer * ring.Outer * directivity(m.k, ring.Outer, theta)
	inner := ring.Inner * ring.Inner * directivity(m.k, ring.Inner, theta)
	return complex(amp*(outer-inner), 0) * cmplx.Exp(complex(0, m.w*t-m.k*r))
}

func (m medium) axis(r float64, ring Ring, t float64) complex128 {
	r1 := math.Sqrt(ring.Outer*ring.Outer + r*r)
	r2 := math.Sqrt(ring.Inner*ring.Inner + r*r)
	edges := cmplx.Exp(complex(0, -m.k*r1)) - cmplx.Exp(complex(0, -m.k*r2))
	return complex(m.pcu, 0) * edges * cmplx.Exp(complex(0, m.w*t))
}

// RingPressure is the far-field contribution of one ring at distance r and
// angle theta: the disk of radius Outer minus the disk of radius Inner,
// spread as 1/r and carried by exp(i(ωt − kr)).
func RingPressure(p Params, r float64, ring Ring, theta, t float64) (complex128, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if !(r > 0) {
		return 0, fmt.Errorf("%w: distance %v", ErrInvalidObservation, r)
	}
	if err := checkAngle(theta); err != nil {
		return 0, err
	}
	return newMedium(p).ring(r, ring, theta, t), nil
}

// AxisPressure is the on-axis contribution of one ring at distance r, from
// the path lengths to its two edges.
func AxisPressure(p Params, r float64, ring Ring, t float64) (complex128, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if math.IsNaN(r) || r < 0 {
		return 0, fmt.Errorf("%w: distance %v", ErrInvalidObservation, r)
	}
	return newMedium(p).axis(r, ring, t), nil
}

// PistonPressure is the far field of a single circular piston of radius a.
func PistonPressure(p Params, r, a, theta, t float64) (complex128, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if !(r > 0) {
		return 0, fmt.Errorf("%w: distance %v", ErrInvalidObservation, r)
	}
	if math.IsNaN(a) || a < 0 {
		return 0, fmt.Errorf("%w: piston radius %v", ErrInvalidGeometry, a)
	}
	if err := checkAngle(theta); err != nil {
		return 0, err
	}
	m := newMedium(p)
	amp := m.w * m.pu * a * a / (2 * r) * directivity(m.k, a, theta)
	return complex(amp, 0) * cmplx.Exp(complex(0, m.w*t-m.k*r)), nil
}

// RingField returns the complex contribution of every ring at every
// observation point, indexed [ring][point]. Each ring is driven at
// obs.Time plus its RingTimes offset.
func RingField(p Params, rings []Ring, delays []float64, obs Observation) ([][]complex128, error) {
	if err := checkPipeline(p, rings, delays); err != nil {
		return nil, err
	}
	if err := obs.Validate(); err != nil {
		return nil, err
	}

	m := newMedium(p)
	times := RingTimes(delays)
	field := make([][]complex128, len(rings))

	for i, ring := range rings {
		row := make([]complex128, obs.Len())
		t := obs.Time + times[i]
		switch {
		case obs.Mode == AngularSweep:
			for j, theta := range obs.Angles {
				row[j] = m.ring(obs.Distance, ring, theta, t)
			}
		case obs.Angle == 0:
			for j, r := range obs.Distances {
				row[j] = m.axis(r, ring, t)
			}
		default:
			for j, r := range obs.Distances {
				row[j] = m.ring(r, ring, obs.Angle, t)
			}
		}
		field[i] = row
	}
	return field, nil
}

// SumField is the magnitude of the coherent sum over rings at each point.
func SumField(p Params, rings []Ring, delays []float64, obs Observation) ([]float64, error) {
	field, err := RingField(p, rings, delays, obs)
	if err != nil {
		return nil, err
	}
	return SumRings(field)
}

// SumRings reduces a [ring][point] field to |Σ_ring| per point. Every ring
// must cover the same points.
func SumRings(field [][]complex128) ([]float64, error) {
	if len(field) == 0 {
		return nil, nil
	}
	n := len(field[0])
	for i, row := range field {
		if len(row) != n {
			return nil, fmt.Errorf("%w: ring %d has %d points, ring 0 has %d", ErrInvalidObservation, i, len(row), n)
		}
	}
	out := make([]float64, n)
	if n == 0 {
		return out, nil
	}

	buf := scratchPool.Get().(*scratch)
	defer scratchPool.Put(buf)
	accRe, accIm, re, im := buf.parts(n)
	clear(accRe)
	clear(accIm)

	for _, row := range field {
		for j, c := range row {
			re[j] = real(c)
			im[j] = imag(c)
		}
		vecmath.AddBlockInPlace(accRe, re)
		vecmath.AddBlockInPlace(accIm, im)
	}

	vecmath.Magnitude(out, accRe, accIm)
	return out, nil
}

type scratch struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratch{} },
}

func (s *scratch) parts(n int) (accRe, accIm, re, im []float64) {
	need := 4 * n
	if cap(s.data) < need {
		s.data = make([]float64, need)
	} else {
		s.data = s.data[:need]
	}
	return s.data[:n], s.data[n : 2*n], s.data[2*n : 3*n], s.data[3*n : need]
}

func checkPipeline(p Params, rings []Ring, delays []float64) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if len(rings) == 0 {
		return fmt.Errorf("%w: no rings", ErrInvalidGeometry)
	}
	if len(delays) != len(rings) {
		return fmt.Errorf("%w: %d delays for %d rings", ErrInvalidParameters, len(delays), len(rings))
	}
	for _, ring := range rings {
		if ring.Inner < 0 || ring.Inner > ring.Outer {
			return fmt.Errorf("%w: ring %d inner=%v outer=%v", ErrDomainMismatch, ring.Index, ring.Inner, ring.Outer)
		}
	}
	return nil
}
