package goarraycore

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// TimeResponse samples every ring at a fixed point over observation times.
// The returned field is indexed [ring][time]; magnitude is the coherent sum.
func TimeResponse(p Params, rings []Ring, delays []float64, distance, theta float64, times []float64) (field [][]complex128, magnitude []float64, err error) {
	if err := checkPipeline(p, rings, delays); err != nil {
		return nil, nil, err
	}
	if err := checkAngle(theta); err != nil {
		return nil, nil, err
	}
	if !(distance > 0) {
		return nil, nil, fmt.Errorf("%w: distance %v", ErrInvalidObservation, distance)
	}
	if len(times) == 0 {
		return nil, nil, fmt.Errorf("%w: no observation times", ErrInvalidObservation)
	}

	m := newMedium(p)
	offsets := RingTimes(delays)
	field = make([][]complex128, len(rings))
	for i, ring := range rings {
		row := make([]complex128, len(times))
		for j, t := range times {
			row[j] = m.ring(distance, ring, theta, t+offsets[i])
		}
		field[i] = row
	}
	magnitude, err = SumRings(field)
	if err != nil {
		return nil, nil, err
	}
	return field, magnitude, nil
}

// Surface evaluates the summed far-field magnitude on a distance × angle
// grid. Rows follow distances, columns follow angles.
func Surface(p Params, rings []Ring, delays []float64, distances, angles []float64) (*mat.Dense, error) {
	if len(distances) == 0 || len(angles) == 0 {
		return nil, fmt.Errorf("%w: empty surface grid", ErrInvalidObservation)
	}

	out := mat.NewDense(len(distances), len(angles), nil)
	for i, r := range distances {
		row, err := SumField(p, rings, delays, Observation{
			Mode:     AngularSweep,
			Angles:   angles,
			Distance: r,
		})
		if err != nil {
			return nil, fmt.Errorf("surface row %d: %w", i, err)
		}
		out.SetRow(i, row)
	}
	return out, nil
}
