package goarraycore

import (
	"fmt"
	"math"
)

// ComputeDelays returns, per ring, the extra travel time from the ring center
// to a focus at distance focal on the boresight, relative to ring 0.
func ComputeDelays(rings []Ring, focal, soundSpeed float64) ([]float64, error) {
	if len(rings) == 0 {
		return nil, fmt.Errorf("%w: no rings", ErrInvalidGeometry)
	}
	if !(focal > 0) || math.IsInf(focal, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidFocus, focal)
	}
	if !(soundSpeed > 0) || math.IsInf(soundSpeed, 0) {
		return nil, fmt.Errorf("%w: sound speed %v", ErrInvalidParameters, soundSpeed)
	}

	ref := focusDistance(rings[0], focal)
	delays := make([]float64, len(rings))
	for i := 1; i < len(rings); i++ {
		delays[i] = (focusDistance(rings[i], focal) - ref) / soundSpeed
	}
	return delays, nil
}

func focusDistance(r Ring, focal float64) float64 {
	c := r.Center()
	return math.Sqrt(c*c + focal*focal)
}

// RingTimes converts focal delays into the time offset applied to each ring's
// drive. Outer rings fire early by their path excess, so with the
// exp(i(ωt − kr)) convention all ring phases coincide at the focus.
//
// The offset is delay[i] − delay[0]. The formula t = delay[0] − delay[i]
// found in older ring scripts has the opposite sign: it leaves angular
// magnitudes unchanged but scatters the on-axis phases and lowers the focal
// peak by more than half.
func RingTimes(delays []float64) []float64 {
	times := make([]float64, len(delays))
	if len(delays) == 0 {
		return times
	}
	for i, d := range delays {
		times[i] = d - delays[0]
	}
	return times
}
