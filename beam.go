package goarraycore

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// BeamMetrics summarizes a sampled field curve.
type BeamMetrics struct {
	PeakIndex    int
	PeakPosition float64
	PeakValue    float64
	// Width of the main lobe at 1/√2 of the peak (−3 dB), in axis units.
	MainLobeWidth float64
	// Highest sample outside the main lobe, relative to the peak, in dB.
	// -Inf when the curve has no side lobe.
	SideLobeDB float64
}

// AnalyzeBeam locates the peak of magnitude over axis and measures the main
// lobe width and the peak side-lobe level.
func AnalyzeBeam(axis, magnitude []float64) (BeamMetrics, error) {
	if len(axis) == 0 || len(axis) != len(magnitude) {
		return BeamMetrics{}, fmt.Errorf("%w: axis has %d points, magnitude %d", ErrInvalidObservation, len(axis), len(magnitude))
	}

	peak := floats.MaxIdx(magnitude)
	top := magnitude[peak]
	if !(top > 0) {
		return BeamMetrics{}, fmt.Errorf("%w: field has no positive peak", ErrInvalidObservation)
	}

	level := top / math.Sqrt2
	lo := halfPowerCrossing(axis, magnitude, peak, level, -1)
	hi := halfPowerCrossing(axis, magnitude, peak, level, +1)

	// The main lobe ends at the first local minimum on each side.
	left := peak
	for left > 0 && magnitude[left-1] <= magnitude[left] {
		left--
	}
	right := peak
	for right < len(magnitude)-1 && magnitude[right+1] <= magnitude[right] {
		right++
	}

	side := 0.0
	if left > 0 {
		side = math.Max(side, floats.Max(magnitude[:left]))
	}
	if right < len(magnitude)-1 {
		side = math.Max(side, floats.Max(magnitude[right+1:]))
	}
	sideDB := math.Inf(-1)
	if side > 0 {
		sideDB = 20 * math.Log10(side/top)
	}

	return BeamMetrics{
		PeakIndex:     peak,
		PeakPosition:  axis[peak],
		PeakValue:     top,
		MainLobeWidth: math.Abs(hi - lo),
		SideLobeDB:    sideDB,
	}, nil
}

// halfPowerCrossing walks from peak in direction dir until the curve drops
// below level and interpolates the crossing. Without a crossing it returns
// the axis end.
func halfPowerCrossing(axis, magnitude []float64, peak int, level float64, dir int) float64 {
	i := peak
	for {
		next := i + dir
		if next < 0 || next >= len(magnitude) {
			return axis[i]
		}
		if magnitude[next] < level {
			span := magnitude[i] - magnitude[next]
			if span == 0 {
				return axis[next]
			}
			frac := (magnitude[i] - level) / span
			return axis[i] + frac*(axis[next]-axis[i])
		}
		i = next
	}
}
