package goarraycore

import (
	"fmt"
)

// Result is one pass of the geometry → delay → field pipeline.
type Result struct {
	Rings     []Ring
	Delays    []float64
	Field     [][]complex128
	Magnitude []float64
}

// Synthesize builds the rings, focuses them at focal and samples the field.
func Synthesize(p Params, geom Geometry, focal float64, obs Observation) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	rings, err := geom.Build()
	if err != nil {
		return Result{}, err
	}
	return synthesizeRings(p, rings, focal, obs)
}

func synthesizeRings(p Params, rings []Ring, focal float64, obs Observation) (Result, error) {
	delays, err := ComputeDelays(rings, focal, p.SoundSpeed)
	if err != nil {
		return Result{}, err
	}
	field, err := RingField(p, rings, delays, obs)
	if err != nil {
		return Result{}, err
	}
	magnitude, err := SumRings(field)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Rings:     rings,
		Delays:    delays,
		Field:     field,
		Magnitude: magnitude,
	}, nil
}

// GapMultiples returns lambda·(i+1)/divisor for i in [0, count).
func GapMultiples(lambda float64, count, divisor int) []float64 {
	if count <= 0 || divisor <= 0 {
		return nil
	}
	gaps := make([]float64, count)
	for i := range gaps {
		gaps[i] = lambda * float64(i+1) / float64(divisor)
	}
	return gaps
}

// SweepByGap reruns the pipeline for every gap and maps gap → magnitude.
func SweepByGap(p Params, gaps []float64, rMax float64, n int, focal float64, obs Observation) (map[float64][]float64, error) {
	out := make(map[float64][]float64, len(gaps))
	for _, gap := range gaps {
		res, err := Synthesize(p, Geometry{OuterRadius: rMax, MinGap: gap, Rings: n}, focal, obs)
		if err != nil {
			return nil, fmt.Errorf("gap %v: %w", gap, err)
		}
		out[gap] = res.Magnitude
	}
	return out, nil
}

// SweepByFrequency reruns the pipeline per frequency, keeping the gap at a
// fixed number of wavelengths, and maps frequency → magnitude.
func SweepByFrequency(p Params, freqs []float64, gapWavelengths, rMax float64, n int, focal float64, obs Observation) (map[float64][]float64, error) {
	out := make(map[float64][]float64, len(freqs))
	for _, f := range freqs {
		q := p
		q.Frequency = f
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("frequency %v: %w", f, err)
		}
		geom := Geometry{OuterRadius: rMax, MinGap: gapWavelengths * q.Wavelength(), Rings: n}
		res, err := Synthesize(q, geom, focal, obs)
		if err != nil {
			return nil, fmt.Errorf("frequency %v: %w", f, err)
		}
		out[f] = res.Magnitude
	}
	return out, nil
}
