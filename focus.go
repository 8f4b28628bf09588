package goarraycore

import (
	"fmt"
	"log"
	"math"
	"time"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

const (
	FocusNelderMead = "nelder-mead"
	FocusLBFGS      = "lbfgs"
)

// Status values of a FocusResult.
const (
	OK    = "OK"
	ERROR = "ERROR"
)

// FocusResult is the refined on-axis intensity maximum.
type FocusResult struct {
	Distance        float64
	Magnitude       float64
	Method          string
	Status          string
	Iterations      int
	FuncEvaluations int
	Runtime         time.Duration
}

// FocusSolver searches the on-axis field of a focused array for its
// maximum. The search runs in wavelengths so the simplex and the finite
// difference steps are on the scale of the field structure.
type FocusSolver struct {
	Params Params
	Rings  []Ring
	Delays []float64
	Method string
	Time   float64

	medium medium
	times  []float64
	scale  float64
}

func NewFocusSolver(p Params, rings []Ring, delays []float64) (*FocusSolver, error) {
	if err := checkPipeline(p, rings, delays); err != nil {
		return nil, err
	}
	s := &FocusSolver{
		Params: p,
		Rings:  rings,
		Delays: delays,
		Method: FocusNelderMead,
		medium: newMedium(p),
		times:  RingTimes(delays),
		scale:  1,
	}
	if norm := math.Abs(s.medium.pcu) * float64(len(rings)); norm > 0 {
		s.scale = 1 / norm
	}
	return s, nil
}

// AxialMagnitude is |Σ AxisPressure| at distance r.
func (s *FocusSolver) AxialMagnitude(r float64) float64 {
	r = math.Abs(r)
	var sum complex128
	for i, ring := range s.Rings {
		sum += s.medium.axis(r, ring, s.Time+s.times[i])
	}
	return math.Hypot(real(sum), imag(sum))
}

func (s *FocusSolver) problem(x []float64) float64 {
	return -s.AxialMagnitude(x[0]*s.Params.Wavelength()) * s.scale
}

// Solve refines the maximum starting at distance initial.
func (s *FocusSolver) Solve(initial float64) (FocusResult, error) {
	if !(initial > 0) {
		return FocusResult{Status: ERROR}, fmt.Errorf("%w: start distance %v", ErrInvalidObservation, initial)
	}
	switch s.Method {
	case FocusLBFGS:
		return s.lbfgsSolve(initial)
	case FocusNelderMead, "":
		return s.nmSolve(initial)
	}
	log.Printf("Unknown focus method '%s', using Nelder-Mead", s.Method)
	return s.nmSolve(initial)
}

// SolveFromGrid samples distances, then refines around the best sample.
func (s *FocusSolver) SolveFromGrid(distances []float64) (FocusResult, error) {
	if len(distances) == 0 {
		return FocusResult{Status: ERROR}, fmt.Errorf("%w: empty distance grid", ErrInvalidObservation)
	}
	mags := make([]float64, len(distances))
	for i, r := range distances {
		mags[i] = s.AxialMagnitude(r)
	}
	start := distances[floats.MaxIdx(mags)]
	if start <= 0 {
		start = s.Params.Wavelength()
	}
	return s.Solve(start)
}

func (s *FocusSolver) nmSolve(initial float64) (FocusResult, error) {
	log.Println("Focus NM Solve Mode")

	problem := optimize.Problem{
		Func: s.problem,
	}
	settings := &optimize.Settings{
		MajorIterations: 1000,
	}
	x0 := []float64{initial / s.Params.Wavelength()}

	res, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{SimplexSize: 1})
	return s.finish(FocusNelderMead, initial, res, err)
}

func (s *FocusSolver) lbfgsSolve(initial float64) (FocusResult, error) {
	log.Println("Focus LBFGS Solve Mode")

	grad := func(grad, x []float64) {
		fd.Gradient(grad, s.problem, x, &fd.Settings{
			Formula: fd.Central,
		})
	}
	problem := optimize.Problem{
		Func: s.problem,
		Grad: grad,
	}
	settings := &optimize.Settings{
		MajorIterations: 1000,
	}
	x0 := []float64{initial / s.Params.Wavelength()}

	res, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{})
	return s.finish(FocusLBFGS, initial, res, err)
}

// finish keeps the best location of a search that stopped early, e.g. on a
// line search failure next to the peak.
func (s *FocusSolver) finish(method string, initial float64, res *optimize.Result, err error) (FocusResult, error) {
	if res == nil || len(res.X) == 0 {
		log.Printf("%s focus search failed: %v", method, err)
		return FocusResult{Method: method, Status: ERROR}, fmt.Errorf("%s focus search: %w", method, err)
	}
	if err != nil {
		log.Printf("WARNING: %s focus search stopped early: %v", method, err)
	}
	return s.result(method, initial, res), nil
}

func (s *FocusSolver) result(method string, initial float64, res *optimize.Result) FocusResult {
	dist := math.Abs(res.X[0]) * s.Params.Wavelength()
	mag := s.AxialMagnitude(dist)
	// never report a point worse than where the search started
	if start := s.AxialMagnitude(initial); start > mag {
		dist, mag = initial, start
	}
	return FocusResult{
		Distance:        dist,
		Magnitude:       mag,
		Method:          method,
		Status:          OK,
		Iterations:      res.MajorIterations,
		FuncEvaluations: res.FuncEvaluations,
		Runtime:         res.Runtime,
	}
}
