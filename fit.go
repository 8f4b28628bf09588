package goarraycore

import (
	"fmt"
	"log"
	"math"

	"github.com/maorshutman/lm"
)

// Residual, in wavelengths, accepted from the fit.
const fitTolerance = 1e-6

// FitRings lays out n equal-area rings separated by exactly minGap whose
// outermost edge lands on rMax. Unlike BuildRings it accounts for the true
// area of every gap annulus; the ring-0 radius is found by Levenberg-Marquardt
// working in units of lambda.
func FitRings(rMax, minGap float64, n int, lambda float64) (rings []Ring, err error) {
	if err := validateGeometry(rMax, minGap, n); err != nil {
		return nil, err
	}
	if !(lambda > 0) || math.IsInf(lambda, 0) {
		return nil, fmt.Errorf("%w: wavelength %v", ErrInvalidParameters, lambda)
	}
	if float64(n-1)*minGap >= rMax {
		return nil, fmt.Errorf("%w: %d gaps of %v do not fit in radius %v", ErrInvalidGeometry, n-1, minGap, rMax)
	}

	log.Println("Fit LM Solve Mode")

	guess := rMax / math.Sqrt(float64(n))
	if approx, err := BuildRings(rMax, minGap, n); err == nil {
		guess = approx[0].Outer
	}

	fnc := func(dst, x []float64) {
		first := math.Abs(x[0]) * lambda
		dst[0] = (outermostEdge(first, minGap, n) - rMax) / lambda
	}

	jac := lm.NumJac{Func: fnc}

	problem := lm.LMProblem{
		Dim:        1,
		Size:       1,
		Func:       fnc,
		Jac:        jac.Jac,
		InitParams: []float64{guess / lambda},
		Tau:        1e-3,
		Eps1:       1e-12,
		Eps2:       1e-12,
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("LM ring fit panicked: %v", r)
			rings, err = nil, fmt.Errorf("%w: ring fit failed: %v", ErrInvalidGeometry, r)
		}
	}()

	res, err := lm.LM(problem, &lm.Settings{Iterations: 1000, ObjectiveTol: 1e-20})
	if err != nil {
		log.Printf("LM ring fit failed: %v", err)
		return nil, fmt.Errorf("ring fit: %w", err)
	}

	first := math.Abs(res.X[0]) * lambda
	residual := (outermostEdge(first, minGap, n) - rMax) / lambda
	if math.Abs(residual) > fitTolerance {
		return nil, fmt.Errorf("%w: ring fit stopped %.3g wavelengths from the aperture edge", ErrInvalidGeometry, residual)
	}
	return layoutRings(first, minGap, n)
}

// outermostEdge mirrors layoutRings without allocating.
func outermostEdge(first, minGap float64, n int) float64 {
	outer := first
	for i := 1; i < n; i++ {
		inner := outer + minGap
		outer = math.Sqrt(inner*inner + first*first)
	}
	return outer
}
