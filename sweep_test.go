package goarraycore

import (
	"errors"
	"math"
	"testing"

	"github.com/kacperjurak/goarraycore/internal/testutil"
)

func angularObservation() Observation {
	return Observation{
		Mode:     AngularSweep,
		Angles:   Span(-math.Pi/10, math.Pi/10, 201),
		Distance: 10e-3,
	}
}

func TestGapMultiples(t *testing.T) {
	lambda := 0.375e-3
	got := GapMultiples(lambda, 5, 5)
	want := []float64{0.2 * lambda, 0.4 * lambda, 0.6 * lambda, 0.8 * lambda, lambda}
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-18)

	if GapMultiples(lambda, 0, 5) != nil || GapMultiples(lambda, 3, 0) != nil {
		t.Fatal("expected nil for non-positive count or divisor")
	}
}

func TestSweepByGapMatchesSinglePipeline(t *testing.T) {
	p := DefaultParams()
	obs := angularObservation()
	gaps := GapMultiples(p.Wavelength(), 5, 5)

	sweep, err := SweepByGap(p, gaps, 9.5e-3, 6, 10e-3, obs)
	if err != nil {
		t.Fatal(err)
	}
	if len(sweep) != len(gaps) {
		t.Fatalf("len = %d, want %d", len(sweep), len(gaps))
	}

	for _, gap := range gaps {
		res, err := Synthesize(p, Geometry{OuterRadius: 9.5e-3, MinGap: gap, Rings: 6}, 10e-3, obs)
		if err != nil {
			t.Fatal(err)
		}
		got, ok := sweep[gap]
		if !ok {
			t.Fatalf("gap %v missing from sweep", gap)
		}
		testutil.RequireSliceNearlyEqual(t, got, res.Magnitude, 0)
	}
}

func TestSweepByGapRepeatable(t *testing.T) {
	p := DefaultParams()
	obs := angularObservation()
	gaps := []float64{p.Wavelength() / 2, p.Wavelength(), p.Wavelength() / 2}

	sweep, err := SweepByGap(p, gaps, 9.5e-3, 6, 10e-3, obs)
	if err != nil {
		t.Fatal(err)
	}
	if len(sweep) != 2 {
		t.Fatalf("len = %d, want 2 distinct gaps", len(sweep))
	}
}

func TestSweepByGapInvalidGap(t *testing.T) {
	p := DefaultParams()
	_, err := SweepByGap(p, []float64{1e-4, 5e-3}, 9.5e-3, 6, 10e-3, angularObservation())
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("err = %v, want ErrInvalidGeometry", err)
	}
}

func TestSweepByFrequency(t *testing.T) {
	p := DefaultParams()
	obs := Observation{Mode: DistanceSweep, Distances: Span(1e-3, 20e-3, 64)}
	freqs := []float64{2e6, 4e6}

	sweep, err := SweepByFrequency(p, freqs, 0.5, 9.5e-3, 6, 10e-3, obs)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range freqs {
		mag := sweep[f]
		if len(mag) != 64 {
			t.Fatalf("f=%v: len = %d, want 64", f, len(mag))
		}
		testutil.RequireFinite(t, mag)
	}

	q := p
	q.Frequency = 2e6
	res, err := Synthesize(q, Geometry{OuterRadius: 9.5e-3, MinGap: q.Wavelength() / 2, Rings: 6}, 10e-3, obs)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, sweep[2e6], res.Magnitude, 0)

	if _, err := SweepByFrequency(p, []float64{-1}, 0.5, 9.5e-3, 6, 10e-3, obs); !errors.Is(err, ErrInvalidParameters) {
		t.Fatalf("err = %v, want ErrInvalidParameters", err)
	}
}

func TestRunSweepWithPoolMatchesSequential(t *testing.T) {
	p := DefaultParams()
	obs := angularObservation()
	gaps := GapMultiples(p.Wavelength(), 5, 5)

	seq, err := SweepByGap(p, gaps, 9.5e-3, 6, 10e-3, obs)
	if err != nil {
		t.Fatal(err)
	}
	for _, workers := range []int{0, 1, 3, 8} {
		par, err := RunSweepWithPool(p, gaps, 9.5e-3, 6, 10e-3, obs, workers)
		if err != nil {
			t.Fatal(err)
		}
		for gap, want := range seq {
			testutil.RequireSliceNearlyEqual(t, par[gap], want, 0)
		}
	}

	if _, err := RunSweepWithPool(p, []float64{5e-3}, 9.5e-3, 6, 10e-3, obs, 2); !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("err = %v, want ErrInvalidGeometry", err)
	}
}

func TestSynthesizeRejectsBadFocus(t *testing.T) {
	p := DefaultParams()
	_, err := Synthesize(p, Geometry{OuterRadius: 9.5e-3, MinGap: 1e-4, Rings: 6}, 0, angularObservation())
	if !errors.Is(err, ErrInvalidFocus) {
		t.Fatalf("err = %v, want ErrInvalidFocus", err)
	}
}
