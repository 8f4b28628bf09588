package goarraycore

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/kacperjurak/goarraycore/internal/testutil"
)

func TestDirectivityLimits(t *testing.T) {
	k := DefaultParams().Wavenumber()

	got, err := Directivity(k, 1e-3, 1e-8)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-1) >= 1e-4 {
		t.Fatalf("Directivity(θ=1e-8) = %v, want ≈1", got)
	}

	got, err = Directivity(k, 4e-3, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Fatalf("Directivity(θ=0) = %v, want 1", got)
	}

	got, err = Directivity(k, 0, 0.3)
	if err != nil {
		t.Fatal(err)
	}
	if got != 2 {
		t.Fatalf("Directivity(a=0) = %v, want 2", got)
	}
}

func TestDirectivityKnownValue(t *testing.T) {
	k := 2 * math.Pi / 1e-3
	got, err := Directivity(k, 1/k, math.Pi/2)
	if err != nil {
		t.Fatal(err)
	}
	// 2·J1(1)
	if math.Abs(got-0.8801011714898) > 1e-9 {
		t.Fatalf("Directivity(x=1) = %v, want 0.8801011714898", got)
	}
}

func TestDirectivitySymmetric(t *testing.T) {
	k := DefaultParams().Wavenumber()
	for _, a := range []float64{0, InnerEpsilon, 1e-4, 3.7e-3, 9.5e-3} {
		for _, theta := range []float64{1e-9, 1e-5, 0.01, 0.2, 1, math.Pi / 2} {
			pos, err := Directivity(k, a, theta)
			if err != nil {
				t.Fatal(err)
			}
			neg, err := Directivity(k, a, -theta)
			if err != nil {
				t.Fatal(err)
			}
			if pos != neg {
				t.Fatalf("a=%v θ=%v: J(θ)=%v J(-θ)=%v", a, theta, pos, neg)
			}
		}
	}
}

func TestDirectivitySeriesContinuity(t *testing.T) {
	k := 1.0
	a := 1.0
	below := math.Asin(seriesThreshold * (1 - 1e-6))
	above := math.Asin(seriesThreshold * (1 + 1e-6))
	lo, _ := Directivity(k, a, below)
	hi, _ := Directivity(k, a, above)
	if math.Abs(lo-hi) > 1e-12 {
		t.Fatalf("series/Bessel mismatch at threshold: %v vs %v", lo, hi)
	}
}

func TestDirectivityInvalidAngle(t *testing.T) {
	for _, theta := range []float64{2, -2, math.NaN()} {
		if _, err := Directivity(1, 1, theta); !errors.Is(err, ErrInvalidAngleRange) {
			t.Errorf("θ=%v: err = %v, want ErrInvalidAngleRange", theta, err)
		}
	}
	if _, err := Directivity(1, 1, math.Pi/2); err != nil {
		t.Errorf("θ=π/2 rejected: %v", err)
	}
}

func TestRingPressure(t *testing.T) {
	p := DefaultParams()
	ring, _ := NewRing(0, 1e-3, 2e-3)

	got, err := RingPressure(p, 10e-3, ring, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	// on boresight both disks have unit directivity
	wantAmp := p.Omega() * p.Pressure * p.Velocity / 10e-3 * (4e-6 - 1e-6)
	testutil.RequireRelNearlyEqual(t, cmplx.Abs(got), wantAmp, 1e-12)

	flat, _ := NewRing(1, 2e-3, 2e-3)
	got, err = RingPressure(p, 10e-3, flat, 0.1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Fatalf("zero-width ring pressure = %v, want 0", got)
	}

	if _, err := RingPressure(p, 0, ring, 0, 0); !errors.Is(err, ErrInvalidObservation) {
		t.Errorf("r=0: err = %v", err)
	}
	if _, err := RingPressure(p, 1e-2, ring, 3, 0); !errors.Is(err, ErrInvalidAngleRange) {
		t.Errorf("θ=3: err = %v", err)
	}
	if _, err := RingPressure(Params{}, 1e-2, ring, 0, 0); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("zero params: err = %v", err)
	}
}

func TestAxisPressure(t *testing.T) {
	p := DefaultParams()
	ring, _ := NewRing(0, 1e-3, 2e-3)

	got, err := AxisPressure(p, 0, ring, 0)
	if err != nil {
		t.Fatal(err)
	}
	k := p.Wavenumber()
	want := complex(p.Pressure*p.SoundSpeed*p.Velocity, 0) *
		(cmplx.Exp(complex(0, -k*2e-3)) - cmplx.Exp(complex(0, -k*1e-3)))
	testutil.RequireRelNearlyEqual(t, cmplx.Abs(got), cmplx.Abs(want), 1e-12)

	if _, err := AxisPressure(p, -1e-3, ring, 0); !errors.Is(err, ErrInvalidObservation) {
		t.Errorf("negative distance: err = %v", err)
	}
}

func TestPistonPressure(t *testing.T) {
	p := DefaultParams()
	got, err := PistonPressure(p, 5e-3, 10e-3, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := p.Omega() * p.Pressure * p.Velocity * 1e-4 / (2 * 5e-3)
	testutil.RequireRelNearlyEqual(t, cmplx.Abs(got), want, 1e-12)

	if _, err := PistonPressure(p, 5e-3, -1, 0, 0); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("negative radius: err = %v", err)
	}
}

func TestDirectivityPattern(t *testing.T) {
	k := DefaultParams().Wavenumber()
	angles := Span(-math.Pi/2, math.Pi/2, 181)
	pattern, err := DirectivityPattern(k, 3/k, angles)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireFinite(t, pattern)
	if pattern[90] != 1 {
		t.Fatalf("boresight value = %v, want 1", pattern[90])
	}
	if _, err := DirectivityPattern(k, 1e-3, []float64{0, 4}); !errors.Is(err, ErrInvalidAngleRange) {
		t.Fatalf("err = %v", err)
	}
}

func TestSumFieldFocusGain(t *testing.T) {
	p := DefaultParams()
	rings, err := BuildRings(9.5e-3, p.Wavelength()/2, 6)
	if err != nil {
		t.Fatal(err)
	}
	focal := 10e-3
	delays, err := ComputeDelays(rings, focal, p.SoundSpeed)
	if err != nil {
		t.Fatal(err)
	}
	obs := Observation{Mode: DistanceSweep, Distances: []float64{focal}}

	focused, err := SumField(p, rings, delays, obs)
	if err != nil {
		t.Fatal(err)
	}
	unfocused, err := SumField(p, rings, make([]float64, len(rings)), obs)
	if err != nil {
		t.Fatal(err)
	}
	if focused[0] < unfocused[0] {
		t.Fatalf("focused %v < unfocused %v at the focal point", focused[0], unfocused[0])
	}
}

func TestSumFieldSingleRing(t *testing.T) {
	p := DefaultParams()
	rings, err := BuildRings(5e-3, 1e-4, 1)
	if err != nil {
		t.Fatal(err)
	}
	delays, err := ComputeDelays(rings, 10e-3, p.SoundSpeed)
	if err != nil {
		t.Fatal(err)
	}
	angles := Span(-math.Pi/10, math.Pi/10, 41)
	obs := Observation{Mode: AngularSweep, Angles: angles, Distance: 10e-3}

	sum, err := SumField(p, rings, delays, obs)
	if err != nil {
		t.Fatal(err)
	}
	for j, theta := range angles {
		single, err := RingPressure(p, 10e-3, rings[0], theta, 0)
		if err != nil {
			t.Fatal(err)
		}
		testutil.RequireRelNearlyEqual(t, sum[j], cmplx.Abs(single), 1e-12)
	}
}

func TestSumRings(t *testing.T) {
	got, err := SumRings([][]complex128{{1, 1i}, {1i, 2}})
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, got, []float64{math.Sqrt2, math.Sqrt(5)}, 1e-15)

	if got, err := SumRings(nil); err != nil || got != nil {
		t.Fatalf("SumRings(nil) = %v, %v", got, err)
	}
	if _, err := SumRings([][]complex128{{1}, {1, 2}}); !errors.Is(err, ErrInvalidObservation) {
		t.Fatalf("ragged field: err = %v, want ErrInvalidObservation", err)
	}
}

// Reversing the ring time offsets is the same as negating every delay.
// Advancing the outer rings must give the stronger on-axis focus.
func TestRingTimesSignFocuses(t *testing.T) {
	p, rings := sixRingProbe(t)
	focal := 10e-3
	delays, err := ComputeDelays(rings, focal, p.SoundSpeed)
	if err != nil {
		t.Fatal(err)
	}
	reversed := make([]float64, len(delays))
	for i, d := range delays {
		reversed[i] = -d
	}
	obs := Observation{Mode: DistanceSweep, Distances: []float64{focal}}

	advanced, err := SumField(p, rings, delays, obs)
	if err != nil {
		t.Fatal(err)
	}
	retarded, err := SumField(p, rings, reversed, obs)
	if err != nil {
		t.Fatal(err)
	}
	if advanced[0] < 1.5*retarded[0] {
		t.Fatalf("on-axis focus %v with advanced outer rings, %v with retarded", advanced[0], retarded[0])
	}
}

func TestRingFieldModes(t *testing.T) {
	p, rings := sixRingProbe(t)
	delays, err := ComputeDelays(rings, 10e-3, p.SoundSpeed)
	if err != nil {
		t.Fatal(err)
	}
	times := RingTimes(delays)

	obs := Observation{Mode: DistanceSweep, Distances: []float64{5e-3, 10e-3}, Angle: 0.1}
	field, err := RingField(p, rings, delays, obs)
	if err != nil {
		t.Fatal(err)
	}
	if len(field) != len(rings) || len(field[0]) != 2 {
		t.Fatalf("field shape = %dx%d", len(field), len(field[0]))
	}
	want, _ := RingPressure(p, 10e-3, rings[3], 0.1, times[3])
	if cmplx.Abs(field[3][1]-want) > 1e-9*cmplx.Abs(want) {
		t.Fatalf("off-axis distance sweep = %v, want %v", field[3][1], want)
	}

	obs.Angle = 0
	field, err = RingField(p, rings, delays, obs)
	if err != nil {
		t.Fatal(err)
	}
	want, _ = AxisPressure(p, 5e-3, rings[2], times[2])
	if cmplx.Abs(field[2][0]-want) > 1e-9*cmplx.Abs(want) {
		t.Fatalf("axial sweep = %v, want %v", field[2][0], want)
	}
}

func TestRingFieldInvalid(t *testing.T) {
	p, rings := sixRingProbe(t)
	delays := make([]float64, len(rings))

	tests := []struct {
		name    string
		delays  []float64
		obs     Observation
		wantErr error
	}{
		{"delay count", delays[:2], Observation{Angles: []float64{0}, Distance: 1e-2}, ErrInvalidParameters},
		{"zero distance", delays, Observation{Angles: []float64{0}}, ErrInvalidObservation},
		{"angle out of range", delays, Observation{Angles: []float64{0, 2}, Distance: 1e-2}, ErrInvalidAngleRange},
		{"negative distance", delays, Observation{Mode: DistanceSweep, Distances: []float64{-1}}, ErrInvalidObservation},
		{"empty", delays, Observation{Distance: 1e-2}, ErrInvalidObservation},
		{"off-axis origin", delays, Observation{Mode: DistanceSweep, Distances: []float64{0}, Angle: 0.2}, ErrInvalidObservation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RingField(p, rings, tt.delays, tt.obs)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSpanAndArange(t *testing.T) {
	testutil.RequireSliceNearlyEqual(t, Span(0, 1, 5), []float64{0, 0.25, 0.5, 0.75, 1}, 1e-15)
	if got := Span(3, 4, 1); len(got) != 1 || got[0] != 3 {
		t.Fatalf("Span n=1 = %v", got)
	}
	if got := Span(0, 1, 0); got != nil {
		t.Fatalf("Span n=0 = %v", got)
	}
	testutil.RequireSliceNearlyEqual(t, Arange(0, 1, 0.25), []float64{0, 0.25, 0.5, 0.75}, 1e-15)
	if got := Arange(0, 1, 0); got != nil {
		t.Fatalf("Arange step=0 = %v", got)
	}
}
