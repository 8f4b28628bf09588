package chart

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kacperjurak/goarraycore/pkg/models"
)

func TestWriteSVG(t *testing.T) {
	res := models.FieldResult{Axis: []float64{-0.1, 0, 0.1}, Magnitude: []float64{0.5, 1, 0.5}}
	p, err := New("field", AxisLabel("angular"), "|p|", FromResult("gap 0.5λ", res))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteSVG(&buf, p, 4); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Fatalf("output is not SVG: %.80s", buf.String())
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New("t", "x", "y"); !errors.Is(err, ErrNoSeries) {
		t.Errorf("err = %v, want ErrNoSeries", err)
	}
	if _, err := New("t", "x", "y", Series{Name: "bad", X: []float64{1, 2}, Y: []float64{1}}); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestFromSweepOrdersKeys(t *testing.T) {
	axis := []float64{0, 1}
	sweep := map[float64][]float64{0.6: {1, 2}, 0.2: {3, 4}, 0.4: {5, 6}}
	series := FromSweep(axis, sweep, func(k float64) string { return fmt.Sprintf("%.1f", k) })

	var names []string
	for _, s := range series {
		names = append(names, s.Name)
	}
	if got := strings.Join(names, ","); got != "0.2,0.4,0.6" {
		t.Fatalf("order = %s", got)
	}
	if series[0].Y[0] != 3 {
		t.Fatalf("series[0] = %+v", series[0])
	}
}

func TestAxisLabel(t *testing.T) {
	if AxisLabel("distance") != "distance (m)" || AxisLabel("angular") != "angle (rad)" {
		t.Fatal("unexpected labels")
	}
}
