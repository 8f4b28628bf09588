package chart

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/kacperjurak/goarraycore/pkg/models"
)

var ErrNoSeries = errors.New("chart: no series to draw")

// Series is one named curve.
type Series struct {
	Name string
	X    []float64
	Y    []float64
}

// New draws every series as a line on a single plot.
func New(title, xLabel, yLabel string, series ...Series) (*plot.Plot, error) {
	if len(series) == 0 {
		return nil, ErrNoSeries
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	lines := make([]interface{}, 0, 2*len(series))
	for _, s := range series {
		if len(s.X) != len(s.Y) {
			return nil, fmt.Errorf("chart: series %q has %d x and %d y values", s.Name, len(s.X), len(s.Y))
		}
		pts := make(plotter.XYs, len(s.X))
		for i := range s.X {
			pts[i] = plotter.XY{X: s.X[i], Y: s.Y[i]}
		}
		lines = append(lines, s.Name, pts)
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return nil, fmt.Errorf("chart: %w", err)
	}
	return p, nil
}

// WriteSVG renders p as a square SVG of the given size in inches.
func WriteSVG(w io.Writer, p *plot.Plot, inches float64) error {
	size := vg.Length(inches) * vg.Inch
	wt, err := p.WriterTo(size, size, "svg")
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// AxisLabel names the swept coordinate of a field mode.
func AxisLabel(mode string) string {
	if mode == "distance" {
		return "distance (m)"
	}
	return "angle (rad)"
}

// FromResult turns a field result into a single series.
func FromResult(name string, res models.FieldResult) Series {
	return Series{Name: name, X: res.Axis, Y: res.Magnitude}
}

// FromSweep turns a key → magnitude sweep into series ordered by key.
// Every curve shares axis.
func FromSweep(axis []float64, sweep map[float64][]float64, name func(key float64) string) []Series {
	keys := make([]float64, 0, len(sweep))
	for k := range sweep {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]Series, len(keys))
	for i, k := range keys {
		out[i] = Series{Name: name(k), X: axis, Y: sweep[k]}
	}
	return out
}
