package processing

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/kacperjurak/goarraycore"
	"github.com/kacperjurak/goarraycore/pkg/config"
	"github.com/kacperjurak/goarraycore/pkg/models"
)

const (
	AngularMode  = "angular"
	DistanceMode = "distance"
)

// FieldProcessor runs field requests through the synthesis pipeline
type FieldProcessor struct{}

// NewFieldProcessor creates a new field processor
func NewFieldProcessor() *FieldProcessor {
	return &FieldProcessor{}
}

// Process builds the rings, focuses them and samples the requested sweep.
func (p *FieldProcessor) Process(req models.FieldRequest, cfg *config.Config) (models.FieldResult, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	params := Params(req)
	if err := params.Validate(); err != nil {
		return failed(err), err
	}
	lambda := params.Wavelength()

	gap := req.Gap
	if gap == 0 {
		gap = req.GapWavelengths * lambda
	}

	var (
		rings []goarraycore.Ring
		err   error
	)
	if req.FitAperture {
		rings, err = goarraycore.FitRings(req.OuterRadius, gap, req.Rings, lambda)
	} else {
		rings, err = goarraycore.BuildRings(req.OuterRadius, gap, req.Rings)
	}
	if err != nil {
		return failed(err), err
	}

	delays, err := goarraycore.ComputeDelays(rings, req.Focal, params.SoundSpeed)
	if err != nil {
		return failed(err), err
	}

	obs, err := Observation(req)
	if err != nil {
		return failed(err), err
	}

	startTime := time.Now()
	field, err := goarraycore.RingField(params, rings, delays, obs)
	if err != nil {
		return failed(err), err
	}
	magnitude, err := goarraycore.SumRings(field)
	if err != nil {
		return failed(err), err
	}
	duration := time.Since(startTime)

	res := models.FieldResult{
		Status:     goarraycore.OK,
		Mode:       obs.Mode.String(),
		Wavelength: lambda,
		Gap:        gap,
		Frequency:  params.Frequency,
		Rings:      ringGeometry(rings, delays),
		Axis:       obs.Axis(),
		Magnitude:  magnitude,
		Field:      field,
	}

	if m, err := goarraycore.AnalyzeBeam(res.Axis, magnitude); err == nil {
		res.Beam = &models.Beam{
			PeakPosition:  m.PeakPosition,
			PeakValue:     m.PeakValue,
			MainLobeWidth: m.MainLobeWidth,
			SideLobeDB:    sanitizeFloat(m.SideLobeDB),
		}
	} else {
		log.Printf("WARNING: beam metrics unavailable: %v", err)
	}

	if obs.Mode == goarraycore.DistanceSweep && obs.Angle == 0 && req.FocusMethod != "" {
		res.Focus = p.refineFocus(params, rings, delays, obs, req.FocusMethod)
	}

	if !cfg.Quiet {
		log.Printf("Field computed - Mode: %s, Rings: %d, Gap: %.4e m, Points: %d, Time: %v",
			res.Mode, len(rings), gap, len(magnitude), duration)
	}
	return res, nil
}

func (p *FieldProcessor) refineFocus(params goarraycore.Params, rings []goarraycore.Ring, delays []float64, obs goarraycore.Observation, method string) *models.Focus {
	solver, err := goarraycore.NewFocusSolver(params, rings, delays)
	if err != nil {
		log.Printf("WARNING: focus solver unavailable: %v", err)
		return nil
	}
	solver.Method = method
	solver.Time = obs.Time

	fr, err := solver.SolveFromGrid(obs.Distances)
	if err != nil || fr.Status != goarraycore.OK {
		log.Printf("WARNING: focus refinement failed: %v", err)
		return nil
	}
	return &models.Focus{Distance: fr.Distance, Magnitude: fr.Magnitude, Method: fr.Method}
}

// ProcessorFunc creates a function compatible with the worker pool
func (p *FieldProcessor) ProcessorFunc() func(req models.FieldRequest, cfg *config.Config) (models.FieldResult, error) {
	return func(req models.FieldRequest, cfg *config.Config) (models.FieldResult, error) {
		result, err := p.Process(req, cfg)
		if err != nil {
			log.Printf("Field processing error: %v", err)
		}
		return result, err
	}
}

// Params fills zero physical constants from goarraycore.DefaultParams.
func Params(req models.FieldRequest) goarraycore.Params {
	p := goarraycore.DefaultParams()
	if req.Frequency != 0 {
		p.Frequency = req.Frequency
	}
	if req.SoundSpeed != 0 {
		p.SoundSpeed = req.SoundSpeed
	}
	if req.Velocity != 0 {
		p.Velocity = req.Velocity
	}
	if req.Pressure != 0 {
		p.Pressure = req.Pressure
	}
	return p
}

// Observation converts the sweep part of a request. Explicit point lists
// win over grids.
func Observation(req models.FieldRequest) (goarraycore.Observation, error) {
	obs := goarraycore.Observation{Time: req.Time}
	switch strings.ToLower(req.Mode) {
	case "", AngularMode:
		obs.Mode = goarraycore.AngularSweep
		obs.Distance = req.Distance
		obs.Angles = req.Angles
		if len(obs.Angles) == 0 {
			obs.Angles = span(req.AngleGrid)
		}
	case DistanceMode:
		obs.Mode = goarraycore.DistanceSweep
		obs.Angle = req.Angle
		obs.Distances = req.Distances
		if len(obs.Distances) == 0 {
			obs.Distances = span(req.DistanceGrid)
		}
	default:
		return obs, fmt.Errorf("%w: unknown mode %q", goarraycore.ErrInvalidObservation, req.Mode)
	}
	return obs, obs.Validate()
}

// Expand turns a batch into one request per gap and frequency combination.
func Expand(batch models.BatchRequest) []models.FieldRequest {
	freqs := batch.Frequencies
	if len(freqs) == 0 {
		freqs = []float64{batch.Base.Frequency}
	}
	gaps := batch.GapWavelengths

	out := make([]models.FieldRequest, 0, len(freqs)*max(len(gaps), 1))
	for _, f := range freqs {
		req := batch.Base
		req.Frequency = f
		if len(gaps) == 0 {
			out = append(out, req)
			continue
		}
		for _, g := range gaps {
			req.Gap = 0
			req.GapWavelengths = g
			out = append(out, req)
		}
	}
	return out
}

// IsInputError reports whether err was caused by the request rather than
// by the server.
func IsInputError(err error) bool {
	for _, target := range []error{
		goarraycore.ErrInvalidGeometry,
		goarraycore.ErrInvalidAngleRange,
		goarraycore.ErrDomainMismatch,
		goarraycore.ErrInvalidParameters,
		goarraycore.ErrInvalidFocus,
		goarraycore.ErrInvalidObservation,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func span(r models.Range) []float64 {
	return goarraycore.Span(r.Start, r.Stop, r.Steps)
}

func ringGeometry(rings []goarraycore.Ring, delays []float64) []models.RingGeometry {
	out := make([]models.RingGeometry, len(rings))
	for i, r := range rings {
		out[i] = models.RingGeometry{Index: r.Index, Inner: r.Inner, Outer: r.Outer, Delay: delays[i]}
	}
	return out
}

func failed(err error) models.FieldResult {
	return models.FieldResult{Status: goarraycore.ERROR, Error: err.Error()}
}

// sanitizeFloat cleans float64 values for JSON compatibility
func sanitizeFloat(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0.0
	}
	return value
}
