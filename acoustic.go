package goarraycore

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by the field synthesis pipeline.
var (
	ErrInvalidGeometry    = errors.New("goarraycore: invalid array geometry")
	ErrInvalidAngleRange  = errors.New("goarraycore: angle outside [-pi/2, pi/2]")
	ErrDomainMismatch     = errors.New("goarraycore: ring inner radius exceeds outer radius")
	ErrInvalidParameters  = errors.New("goarraycore: invalid acoustic parameters")
	ErrInvalidFocus       = errors.New("goarraycore: focal distance must be positive")
	ErrInvalidObservation = errors.New("goarraycore: invalid observation point")
)

// Params describes the drive and the propagation medium.
type Params struct {
	Frequency  float64 // Hz
	SoundSpeed float64 // m/s
	Velocity   float64 // reference particle velocity u
	Pressure   float64 // reference pressure scale p
}

// DefaultParams returns the 4 MHz water setup used by the six ring probe.
func DefaultParams() Params {
	return Params{
		Frequency:  4e6,
		SoundSpeed: 1500.0,
		Velocity:   1.0e3,
		Pressure:   1.0e3,
	}
}

func (p Params) Validate() error {
	if !(p.Frequency > 0) || math.IsInf(p.Frequency, 0) {
		return fmt.Errorf("%w: frequency %v", ErrInvalidParameters, p.Frequency)
	}
	if !(p.SoundSpeed > 0) || math.IsInf(p.SoundSpeed, 0) {
		return fmt.Errorf("%w: sound speed %v", ErrInvalidParameters, p.SoundSpeed)
	}
	if math.IsNaN(p.Velocity) || math.IsNaN(p.Pressure) {
		return fmt.Errorf("%w: reference velocity/pressure is NaN", ErrInvalidParameters)
	}
	return nil
}

// Omega is the angular frequency 2πf.
func (p Params) Omega() float64 {
	return 2 * math.Pi * p.Frequency
}

// Wavelength is c/f.
func (p Params) Wavelength() float64 {
	return p.SoundSpeed / p.Frequency
}

// Wavenumber is 2π/λ.
func (p Params) Wavenumber() float64 {
	return 2 * math.Pi / p.Wavelength()
}
