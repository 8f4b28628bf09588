package webhook

import (
	"log"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/kacperjurak/goarraycore/pkg/models"
)

// Calculator splits a [ring][point] field into per-ring magnitude and phase
type Calculator struct{}

// NewCalculator creates a new ring contribution calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// RingContributions returns one entry per ring, in ring order.
func (c *Calculator) RingContributions(field [][]complex128) []models.RingContribution {
	result := make([]models.RingContribution, 0, len(field))

	for i, row := range field {
		re := make([]float64, len(row))
		im := make([]float64, len(row))
		for j, v := range row {
			re[j] = real(v)
			im[j] = imag(v)
		}

		magnitude := make([]float64, len(row))
		vecmath.Magnitude(magnitude, re, im)

		phase := make([]float64, len(row))
		for j := range row {
			phase[j] = math.Atan2(im[j], re[j])
		}

		c.sanitize(i, magnitude, phase)
		result = append(result, models.RingContribution{
			Index:     i,
			Magnitude: magnitude,
			Phase:     phase,
		})
	}

	return result
}

// sanitize handles NaN, Inf values for JSON compatibility
func (c *Calculator) sanitize(ring int, magnitude, phase []float64) {
	for j := range magnitude {
		if math.IsNaN(magnitude[j]) || math.IsInf(magnitude[j], 0) {
			log.Printf("Warning: Invalid magnitude (%v) for ring %d at point %d, setting to 0.0", magnitude[j], ring, j)
			magnitude[j] = 0.0
		}
		if math.IsNaN(phase[j]) {
			log.Printf("Warning: Invalid phase for ring %d at point %d, setting to 0.0", ring, j)
			phase[j] = 0.0
		}
	}
}
