package models

import (
	"time"
)

// Range is an evenly spaced grid, start and stop inclusive.
type Range struct {
	Start float64 `json:"start" yaml:"start"`
	Stop  float64 `json:"stop" yaml:"stop"`
	Steps int     `json:"steps" yaml:"steps"`
}

// FieldRequest describes one geometry → delay → field computation. Zero
// physical constants fall back to the library defaults.
type FieldRequest struct {
	Frequency  float64 `json:"frequency" yaml:"frequency"`
	SoundSpeed float64 `json:"sound_speed" yaml:"sound_speed"`
	Velocity   float64 `json:"velocity" yaml:"velocity"`
	Pressure   float64 `json:"pressure" yaml:"pressure"`

	OuterRadius float64 `json:"outer_radius" yaml:"outer_radius"`
	// Gap in meters; when zero it is GapWavelengths·λ.
	Gap            float64 `json:"gap" yaml:"gap"`
	GapWavelengths float64 `json:"gap_wavelengths" yaml:"gap_wavelengths"`
	Rings          int     `json:"rings" yaml:"rings"`
	FitAperture    bool    `json:"fit_aperture" yaml:"fit_aperture"`
	Focal          float64 `json:"focal" yaml:"focal"`

	// Mode is "angular" or "distance".
	Mode      string    `json:"mode" yaml:"mode"`
	Angles    []float64 `json:"angles,omitempty" yaml:"angles,omitempty"`
	AngleGrid Range     `json:"angle_grid" yaml:"angle_grid"`
	Distance  float64   `json:"distance" yaml:"distance"`

	Distances    []float64 `json:"distances,omitempty" yaml:"distances,omitempty"`
	DistanceGrid Range     `json:"distance_grid" yaml:"distance_grid"`
	Angle        float64   `json:"angle" yaml:"angle"`

	Time        float64 `json:"time" yaml:"time"`
	FocusMethod string  `json:"focus_method,omitempty" yaml:"focus_method,omitempty"`
	// IncludeRings adds the per-ring contributions to the response.
	IncludeRings bool `json:"include_rings" yaml:"include_rings"`
}

// RingGeometry is one ring as reported to clients.
type RingGeometry struct {
	Index int     `json:"index"`
	Inner float64 `json:"inner"`
	Outer float64 `json:"outer"`
	Delay float64 `json:"delay"`
}

// RingContribution is a ring's complex field along the sweep axis.
type RingContribution struct {
	Index     int       `json:"index"`
	Magnitude []float64 `json:"magnitude"`
	Phase     []float64 `json:"phase"`
}

// Beam mirrors goarraycore.BeamMetrics with JSON-safe values.
type Beam struct {
	PeakPosition  float64 `json:"peak_position"`
	PeakValue     float64 `json:"peak_value"`
	MainLobeWidth float64 `json:"main_lobe_width"`
	SideLobeDB    float64 `json:"side_lobe_db"`
}

// Focus is a refined on-axis maximum.
type Focus struct {
	Distance  float64 `json:"distance"`
	Magnitude float64 `json:"magnitude"`
	Method    string  `json:"method"`
}

// FieldResult is the outcome of one FieldRequest.
type FieldResult struct {
	Status     string         `json:"status"`
	Error      string         `json:"error,omitempty"`
	Mode       string         `json:"mode"`
	Wavelength float64        `json:"wavelength"`
	Gap        float64        `json:"gap"`
	Frequency  float64        `json:"frequency"`
	Rings      []RingGeometry `json:"rings"`
	Axis       []float64      `json:"axis"`
	Magnitude  []float64      `json:"magnitude"`
	Beam       *Beam          `json:"beam,omitempty"`
	Focus      *Focus         `json:"focus,omitempty"`

	Contributions []RingContribution `json:"contributions,omitempty"`

	// Field is the raw [ring][point] field kept for in-process consumers.
	Field [][]complex128 `json:"-"`
}

// BatchRequest sweeps a base request over gaps (in wavelengths) or
// frequencies. When both are set every combination is computed.
type BatchRequest struct {
	BatchID        string       `json:"batch_id"`
	Timestamp      time.Time    `json:"timestamp"`
	Base           FieldRequest `json:"base"`
	GapWavelengths []float64    `json:"gap_wavelengths"`
	Frequencies    []float64    `json:"frequencies"`
}

// WorkItem is a single field computation queued on the worker pool.
type WorkItem struct {
	ID        int
	RequestID string
	BatchID   string
	Iteration int
	Request   FieldRequest
	Config    interface{} // *config.Config; typed by the worker package
	StartTime time.Time
	// Reply receives the WorkResult. Jobs without one are dropped after
	// processing.
	Reply chan<- WorkResult
}

// WorkResult contains the outcome of a WorkItem.
type WorkResult struct {
	ID             int
	RequestID      string
	BatchID        string
	Iteration      int
	Result         FieldResult
	ProcessingTime time.Duration
	Success        bool
}

// WebhookItem represents a webhook task
type WebhookItem struct {
	RequestID string
	BatchID   string
	Iteration int
	Result    FieldResult
}

// WebhookResponse represents the webhook payload structure
type WebhookResponse struct {
	ID            string             `json:"id"`
	BatchID       string             `json:"batch_id,omitempty"`
	Iteration     int                `json:"iteration"`
	Time          string             `json:"time"`
	Status        string             `json:"status"`
	Mode          string             `json:"mode"`
	Frequency     float64            `json:"frequency"`
	Gap           float64            `json:"gap"`
	Axis          []float64          `json:"axis"`
	Magnitude     []float64          `json:"magnitude"`
	Rings         []RingGeometry     `json:"rings"`
	Beam          *Beam              `json:"beam,omitempty"`
	Contributions []RingContribution `json:"contributions"`
}

// SweepTiming tracks performance metrics for one batch item
type SweepTiming struct {
	Iteration      int           `json:"iteration"`
	ProcessingTime time.Duration `json:"processing_time_ms"`
	PeakValue      float64       `json:"peak_value"`
	Success        bool          `json:"success"`
	Mode           string        `json:"mode"`
}
