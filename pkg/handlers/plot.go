package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/kacperjurak/goarraycore/pkg/chart"
	"github.com/kacperjurak/goarraycore/pkg/config"
	"github.com/kacperjurak/goarraycore/pkg/worker"
)

const defaultPlotInches = 6

// PlotHandler renders a field sweep as SVG
type PlotHandler struct {
	config    *config.Config
	processor worker.ProcessorFunc
}

// NewPlotHandler creates a new plot handler
func NewPlotHandler(cfg *config.Config, processor worker.ProcessorFunc) *PlotHandler {
	return &PlotHandler{
		config:    cfg,
		processor: processor,
	}
}

// ServeHTTP implements the http.Handler interface
func (h *PlotHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setupCORS(w, "application/json")
	if !preflight(w, r) {
		return
	}

	req := baseRequest(h.config)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	res, err := h.processor(req, h.config)
	if err != nil {
		writeProcessingError(w, err)
		return
	}

	name := fmt.Sprintf("%d rings, gap %.3gλ", len(res.Rings), res.Gap/res.Wavelength)
	p, err := chart.New("Annular array field", chart.AxisLabel(res.Mode), "|p|", chart.FromResult(name, res))
	if err != nil {
		writeProcessingError(w, err)
		return
	}

	size := float64(h.config.ImgSize)
	if size <= 0 {
		size = defaultPlotInches
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	if err := chart.WriteSVG(w, p, size); err != nil {
		log.Printf("ERROR: writing SVG: %v", err)
	}
}
