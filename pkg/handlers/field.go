package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/kacperjurak/goarraycore/internal/utils"
	"github.com/kacperjurak/goarraycore/pkg/config"
	"github.com/kacperjurak/goarraycore/pkg/webhook"
	"github.com/kacperjurak/goarraycore/pkg/worker"
)

// FieldHandler computes a single field synchronously
type FieldHandler struct {
	config     *config.Config
	processor  worker.ProcessorFunc
	calculator *webhook.Calculator
}

// NewFieldHandler creates a new field handler
func NewFieldHandler(cfg *config.Config, processor worker.ProcessorFunc) *FieldHandler {
	return &FieldHandler{
		config:     cfg,
		processor:  processor,
		calculator: webhook.NewCalculator(),
	}
}

// ServeHTTP implements the http.Handler interface
func (h *FieldHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setupCORS(w, "application/json")
	if !preflight(w, r) {
		return
	}

	// keys missing from the body keep the configured defaults
	req := baseRequest(h.config)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	requestID := utils.GenerateID()
	if !h.config.Quiet {
		log.Printf("HTTP Request received - ID: %s, Mode: %s, Rings: %d", requestID, req.Mode, req.Rings)
	}

	res, err := h.processor(req, h.config)
	if err != nil {
		writeProcessingError(w, err)
		return
	}
	if req.IncludeRings {
		res.Contributions = h.calculator.RingContributions(res.Field)
	}

	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(res)
}
