package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"slices"

	"github.com/kacperjurak/goarraycore/internal/processing"
	"github.com/kacperjurak/goarraycore/pkg/config"
	"github.com/kacperjurak/goarraycore/pkg/models"
)

// setupCORS sets up CORS headers
func setupCORS(w http.ResponseWriter, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// preflight answers OPTIONS and rejects anything but POST. It reports
// whether the handler should continue.
func preflight(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return false
	}
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// writeError writes an error response
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeProcessingError maps request errors to 400 and the rest to 500
func writeProcessingError(w http.ResponseWriter, err error) {
	if processing.IsInputError(err) {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.Printf("ERROR: field processing failed: %v", err)
	writeError(w, "Internal processing error", http.StatusInternalServerError)
}

// baseRequest copies the configured request so decoding a body never
// writes into the shared defaults.
func baseRequest(cfg *config.Config) models.FieldRequest {
	req := cfg.Field
	req.Angles = slices.Clone(req.Angles)
	req.Distances = slices.Clone(req.Distances)
	return req
}
