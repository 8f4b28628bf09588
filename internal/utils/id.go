package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateID generates a unique ID for requests and batches
func GenerateID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}

// SweepItemID names one item of a batch sweep so webhook consumers can
// order results by iteration.
func SweepItemID(requestID string, iteration int) string {
	return fmt.Sprintf("%s_iter_%03d", requestID, iteration)
}
