package webhook

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/kacperjurak/goarraycore/pkg/config"
	"github.com/kacperjurak/goarraycore/pkg/models"
)

// Client handles webhook HTTP requests with connection pooling
type Client struct {
	url        string
	httpClient *http.Client
	config     *config.Config
	calculator *Calculator
	bufferPool sync.Pool // JSON marshaling buffers
}

// NewClient creates a new webhook client with connection pooling
func NewClient(url string, cfg *config.Config) *Client {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,

		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,

		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: false,
		},

		ResponseHeaderTimeout: 30 * time.Second,

		DisableCompression: true,

		ForceAttemptHTTP2: false,
	}

	return &Client{
		url:        url,
		config:     cfg,
		calculator: NewCalculator(),
		httpClient: &http.Client{
			Timeout:   45 * time.Second,
			Transport: transport,
		},
		bufferPool: sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, 4096))
			},
		},
	}
}

// Payload converts a webhook item into the JSON body sent to the receiver.
func (c *Client) Payload(webhook models.WebhookItem) models.WebhookResponse {
	res := webhook.Result

	var beam *models.Beam
	if res.Beam != nil {
		b := *res.Beam
		b.PeakPosition = sanitizeFloat(b.PeakPosition)
		b.PeakValue = sanitizeFloat(b.PeakValue)
		b.MainLobeWidth = sanitizeFloat(b.MainLobeWidth)
		b.SideLobeDB = sanitizeFloat(b.SideLobeDB)
		beam = &b
	}

	contributions := res.Contributions
	if contributions == nil && res.Field != nil {
		contributions = c.calculator.RingContributions(res.Field)
	}

	return models.WebhookResponse{
		ID:            webhook.RequestID,
		BatchID:       webhook.BatchID,
		Iteration:     webhook.Iteration,
		Time:          time.Now().Format(time.RFC3339Nano),
		Status:        res.Status,
		Mode:          res.Mode,
		Frequency:     res.Frequency,
		Gap:           res.Gap,
		Axis:          sanitizeSlice(res.Axis),
		Magnitude:     sanitizeSlice(res.Magnitude),
		Rings:         res.Rings,
		Beam:          beam,
		Contributions: contributions,
	}
}

// Send posts the field result of a webhook item
func (c *Client) Send(webhook models.WebhookItem) error {
	payload := c.Payload(webhook)

	buf := c.bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer c.bufferPool.Put(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return fmt.Errorf("failed to marshal webhook data: %w", err)
	}

	if !c.config.Quiet {
		log.Printf("DEBUG: Webhook payload - Mode: %s, Rings: %d, Points: %d",
			payload.Mode, len(payload.Rings), len(payload.Magnitude))
	}

	resp, err := c.httpClient.Post(c.url, "application/json", bytes.NewReader(buf.Bytes()))
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if !c.config.Quiet {
		log.Printf("Webhook sent - ID: %s, Gap: %.4e, Frequency: %.4e, Status: %d",
			webhook.RequestID, payload.Gap, payload.Frequency, resp.StatusCode)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook request failed with status %d", resp.StatusCode)
	}

	return nil
}

// sanitizeFloat cleans float64 values for JSON compatibility
func sanitizeFloat(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0.0
	}
	return value
}

func sanitizeSlice(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = sanitizeFloat(v)
	}
	return out
}
