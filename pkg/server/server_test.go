package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kacperjurak/goarraycore/internal/processing"
	"github.com/kacperjurak/goarraycore/pkg/config"
	"github.com/kacperjurak/goarraycore/pkg/models"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Quiet = true
	serverCfg := config.DefaultServerConfig()
	serverCfg.WorkerCount = 2
	serverCfg.EnableProfiling = true

	srv := New(Options{
		Config:       cfg,
		ServerConfig: serverCfg,
		Processor:    processing.NewFieldProcessor().ProcessorFunc(),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown()
	})
	return ts
}

func TestRoutes(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/field", "application/json", strings.NewReader(`{"rings": 4}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Handler-Name") != "field-single" {
		t.Fatalf("profiling headers missing: %v", resp.Header)
	}
	var res models.FieldResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Status != "OK" || len(res.Rings) != 4 {
		t.Fatalf("result = %+v", res)
	}

	tests := []struct {
		path   string
		method string
		want   int
	}{
		{"/health", http.MethodGet, http.StatusOK},
		{"/debug/gc", http.MethodGet, http.StatusOK},
		{"/debug/memory", http.MethodGet, http.StatusOK},
		{"/field/batch", http.MethodGet, http.StatusMethodNotAllowed},
		{"/field/plot", http.MethodOptions, http.StatusOK},
		{"/missing", http.MethodGet, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+tt.path, nil)
			if err != nil {
				t.Fatal(err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body struct {
		Status  string `json:"status"`
		Workers int    `json:"workers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "healthy" || body.Workers != 2 {
		t.Fatalf("body = %+v", body)
	}
}

func TestWebhookSender(t *testing.T) {
	if s := webhookSender("", config.DefaultConfig()); s != nil {
		t.Fatalf("empty URL gave sender %T", s)
	}
	if s := webhookSender("http://localhost:3001/webhook", config.DefaultConfig()); s == nil {
		t.Fatal("configured URL gave no sender")
	}
}

func TestShutdownWaitsForBatches(t *testing.T) {
	received := make(chan struct{}, 8)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- struct{}{}
	}))
	defer hook.Close()

	cfg := config.DefaultConfig()
	cfg.Quiet = true
	serverCfg := config.DefaultServerConfig()
	serverCfg.WorkerCount = 2
	serverCfg.WebhookURL = hook.URL
	srv := New(Options{
		Config:       cfg,
		ServerConfig: serverCfg,
		Processor:    processing.NewFieldProcessor().ProcessorFunc(),
	})
	ts := httptest.NewServer(srv.Handler())

	resp, err := http.Post(ts.URL+"/field/batch", "application/json", strings.NewReader(`{"gap_wavelengths": [0.2, 0.4, 0.6]}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	ts.Close()

	if err := srv.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if len(received) != 3 {
		t.Fatalf("%d webhooks delivered before Shutdown returned, want 3", len(received))
	}
}
