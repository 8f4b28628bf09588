package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/kacperjurak/goarraycore/pkg/config"
	"github.com/kacperjurak/goarraycore/pkg/handlers"
	"github.com/kacperjurak/goarraycore/pkg/profiling"
	"github.com/kacperjurak/goarraycore/pkg/webhook"
	"github.com/kacperjurak/goarraycore/pkg/worker"
)

const shutdownTimeout = 10 * time.Second

// Server represents the HTTP server with all dependencies
type Server struct {
	config       *config.Config
	serverConfig *config.ServerConfig
	workerPool   *worker.Pool
	batches      *handlers.BatchHandler
	httpServer   *http.Server
	profiler     *profiling.Profiler
	middleware   *profiling.Middleware
}

// Options holds configuration for creating a new server
type Options struct {
	Config       *config.Config
	ServerConfig *config.ServerConfig
	Processor    worker.ProcessorFunc
}

// New creates a new server instance
func New(opts Options) *Server {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.ServerConfig == nil {
		opts.ServerConfig = config.DefaultServerConfig()
	}

	workerPool := worker.New(worker.Options{
		Workers:   opts.ServerConfig.WorkerCount,
		Processor: opts.Processor,
		Webhook:   webhookSender(opts.ServerConfig.WebhookURL, opts.Config),
		Profile:   opts.ServerConfig.EnableProfiling,
	})

	server := &Server{
		config:       opts.Config,
		serverConfig: opts.ServerConfig,
		workerPool:   workerPool,
		profiler:     profiling.New(opts.ServerConfig),
		middleware:   profiling.NewMiddleware(opts.ServerConfig.EnableProfiling),
	}

	server.setupRoutes(opts.Processor)
	return server
}

// webhookSender returns nil when no URL is configured so the pool drops
// results instead of posting to an empty address.
func webhookSender(url string, cfg *config.Config) worker.Sender {
	if url == "" {
		return nil
	}
	return webhook.NewClient(url, cfg)
}

// setupRoutes configures HTTP routes and handlers
func (s *Server) setupRoutes(processor worker.ProcessorFunc) {
	mux := http.NewServeMux()

	fieldHandler := handlers.NewFieldHandler(s.config, processor)
	batchHandler := handlers.NewBatchHandler(s.config, s.workerPool)
	s.batches = batchHandler
	plotHandler := handlers.NewPlotHandler(s.config, processor)

	mux.Handle("/field", s.middleware.ProfiledHandler("field-single", fieldHandler))
	mux.Handle("/field/batch", s.middleware.ProfiledHandler("field-batch", batchHandler))
	mux.Handle("/field/plot", s.middleware.ProfiledHandler("field-plot", plotHandler))
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/debug/gc", s.gcHandler)
	mux.HandleFunc("/debug/memory", s.memoryHandler)

	s.httpServer = &http.Server{
		Addr:         ":" + s.serverConfig.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// healthHandler provides a simple health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "healthy",
		"workers":   s.workerPool.Workers(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// gcHandler triggers garbage collection and returns stats
func (s *Server) gcHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	stats := profiling.ForceGC()

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"gc_runs":         stats.NumGC,
		"pause_total_ms":  float64(stats.PauseTotal.Nanoseconds()) / 1000000.0,
		"pause_recent_us": float64(stats.PauseRecent.Nanoseconds()) / 1000.0,
		"cpu_percent":     stats.GCCPUPercent,
		"last_gc":         stats.LastGC.Format(time.RFC3339),
		"timestamp":       time.Now().Format(time.RFC3339),
	})
}

// memoryHandler returns current runtime and heap statistics
func (s *Server) memoryHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	profiling.LogGCStats()

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(profiling.ReadRuntimeInfo())
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	if err := s.profiler.Start(); err != nil {
		log.Printf("❌ Failed to start profiler: %v", err)
	}

	log.Println("🚀 Starting HTTP server on port", s.serverConfig.Port)
	log.Println("📡 Endpoints available:")
	log.Printf("  - Single: http://localhost:%s/field", s.serverConfig.Port)
	log.Printf("  - Batch:  http://localhost:%s/field/batch", s.serverConfig.Port)
	log.Printf("  - Plot:   http://localhost:%s/field/plot", s.serverConfig.Port)
	log.Printf("  - Health: http://localhost:%s/health", s.serverConfig.Port)
	log.Printf("  - GC:     http://localhost:%s/debug/gc", s.serverConfig.Port)
	log.Printf("  - Memory: http://localhost:%s/debug/memory", s.serverConfig.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, lets running batches finish within
// shutdownTimeout, then stops the worker pool once its queued webhooks are
// delivered. It returns after the batches have written their timing results.
func (s *Server) Shutdown() error {
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		log.Printf("⚠️ HTTP server shutdown error: %v", err)
	}

	if werr := s.batches.Wait(ctx); werr != nil {
		log.Printf("⚠️ Batches still running after %v, stopping worker pool", shutdownTimeout)
	}

	if perr := s.profiler.Stop(); perr != nil {
		log.Printf("⚠️ Profiler shutdown error: %v", perr)
	}

	s.workerPool.Shutdown()
	// unfinished batches return once the pool is done
	s.batches.Wait(context.Background())

	log.Println("✅ Server shutdown complete")
	return err
}
