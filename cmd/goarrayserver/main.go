package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kacperjurak/goarraycore/internal/processing"
	"github.com/kacperjurak/goarraycore/pkg/config"
	"github.com/kacperjurak/goarraycore/pkg/server"
)

func main() {
	cfg, serverConfig := parseFlags()

	srv := server.New(server.Options{
		Config:       cfg,
		ServerConfig: serverConfig,
		Processor:    processing.NewFieldProcessor().ProcessorFunc(),
	})

	done := setupGracefulShutdown(srv)

	if err := srv.Start(); err != nil {
		log.Fatal("❌ Failed to start server:", err)
	}
	<-done
}

// parseFlags loads the optional YAML file and applies flag overrides
func parseFlags() (*config.Config, *config.ServerConfig) {
	cfg, serverConfig, err := config.LoadFromArgs(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	flag.String("config", "", "YAML configuration file")
	flag.StringVar(&serverConfig.Port, "port", serverConfig.Port, "HTTP port")
	flag.IntVar(&serverConfig.WorkerCount, "workers", serverConfig.WorkerCount, "Number of worker goroutines")
	flag.StringVar(&serverConfig.WebhookURL, "webhook", serverConfig.WebhookURL, "Webhook URL for batch results")
	flag.BoolVar(&serverConfig.EnableProfiling, "profile", serverConfig.EnableProfiling, "Enable pprof profiling")
	flag.StringVar(&serverConfig.ProfilingPort, "pprof-port", serverConfig.ProfilingPort, "pprof port")
	flag.StringVar(&cfg.TimingFile, "timing", cfg.TimingFile, "CSV file receiving batch timing statistics")
	flag.BoolVar(&cfg.Quiet, "quiet", cfg.Quiet, "Suppress verbose output")
	flag.Parse()

	return cfg, serverConfig
}

// setupGracefulShutdown shuts the server down on SIGINT or SIGTERM. The
// returned channel is closed once Shutdown has returned.
func setupGracefulShutdown(srv *server.Server) <-chan struct{} {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-c
		log.Println("🛑 Received shutdown signal...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()
	return done
}
