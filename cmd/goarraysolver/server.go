package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kacperjurak/goarraycore/internal/processing"
	"github.com/kacperjurak/goarraycore/pkg/config"
	"github.com/kacperjurak/goarraycore/pkg/server"
)

func startHTTPServer(cfg *config.Config, serverCfg *config.ServerConfig) {
	serverCfg.WorkerCount = int(cfg.Threads)
	serverCfg.EnableProfiling = serverCfg.EnableProfiling || cfg.EnableProfiling

	srv := server.New(server.Options{
		Config:       cfg,
		ServerConfig: serverCfg,
		Processor:    processing.NewFieldProcessor().ProcessorFunc(),
	})

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

	if err := srv.Start(); err != nil {
		log.Fatal("❌ Failed to start server:", err)
	}
	// Start returns as soon as Shutdown closes the listener
	<-done
}
