// ABOUTME: Main entry point for the newswire API server
// ABOUTME: Wires together configuration, logging and the engine, then serves HTTP

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"newswire-api/api"
	"newswire-api/api/handlers"
	"newswire-api/engine"
	"newswire-api/pkg/config"
)

func main() {
	// A missing .env is fine; the process environment still applies
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to read .env: %v", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := engine.DefaultLogger(cfg.Log)
	logger.Info("Starting newswire API", map[string]interface{}{
		"port":          cfg.Server.Port,
		"cache_backend": cfg.Cache.Backend,
		"cache_ttl":     cfg.Cache.TTL.String(),
		"refresh_cron":  cfg.Schedule.RefreshCron,
		"archive_cron":  cfg.Schedule.ArchiveCron,
	})

	opts, err := engine.FromConfig(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to build engine options: %v", err)
	}
	client, err := engine.NewClient(opts...)
	if err != nil {
		log.Fatalf("Failed to start engine: %v", err)
	}

	server := api.NewServer(api.APIConfig{
		Logger:         logger,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		Sources: handlers.SourcePolicy{
			AllowUnregistered: cfg.Server.AllowUnregisteredSources,
			MaxSources:        cfg.Server.MaxSourcesPerRequest,
		},
	}, client)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// sync mode waits on every source
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", map[string]interface{}{
				"error": err.Error(),
			})
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}
	server.Close()

	if err := client.Close(ctx); err != nil {
		logger.Error("Engine did not stop cleanly", map[string]interface{}{
			"error": err.Error(),
		})
	}

	logger.Info("Server stopped", nil)
}
