package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sensordash/internal/alerting"
	"sensordash/internal/api"
	"sensordash/internal/config"
	"sensordash/internal/device"
	"sensordash/internal/logger"
	"sensordash/internal/stream"
	"sensordash/internal/telemetry"
	"sensordash/internal/threshold"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, logger.IsService())
	logger.Debug().Msg("Config loaded")

	repo, err := threshold.NewRepository(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open settings store")
	}
	defer repo.Close()

	thresholds, err := threshold.NewStore(repo)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load thresholds")
	}

	registry := device.NewRegistry(cfg.Devices)
	engine := telemetry.New(registry, thresholds, time.Duration(cfg.Interval)*time.Second)
	hub := stream.NewHub()

	engine.OnTick(func(snapshot telemetry.Snapshot, events []alerting.Event) {
		hub.Broadcast("readings", snapshot)
		for _, ev := range events {
			hub.Broadcast("alert", ev)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	go hub.Run(ctx)
	engine.Start(ctx)

	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: api.Router(api.NewHandler(engine, registry, thresholds, hub)),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("HTTP shutdown failed")
		}
	}()

	logger.Info().Str("listen", cfg.Listen).Msg("Serving dashboard API")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("HTTP server failed")
		cancel()
	}

	engine.Stop()
	logger.Info().Msg("Exiting...")
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
