package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/nivo-observations/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/nivo-observations/internal/adapter/kafka"
	"github.com/couchcryptid/nivo-observations/internal/adapter/openmeteo"
	"github.com/couchcryptid/nivo-observations/internal/adapter/sqlite"
	"github.com/couchcryptid/nivo-observations/internal/adapter/websocket"
	"github.com/couchcryptid/nivo-observations/internal/config"
	"github.com/couchcryptid/nivo-observations/internal/domain"
	"github.com/couchcryptid/nivo-observations/internal/feed"
	"github.com/couchcryptid/nivo-observations/internal/observability"
	"github.com/couchcryptid/nivo-observations/internal/service"
)

// feedBufferFactor sizes the feed queue as a multiple of the batch size.
const feedBufferFactor = 20

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}

	// Elevation lookup (feature-flagged via ELEVATION_ENABLED).
	var elevation domain.ElevationProvider
	if cfg.ElevationEnabled {
		client := openmeteo.NewClient(cfg.ElevationBaseURL, cfg.ElevationTimeout, metrics, logger)
		elevation = openmeteo.NewCachedElevation(client, cfg.ElevationCacheSize, metrics)
		metrics.ElevationEnabled.Set(1)
		logger.Info("elevation lookup enabled", "cache_size", cfg.ElevationCacheSize, "timeout", cfg.ElevationTimeout)
	} else {
		logger.Info("elevation lookup disabled")
	}

	hub := websocket.NewHub(logger, metrics)
	sinks := []feed.Sink{hub}

	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		sinks = append(sinks, writer)
		logger.Info("kafka feed enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	dispatcher := feed.NewDispatcher(logger, metrics, cfg.BatchSize, cfg.BatchSize*feedBufferFactor, sinks...)

	svc := service.New(store, elevation, dispatcher, logger, metrics, service.Settings{
		RecentWindow: cfg.MapRecentWindow,
		ListLimit:    cfg.MapListLimit,
		Attenuate:    cfg.CriticalityAttenuation,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, store, hub.ServeWS, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start live hub and feed delivery.
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		if err := hub.Run(ctx); err != nil {
			logger.Error("live hub error", "error", err)
		}
	}()
	feedDone := make(chan struct{})
	go func() {
		defer close(feedDone)
		if err := dispatcher.Run(ctx); err != nil {
			logger.Error("feed dispatcher error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	for _, done := range []chan struct{}{hubDone, feedDone} {
		select {
		case <-done:
		case <-shutdownCtx.Done():
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := store.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("shutdown complete")
}
