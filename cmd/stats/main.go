package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/couchcryptid/seismic-catalog-stats/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/seismic-catalog-stats/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/seismic-catalog-stats/internal/adapter/kafka"
	"github.com/couchcryptid/seismic-catalog-stats/internal/adapter/mapbox"
	"github.com/couchcryptid/seismic-catalog-stats/internal/config"
	"github.com/couchcryptid/seismic-catalog-stats/internal/domain"
	"github.com/couchcryptid/seismic-catalog-stats/internal/observability"
	"github.com/couchcryptid/seismic-catalog-stats/internal/pipeline"
)

const publishAttempts = 5

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	source := csvfile.NewSource(cfg.CatalogPath, csvfile.Options{
		HeaderRows: cfg.CatalogHeaderRows,
		TimeLayout: config.TimeLayout,
		Begin:      cfg.CatalogBegin,
		End:        cfg.CatalogEnd,
	})

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	// Kafka publication is optional; the HTTP API always serves the report.
	var (
		publisher pipeline.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	}

	p := pipeline.New(source, geocoder, publisher, pipeline.Settings{
		Options:         cfg.ProcessOptions(),
		Exclusions:      cfg.ExcludeBoxes,
		PublishAttempts: publishAttempts,
	}, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Derive the report once; the server keeps serving it until shutdown.
	var failed atomic.Bool
	go func() {
		if _, err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
			failed.Store(true)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	if failed.Load() {
		os.Exit(1)
	}
}
