// Package main is the entry point for the terminal watchdog daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"termwatch/internal/config"
	"termwatch/internal/dedup"
	"termwatch/internal/forecast"
	"termwatch/internal/logger"
	"termwatch/internal/observability"
	"termwatch/internal/server"
	"termwatch/internal/snapshot"
	"termwatch/internal/store/postgres"
	"termwatch/internal/watchdog"
	"termwatch/internal/webhook"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Apply the development schema before starting")
	configPath := flag.String("config", "", "Path to a YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)

	if err := run(cfg, *migrateFlag, log); err != nil {
		log.Error("Watchdog exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("Watchdog exited properly")
}

func run(cfg *config.Config, migrate bool, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	shutdownTracer, err := observability.InitTracer(ctx, "termwatch-watchdog", cfg.OTELEndpoint)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Warn("Failed to shutdown tracer", "error", err)
		}
	}()

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Warn("Failed to shutdown metrics", "error", err)
		}
	}()

	// The incident baseline cannot be seeded without the database.
	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to terminal database: %w", err)
	}
	defer db.Close()

	if migrate {
		log.Info("Applying development schema")
		if err := postgres.Migrate(db.DB()); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("Schema applied")
	}

	dedupStore := dedup.New(ctx, dedup.Options{TTL: cfg.DedupWindow, RedisURL: cfg.RedisURL}, log)
	defer dedupStore.Close()

	if local, ok := dedupStore.(*dedup.Local); ok {
		meter := otel.Meter("termwatch/watchdog")
		_, err := meter.Int64ObservableGauge("watchdog.dedup.entries",
			metric.WithDescription("Keys held by the in-process dedup window"),
			metric.WithInt64Callback(func(ctx context.Context, obs metric.Int64Observer) error {
				obs.Observe(int64(local.Len()))
				return nil
			}),
		)
		if err != nil {
			log.Warn("Failed to register dedup entries metric", "error", err)
		}
	}

	state, err := watchdog.SeedState(ctx, db, dedupStore)
	if err != nil {
		return err
	}

	builder := snapshot.NewBuilder(db, snapshot.Config{
		VesselCapacityKL:          cfg.VesselCapacityKL,
		FallbackDischargeRateTPH:  cfg.FallbackDischargeRateTPH,
		InboundTruckCount:         cfg.InboundTruckCount,
		ThroughputPerActiveBayTPH: cfg.ThroughputPerActiveBayTPH,
	})

	dispatcher := webhook.New(webhook.Config{
		URL:           cfg.WebhookURL,
		Timeout:       cfg.WebhookTimeout,
		RatePerSecond: cfg.WebhookRateLimit,
	})

	wd := watchdog.New(builder, dispatcher, watchdog.Config{
		PollInterval: cfg.PollInterval,
		Forecast: forecast.Params{
			DischargeThresholdTPH:  cfg.DischargeThresholdTPH,
			AvgInboundTruckRateTPH: cfg.AvgInboundTruckRateTPH,
		},
	}, log)

	// Ops server
	srv := server.New(fmt.Sprintf(":%d", cfg.HTTPPort), db, metricsHandler, log)
	srvDone := make(chan struct{})
	go func() {
		defer close(srvDone)
		if err := srv.Run(ctx); err != nil {
			log.Error("Ops server stopped", "error", err)
		}
	}()

	runErr := wd.Run(ctx, state)
	<-srvDone

	if errors.Is(runErr, context.Canceled) {
		log.Info("Shutdown signal received")
		return nil
	}
	return runErr
}
