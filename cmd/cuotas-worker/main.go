package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"cuotas/internal/amqp"
	"cuotas/internal/config"
	"cuotas/internal/export/sheets"
	applog "cuotas/internal/log"
	"cuotas/internal/store/sqlite"
	"cuotas/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker)
	applog.SetDefault(logger)

	logger.Info("Starting cuotas-worker")

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// The worker reads and writes the shared SQLite store directly.
	repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Sheets export is optional
	var exporter worker.Exporter
	if cfg.GoogleSpreadsheetID != "" {
		sheetsExporter, err := sheets.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", "error", err)
			os.Exit(1)
		}
		exporter = sheetsExporter
		logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	// Initialize AMQP client for consuming update messages
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	snapshotWorker := worker.NewSnapshotWorker(repo, exporter)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// On startup, reconcile balances that may have drifted while the worker
	// was down.
	if err := snapshotWorker.ReconcileAll(ctx); err != nil {
		logger.Error("Startup reconciliation failed", "error", err)
		// Don't exit - continue with normal operation
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeSnapshotUpdates(ctx, func(msg *amqp.SnapshotUpdatedMessage) error {
			return snapshotWorker.HandleUpdateMessage(ctx, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.ReconcileInterval)
		defer ticker.Stop()

		// Monthly summary export is driven by a coarse daily tick.
		summaryTicker := time.NewTicker(24 * time.Hour)
		defer summaryTicker.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := snapshotWorker.ReconcileAll(ctx); err != nil {
					logger.Error("Periodic reconciliation failed", "error", err)
				}
			case <-summaryTicker.C:
				if err := snapshotWorker.ExportSummaries(ctx); err != nil {
					logger.Error("Summary export failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete")
}
