package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cuotas/internal/amqp"
	"cuotas/internal/backend"
	"cuotas/internal/config"
	apphttp "cuotas/internal/http"
	applog "cuotas/internal/log"
	"cuotas/internal/rates"
	"cuotas/internal/service"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Choose snapshot store backend (default: memory, seeded from ./data)
	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateStore(context.Background(), backend.Config{
		Type:          backend.Type(cfg.DataBackend),
		SQLiteDBPath:  cfg.SQLiteDBPath,
		DataDirectory: cfg.DataDirectory,
	})
	if err != nil {
		logger.Error("Failed to initialize snapshot store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Store cleanup error", "error", err)
			}
		}()
	}

	// AMQP is optional; without it commands still persist, remote sessions
	// just miss the push notification.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	svc := service.NewLedgerService(result.Store, amqpClient)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Service close error", "error", err)
		}
	}()

	var rateProvider rates.Provider
	if cfg.RatesURL != "" {
		rateProvider = rates.NewClient(cfg.RatesURL, cfg.RateFallback)
	} else {
		rateProvider = rates.Static{Rate: cfg.RateFallback}
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, rateProvider, cfg.DefaultLedgerID)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting cuotas server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
