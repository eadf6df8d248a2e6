package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"precos/internal/amqp"
	"precos/internal/authz"
	"precos/internal/backend"
	"precos/internal/catalog"
	"precos/internal/config"
	apphttp "precos/internal/http"
	"precos/internal/intake"
	applog "precos/internal/log"
	"precos/internal/stats"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	rootLogger := applog.New(applog.DefaultConfig())
	applog.SetDefault(rootLogger)
	logger := rootLogger.Logger

	// Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// The basket catalog is static reference data; a missing or malformed
	// file is fatal at startup.
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Error("Failed to load basket catalog", "error", err, "path", cfg.CatalogPath)
		os.Exit(1)
	}
	logger.Info("Basket catalog loaded",
		applog.FieldComponent, applog.ComponentCatalog,
		"path", cfg.CatalogPath, "entries", cat.Len())

	// The authorization registry re-reads its file per request, so a missing
	// file here only means every submission will be denied until it appears.
	registry := authz.NewFileRegistry(cfg.AuthorizedPath)

	// Ledger backend
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid ledger backend configuration", "error", err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger)
	ledgerResult, err := factory.CreateLedger(backendCfg)
	if err != nil {
		logger.Error("Failed to initialize ledger backend", "error", err, "backend", cfg.LedgerBackend)
		os.Exit(1)
	}
	defer func() {
		if ledgerResult.Cleanup == nil {
			return
		}
		if err := ledgerResult.Cleanup(); err != nil {
			logger.Error("Ledger cleanup error", "error", err)
		}
	}()

	// AMQP is optional; without it, accepted submissions simply go
	// unannounced.
	var publisher intake.EventPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err, "exchange", cfg.AMQPExchange)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	svc := intake.NewService(registry, ledgerResult.Store, publisher)
	agg := stats.New(ledgerResult.Store)

	httpLogger := applog.New(applog.Config{Handler: logger.Handler(), Component: applog.ComponentHTTP})
	srv := apphttp.NewServer(":"+cfg.Port, cat, svc, agg, ledgerResult.Store, httpLogger)

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

	logger.Info("Starting precos server", "port", cfg.Port, "backend", cfg.LedgerBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
