package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fincontrol/internal/adapters"
	"fincontrol/internal/amqp"
	"fincontrol/internal/backend"
	"fincontrol/internal/cli"
	"fincontrol/internal/extract"
	apphttp "fincontrol/internal/http"
	applog "fincontrol/internal/log"
	"fincontrol/internal/metrics"
	"fincontrol/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	store, err := backend.NewFactory(logger).CreateBackend(startCtx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	dashOpts := metrics.DefaultOptions
	dashOpts.ReserveCategory = cfg.ReserveCategory
	dashboard := services.NewDashboardService(store.Store, dashOpts, cfg.DashboardCacheTTL)

	opts := []services.TransactionOption{services.WithChangeHook(dashboard.Invalidate)}

	var publisher *amqp.Client
	if cfg.SyncEnabled() {
		publisher, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, changes will sync on the worker's next poll", "error", err)
			publisher = nil
		} else {
			opts = append(opts, services.WithPublisher(publisher))
			logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	if cfg.GeminiAPIKey != "" {
		extractor, err := extract.NewGemini(startCtx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("Failed to initialize line-item extractor", "error", err)
		} else {
			opts = append(opts, services.WithExtractor(extractor))
			logger.Info("Line-item extraction enabled", "model", cfg.GeminiModel)
		}
	} else {
		logger.Info("Line-item extraction disabled - no GEMINI_API_KEY provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Transactions: services.NewTransactionService(store.Store, opts...),
		Catalog:      services.NewCatalogService(store.Store, dashboard.Invalidate),
		Dashboard:    dashboard,
		Ready:        adapters.NewReadinessCheck(store.Store, 2*time.Second).Ready,
		Logger:       logger.WithComponent(applog.ComponentHTTP),
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		dashboard.Close()
		if publisher != nil {
			if err := publisher.Close(); err != nil {
				logger.Warn("Failed to close AMQP client", "error", err)
			}
		}
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close backend", "error", err)
		}
	})

	logger.Info("Starting fincontrol server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
