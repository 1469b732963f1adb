package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fincontrol/internal/amqp"
	"fincontrol/internal/cli"
	applog "fincontrol/internal/log"
	"fincontrol/internal/services"
	gsheet "fincontrol/internal/sheets/google"
	"fincontrol/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting fincontrol-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required to mirror transactions")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelInit()

	sheets, err := gsheet.NewFromEnv(initCtx)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	if err := sheets.EnsureHeaders(initCtx); err != nil {
		logger.Warn("Failed to ensure spreadsheet headers", "error", err)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	processor := services.NewSyncProcessor(repo, sheets, services.SyncProcessorConfig{
		PollInterval: cfg.SyncInterval,
		BatchSize:    cfg.SyncBatchSize,
	})
	syncWorker := worker.NewSyncWorker(processor, repo, sheets)

	var consumer *amqp.Client
	if cfg.AMQPURL != "" {
		consumer, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, relying on polling only", "error", err)
			consumer = nil
		}
	} else {
		logger.Info("AMQP disabled - relying on polling only")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := processor.Stop(ctx); err != nil {
			logger.Warn("Failed to stop sync processor", "error", err)
		}
		if consumer != nil {
			if err := consumer.Close(); err != nil {
				logger.Warn("Failed to close AMQP client", "error", err)
			}
		}
		if err := repo.Close(); err != nil {
			logger.Warn("Failed to close SQLite repository", "error", err)
		}
	})

	logger.Info("Checking remote categories...")
	if err := syncWorker.SeedRemoteCategories(ctx); err != nil {
		logger.Error("Failed to seed remote categories", "error", err)
	}

	logger.Info("Performing startup sync check...")
	syncWorker.StartupSyncCheck(ctx)

	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start sync processor", "error", err)
		os.Exit(1)
	}

	if consumer != nil {
		go func() {
			if err := consumer.Consume(ctx, syncWorker); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed, relying on polling", "error", err)
			}
		}()
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
