package main

import (
	"context"
	"os"
	"time"

	"fincontrol/internal/amqp"
	"fincontrol/internal/backend"
	"fincontrol/internal/cli"
	applog "fincontrol/internal/log"
	"fincontrol/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentRecurring)
	logger.Info("Starting recurring-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	if !backendCfg.Type.IsShared() {
		logger.Error("Recurring worker needs a backend shared with the API, set DATA_BACKEND to sqlite or sheets",
			"backend", backendCfg.Type)
		os.Exit(1)
	}

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelInit()
	store, err := backend.NewFactory(logger).CreateBackend(initCtx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", backendCfg.Type)
		os.Exit(1)
	}

	// Occurrences are published like any other new transaction so the sync
	// worker mirrors them.
	var opts []services.TransactionOption
	var publisher *amqp.Client
	if cfg.SyncEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, occurrences will sync on the worker's next poll", "error", err)
		} else {
			publisher = client
			opts = append(opts, services.WithPublisher(client))
			logger.Info("AMQP client initialized - occurrences will sync via fincontrol-worker")
		}
	}

	processor := services.NewRecurringProcessor(store.Store, services.NewTransactionService(store.Store, opts...))

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if publisher != nil {
			if err := publisher.Close(); err != nil {
				logger.Warn("Failed to close AMQP client", "error", err)
			}
		}
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close backend", "error", err)
		}
	})

	interval := cfg.RecurringInterval
	logger.Info("Recurring transaction processor configured",
		"interval", interval,
		"backend", backendCfg.Type)

	run := func(now time.Time) {
		count, err := processor.ProcessDue(ctx, now)
		if err != nil {
			logger.Error("Recurring processing failed", "error", err)
			return
		}
		logger.Info("Recurring processing complete",
			"transactions_created", count,
			"next_check", now.Add(interval).Format("15:04:05"))
	}

	logger.Info("Running initial recurring processing...")
	run(time.Now())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			cli.WaitForShutdown(ctx, done)
			logger.Info("Recurring-worker shutdown complete")
			return
		case now := <-ticker.C:
			run(now)
		}
	}
}
