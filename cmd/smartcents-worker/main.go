package main

import (
	"context"
	"os"
	"time"

	"smartcents/internal/amqp"
	"smartcents/internal/cache"
	"smartcents/internal/cli"
	"smartcents/internal/config"
	"smartcents/internal/log"
	gsheet "smartcents/internal/sheets/google"
	"smartcents/internal/worker"
)

const (
	dedupeSize     = 4096
	dedupeTTL      = 24 * time.Hour
	cacheSweep     = 10 * time.Minute
	shutdownWindow = 30 * time.Second
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	bootstrap := cli.SetupLogger(config.Load(), log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(bootstrap, (*config.Config).ValidateWorker)
	logger := cli.SetupLogger(cfg, log.ComponentWorker)

	logger.Info("Starting smartcents-worker", log.FieldOperation, log.OpStartup)

	sheetsClient, err := gsheet.New(context.Background(), gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(cli.ExitFailure)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(cli.ExitFailure)
	}

	seen := cache.NewLRUCache[time.Time](dedupeSize, dedupeTTL)
	caches := cache.NewManager(logger)
	caches.Register(seen)

	ctx, done := cli.GracefulShutdown(logger, shutdownWindow, func() {
		caches.Stop()
		if err := amqpClient.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", log.FieldError, err)
		}
	})
	caches.Start(ctx, cacheSweep)

	syncWorker := worker.NewSyncWorker(sheetsClient, seen, logger)
	if err := syncWorker.Run(ctx, amqpClient); err != nil {
		logger.Error("Worker stopped", log.FieldError, err)
	}

	cli.WaitForShutdown(ctx, done)
}
