// Command sheets-sync mirrors rows written by the sqlite backend into the
// spreadsheet. It consumes AMQP mirror messages when AMQP_URL is set and
// sweeps pending rows every SYNC_INTERVAL either way.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"spendlog/internal/amqp"
	"spendlog/internal/backend"
	"spendlog/internal/cli"
	"spendlog/internal/config"
	"spendlog/internal/core"
	"spendlog/internal/log"
	gsheet "spendlog/internal/sheets/google"
	"spendlog/internal/storage"
	"spendlog/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentWorker)

	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	err := run(ctx, cfg, logger)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker exited with error", log.FieldError, err)
		cancel()
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	if cfg.SheetID == "" {
		return fmt.Errorf("SHEET_ID is required for the sheets-sync worker")
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return fmt.Errorf("open sqlite repository %s: %w", cfg.SQLiteDBPath, err)
	}
	defer repo.Close()

	sheetsClient, err := gsheet.New(ctx, backend.SheetsOptions(cfg))
	if err != nil {
		return fmt.Errorf("init google sheets client: %w", err)
	}
	if err := sheetsClient.EnsureHeaders(ctx); errors.Is(err, core.ErrStorageNotConfigured) {
		return err
	} else if err != nil {
		logger.Warn("Failed to ensure sheet headers", log.FieldError, err)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.SheetID)

	syncWorker := worker.NewSyncWorker(repo, sheetsClient, sheetsClient, cfg.SyncBatchSize)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return syncWorker.RunPendingLoop(gctx, cfg.SyncInterval)
	})

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return fmt.Errorf("init amqp client: %w", err)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			logger.Info("Consuming mirror messages", "queue", cfg.AMQPQueue)
			return amqpClient.Consume(gctx, syncWorker.HandleSyncMessage)
		})
	} else {
		logger.Info("AMQP_URL not set, relying on the periodic sweep only")
	}

	return g.Wait()
}
