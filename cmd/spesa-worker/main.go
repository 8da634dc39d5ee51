package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"spesa/internal/amqp"
	"spesa/internal/cli"
	applog "spesa/internal/log"
	gsheet "spesa/internal/sheets/google"
	"spesa/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting spesa-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required to run the mirror worker")
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, nil)

	store, err := cli.OpenStore(ctx, cfg, logger, nil)
	if err != nil {
		logger.Error("Failed to open ledger store", applog.FieldError, err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Cleanup(); err != nil {
			logger.Error("Store cleanup failed", applog.FieldError, err)
		}
	}()

	sheetsClient, err := gsheet.NewFromEnv(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)

	mirror := worker.NewMirrorWorker(store.Backend, sheetsClient, cfg.LedgerKey, cfg.MirrorInterval, logger)
	if err := mirror.Start(ctx); err != nil {
		logger.Error("Failed to start mirror worker", applog.FieldError, err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.AMQPEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			err := amqpClient.ConsumeLedgerSaved(gctx, mirror.HandleLedgerSaved)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("AMQP disabled - mirroring on the periodic interval only", "interval", cfg.MirrorInterval)
	}
	g.Go(func() error {
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return mirror.Stop(stopCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
	logger.Info("spesa-worker stopped")
}
