package main

import (
	"context"
	"errors"
	"os"
	"time"

	"gastos/internal/amqp"
	"gastos/internal/cli"
	"gastos/internal/log"
	"gastos/internal/sheets"
	gsheet "gastos/internal/sheets/google"
	mem "gastos/internal/sheets/memory"
	"gastos/internal/worker"
)

// loadConcurrency bounds parallel record lookups per event.
const loadConcurrency = 4

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	logger.Info("Starting gastos-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var writer sheets.TransactionWriter
	if cfg.SheetsEnabled() {
		client, err := gsheet.NewClient(context.Background(), gsheet.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		writer = mem.New()
		logger.Info("Google Sheets disabled - mirroring to memory (dry run)")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	syncWorker := worker.NewSyncWorker(repo, writer, loadConcurrency, logger)

	consumed := make(chan struct{})
	shutdown := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		// Let the in-flight delivery finish before closing the connection.
		select {
		case <-consumed:
		case <-ctx.Done():
		}
		amqpClient.Close()
	})

	go func() {
		defer close(consumed)
		err := amqpClient.Consume(shutdown.Context(), syncWorker.HandleEvent)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
			os.Exit(1)
		}
	}()

	shutdown.Wait()
	logger.Info("Worker stopped")
}
