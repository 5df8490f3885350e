package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"gastos/internal/amqp"
	"gastos/internal/auth"
	"gastos/internal/cache"
	"gastos/internal/cli"
	"gastos/internal/core"
	apphttp "gastos/internal/http"
	"gastos/internal/importer"
	"gastos/internal/invoice"
	"gastos/internal/log"
	"gastos/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	categorizer, err := cli.LoadCategorizer(cfg.KeywordsFile)
	if err != nil {
		logger.Error("Failed to load keyword table", log.FieldError, err)
		os.Exit(1)
	}
	validator := core.NewValidator(categorizer)

	charts := cache.NewLRUCache[any](cfg.CacheSize, cfg.CacheTTL)
	sweeper := cache.NewSweeper(logger, time.Minute, charts)
	sweeper.Start(context.Background())

	// Events are optional; without a broker the sheet mirror simply stays idle.
	var events services.EventPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		events = amqpClient
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Error("Failed to initialize token issuer", log.FieldError, err)
		os.Exit(1)
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Transactions:       services.NewTransactionService(repo, validator, importer.New(validator), events, charts),
		Charts:             services.NewChartService(repo, charts),
		Accounts:           services.NewAuthService(repo, tokens),
		Invoices:           services.NewInvoiceService(invoice.NewGenerator(categorizer, nil)),
		Auth:               auth.NewMiddleware(tokens, repo),
		Readiness:          repo.Ping,
		CacheStats:         charts.Stats,
		MaxUploadBytes:     cfg.MaxUploadBytes,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		Logger:             logger,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", log.FieldError, err)
		os.Exit(1)
	}

	shutdown := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		sweeper.Stop()
		if amqpClient != nil {
			amqpClient.Close()
		}
	})

	logger.Info("Starting gastos server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	shutdown.Wait()
	logger.Info("Server stopped gracefully")
}
