// Package cli holds the start-up steps shared by cmd/gastos,
// cmd/gastos-worker and cmd/gastosctl.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gastos/internal/config"
	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/storage"
)

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT values
// and installs it as the slog default.
func SetupLogger(level, format string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	if format != "" {
		cfg.Format = format
	}
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile reads .env when present. Deployments set the environment
// directly, so a missing file is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig exits the process when the environment is invalid.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens and migrates the database, exiting on failure.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.WithComponent(log.ComponentStorage).Error("Failed to open database", log.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	logger.WithComponent(log.ComponentStorage).Info("Database ready", "path", dbPath)
	return repo
}

// LoadCategorizer returns the embedded keyword table, or the one in path
// when path is set.
func LoadCategorizer(path string) (*core.Categorizer, error) {
	if path == "" {
		return core.DefaultCategorizer(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keywords file: %w", err)
	}
	defer f.Close()

	rules, err := core.LoadKeywordTable(f)
	if err != nil {
		return nil, fmt.Errorf("load keywords file %s: %w", path, err)
	}
	return core.NewCategorizer(rules), nil
}

// Shutdown coordinates a signal-triggered stop: Context is cancelled on
// SIGINT or SIGTERM, then cleanup runs under its own deadline.
type Shutdown struct {
	ctx  context.Context
	done chan struct{}
}

// GracefulShutdown starts watching for termination signals. cleanup may be
// nil.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) *Shutdown {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	s := &Shutdown{ctx: ctx, done: make(chan struct{})}

	go func() {
		defer close(s.done)
		<-ctx.Done()
		stop()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

		cleanupCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if cleanup != nil {
			cleanup(cleanupCtx)
		}
		if cleanupCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached", "timeout", timeout)
			return
		}
		logger.Info("Shutdown complete")
	}()
	return s
}

// Context is cancelled once a termination signal arrives.
func (s *Shutdown) Context() context.Context {
	return s.ctx
}

// Wait blocks until cleanup has finished.
func (s *Shutdown) Wait() {
	<-s.done
}
