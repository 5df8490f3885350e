// Command gastosctl runs maintenance tasks against the gastos database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gastos/internal/cli"
	"gastos/internal/config"
	"gastos/internal/log"
	"gastos/internal/storage"
)

var (
	dbPath   string
	logLevel string
	logger   *log.Logger

	rootCmd = &cobra.Command{
		Use:           "gastosctl",
		Short:         "Maintenance commands for the gastos backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger = cli.SetupLogger(logLevel, log.FormatText)
		},
	}
)

func init() {
	cli.LoadEnvFile()
	cfg := config.Load()

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", cfg.SQLiteDBPath, "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(invoiceCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openRepository opens the database, applying pending migrations.
func openRepository() (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}
	return repo, nil
}
