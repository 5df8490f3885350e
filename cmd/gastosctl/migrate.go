package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gastos/internal/storage"
)

func migrateCmd() *cobra.Command {
	var down int
	var rollbackAll bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
		Long: `Without flags, applies every pending migration. --down N reverts the
last N migrations; --all together with --down 0 reverts everything.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch {
			case down > 0:
				if err := storage.RollbackMigrations(dbPath, down); err != nil {
					return err
				}
			case rollbackAll:
				if err := storage.RollbackMigrations(dbPath, 0); err != nil {
					return err
				}
			default:
				if err := storage.RunMigrations(dbPath); err != nil {
					return err
				}
			}
			return printVersion(cmd)
		},
	}
	cmd.Flags().IntVar(&down, "down", 0, "number of migrations to revert")
	cmd.Flags().BoolVar(&rollbackAll, "all", false, "revert every migration")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printVersion(cmd)
		},
	})
	return cmd
}

func printVersion(cmd *cobra.Command) error {
	version, dirty, err := storage.MigrationVersion(dbPath)
	if err != nil {
		return err
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", version, state)
	return nil
}
