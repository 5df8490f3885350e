package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gastos/internal/cli"
	"gastos/internal/core"
	"gastos/internal/importer"
	"gastos/internal/log"
	"gastos/internal/services"
)

func importCmd() *cobra.Command {
	var username, keywordsFile string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a statement file for a user",
	}
	cmd.PersistentFlags().StringVar(&username, "user", "", "owner of the imported records")
	cmd.PersistentFlags().StringVar(&keywordsFile, "keywords", "", "keyword table overriding the embedded one")
	_ = cmd.MarkPersistentFlagRequired("user")

	for _, source := range []string{services.SourceCSV, services.SourcePDF} {
		source := source
		cmd.AddCommand(&cobra.Command{
			Use:   source + " <file>",
			Short: "Import a " + source + " statement",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runImport(cmd, source, args[0], username, keywordsFile)
			},
		})
	}
	return cmd
}

func runImport(cmd *cobra.Command, source, path, username, keywordsFile string) error {
	ctx := log.WithContext(cmd.Context(), logger)

	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	u, err := repo.UserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("user %q: %w", username, err)
	}

	categorizer, err := cli.LoadCategorizer(keywordsFile)
	if err != nil {
		return err
	}
	validator := core.NewValidator(categorizer)
	svc := services.NewTransactionService(repo, validator, importer.New(validator), nil, nil)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var res services.ImportResult
	if source == services.SourcePDF {
		res, err = svc.ImportPDF(ctx, u.ID, f)
	} else {
		res, err = svc.ImportCSV(ctx, u.ID, f)
	}
	if err != nil {
		var ce *core.Error
		if errors.As(err, &ce) {
			for _, d := range ce.Details {
				fmt.Fprintln(cmd.ErrOrStderr(), d)
			}
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d transactions (batch %s)\n", len(res.Transactions), res.BatchID)
	return nil
}
