package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gastos/internal/cli"
	"gastos/internal/invoice"
	"gastos/internal/services"
)

func invoiceCmd() *cobra.Command {
	var out, keywordsFile string

	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Write a simulated card invoice",
	}
	cmd.PersistentFlags().StringVar(&out, "out", "", "output file (default fatura_simulada.<format>)")
	cmd.PersistentFlags().StringVar(&keywordsFile, "keywords", "", "keyword table overriding the embedded one")

	for _, format := range []string{services.InvoicePDF, services.InvoiceCSV} {
		format := format
		cmd.AddCommand(&cobra.Command{
			Use:   format,
			Short: "Write the invoice as " + format,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				categorizer, err := cli.LoadCategorizer(keywordsFile)
				if err != nil {
					return err
				}
				path := out
				if path == "" {
					path = "fatura_simulada." + format
				}
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				svc := services.NewInvoiceService(invoice.NewGenerator(categorizer, nil))
				if err := svc.Write(cmd.Context(), f, format); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
				return nil
			},
		})
	}
	return cmd
}
