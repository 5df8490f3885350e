package invoice

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"gastos/internal/core"
	"gastos/internal/importer"
)

// FormatLine renders one item the way the document importer reads it:
// "date | description | amount or - | category or -".
func FormatLine(t core.Transaction) string {
	category := t.Category
	if category == "" {
		category = "-"
	}
	return fmt.Sprintf("%s | %s | %s | %s", t.Date, t.Description, t.Amount, category)
}

// WritePDF writes a letter-sized invoice with a title and one line per item,
// breaking pages as needed.
func WritePDF(w io.Writer, items []core.Transaction) error {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(50, 50, 50)
	pdf.SetAutoPageBreak(true, 50)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 20, tr(Title), "", 1, "C", false, 0, "")
	pdf.Ln(30)

	pdf.SetFont("Helvetica", "", 10)
	for _, t := range items {
		pdf.CellFormat(0, 15, tr(FormatLine(t)), "", 1, "L", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// WriteCSV writes the items with the importer's header. Absent amounts and
// categories are left empty.
func WriteCSV(w io.Writer, items []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{importer.ColumnDate, importer.ColumnDescription, importer.ColumnAmount, importer.ColumnCategory}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range items {
		amount := ""
		if t.Amount.Valid {
			amount = t.Amount.String()
		}
		if err := cw.Write([]string{t.Date.String(), t.Description, amount, t.Category}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
