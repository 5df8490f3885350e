package importer

import (
	"bytes"
	"io"
	"strings"

	"gastos/internal/core"
)

// DefaultBanner is the heading printed at the top of generated invoices.
const DefaultBanner = "Fatura de Cartão"

// placeholder marks an absent amount or category in document lines.
const placeholder = "-"

// TextExtractor returns the text lines of a page-oriented document, pages in
// order. It fails when the bytes are not a readable document.
type TextExtractor interface {
	ExtractLines(data []byte) ([]string, error)
}

// ImportDocument extracts text lines from a document and validates the
// pipe-delimited ones. Candidate rows are numbered from 1 in extraction order.
func (im *Importer) ImportDocument(r io.Reader) (core.BatchResult, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return core.BatchResult{}, core.FormatError("read document", err)
	}
	lines, err := im.extractor.ExtractLines(buf.Bytes())
	if err != nil {
		return core.BatchResult{}, core.FormatError("unreadable document", err)
	}
	return im.validateRows(ParseDocumentLines(lines, im.banners...)), nil
}

// ParseDocumentLines applies the line policy: blank and banner lines are
// skipped, lines with fewer than three pipe-separated fields are noise, a
// fourth field is the category and "-" stands for an absent value.
func ParseDocumentLines(lines []string, banners ...string) []core.RawRow {
	var rows []core.RawRow
	for _, line := range lines {
		if strings.TrimSpace(line) == "" || isBanner(line, banners) {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) < 3 {
			continue
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		raw := core.RawRow{
			Line:        len(rows) + 1,
			Date:        parts[0],
			Description: parts[1],
			Amount:      parts[2],
		}
		if raw.Amount == placeholder {
			raw.Amount = ""
		}
		if len(parts) > 3 && parts[3] != placeholder {
			raw.Category = parts[3]
		}
		rows = append(rows, raw)
	}
	return rows
}

func isBanner(line string, banners []string) bool {
	for _, b := range banners {
		if b != "" && strings.Contains(line, b) {
			return true
		}
	}
	return false
}
