package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"gastos/internal/core"
)

// Column names of the tabular format.
const (
	ColumnDate        = "data"
	ColumnDescription = "descricao"
	ColumnAmount      = "valor"
	ColumnCategory    = "categoria"
)

var requiredColumns = []string{ColumnDate, ColumnDescription, ColumnAmount}

// ImportCSV parses a comma-separated table with a header row. Structural
// problems fail with a KindFormat or KindSchema error before any row is
// validated; row problems are collected in the result.
func (im *Importer) ImportCSV(r io.Reader) (core.BatchResult, error) {
	rows, err := ReadCSV(r)
	if err != nil {
		return core.BatchResult{}, err
	}
	return im.validateRows(rows), nil
}

// ReadCSV extracts raw rows from a CSV stream. Data rows are numbered from 1.
func ReadCSV(r io.Reader) ([]core.RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, core.FormatError("empty file", nil)
	}
	if err != nil {
		return nil, core.FormatError("invalid CSV", err)
	}

	headerMap := make(map[string]int, len(header))
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff")
		}
		col = strings.TrimSpace(col)
		if _, dup := headerMap[col]; !dup {
			headerMap[col] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := headerMap[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, core.SchemaError(missing)
	}

	field := func(record []string, col string) string {
		i, ok := headerMap[col]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var rows []core.RawRow
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, core.FormatError("invalid CSV", err)
		}
		if len(record) > len(header) {
			return nil, core.FormatError(fmt.Sprintf("line %d has %d fields, header has %d", line, len(record), len(header)), nil)
		}
		for _, v := range record {
			if !utf8.ValidString(v) {
				return nil, core.FormatError("file is not valid UTF-8", nil)
			}
		}

		rows = append(rows, core.RawRow{
			Line:        line,
			Date:        field(record, ColumnDate),
			Description: field(record, ColumnDescription),
			Amount:      field(record, ColumnAmount),
			Category:    strings.TrimSpace(field(record, ColumnCategory)),
		})
	}
	return rows, nil
}
