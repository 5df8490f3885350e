package importer

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor reads text rows from PDF pages with ledongthuc/pdf.
type PDFExtractor struct{}

var errNotPDF = errors.New("not a PDF document")

// ExtractLines returns one string per visual text line, top to bottom, page
// after page. Pages without text contribute nothing.
func (PDFExtractor) ExtractLines(data []byte) (lines []string, err error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF")) {
		return nil, errNotPDF
	}
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			lines, err = nil, fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		lines = append(lines, pageLines(page.Content().Text)...)
	}
	return lines, nil
}

// lineTolerance is how far apart, in points, two glyphs may sit vertically
// and still belong to the same line.
const lineTolerance = 2.0

// pageLines groups glyphs into visual lines: top to bottom by baseline,
// then left to right inside each line. Fonts without a widths table put
// every glyph of a run at the same X, so both sorts are stable and content
// stream order breaks ties.
func pageLines(glyphs []pdf.Text) []string {
	if len(glyphs) == 0 {
		return nil
	}
	sorted := make([]pdf.Text, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var lines []string
	flush := func(row []pdf.Text) {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		var b strings.Builder
		for _, g := range row {
			if g.S != "\n" {
				b.WriteString(g.S)
			}
		}
		if line := strings.TrimSpace(b.String()); line != "" {
			lines = append(lines, line)
		}
	}

	start := 0
	for i := 1; i < len(sorted); i++ {
		if sorted[start].Y-sorted[i].Y > lineTolerance {
			flush(sorted[start:i])
			start = i
		}
	}
	flush(sorted[start:])
	return lines
}
