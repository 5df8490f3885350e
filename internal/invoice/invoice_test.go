package invoice

import (
	"bytes"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/core"
	"gastos/internal/importer"
)

func newTestGenerator(seed uint64) *Generator {
	g := NewGenerator(nil, rand.New(rand.NewPCG(seed, seed+1)))
	g.now = func() time.Time { return time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC) }
	return g
}

func TestItems(t *testing.T) {
	g := newTestGenerator(7)
	items := g.Items(200)
	require.Len(t, items, 200)

	first := items[0].Date
	var nulls int
	for _, it := range items {
		assert.Equal(t, first.Year(), it.Date.Year())
		assert.Equal(t, first.Month(), it.Date.Month())
		assert.NotEmpty(t, it.Description)
		if !it.Amount.Valid {
			nulls++
			continue
		}
		assert.GreaterOrEqual(t, it.Amount.Cents, int64(500))
		assert.LessOrEqual(t, it.Amount.Cents, int64(50000))
	}
	assert.GreaterOrEqual(t, first.Year(), 2023)
	assert.LessOrEqual(t, first.Year(), 2025)
	assert.Less(t, nulls, 60)
}

func TestRandomCount(t *testing.T) {
	g := newTestGenerator(1)
	for range 100 {
		n := g.RandomCount()
		assert.GreaterOrEqual(t, n, 5)
		assert.LessOrEqual(t, n, 30)
	}
}

func TestFormatLine(t *testing.T) {
	line := FormatLine(core.Transaction{Date: core.NewDate(2024, 2, 1), Description: "netflix"})
	assert.Equal(t, "2024-02-01 | netflix | - | -", line)

	line = FormatLine(core.Transaction{Date: core.NewDate(2024, 2, 1), Description: "uber", Amount: core.NewAmount(1240), Category: "transporte"})
	assert.Equal(t, "2024-02-01 | uber | 12.4 | transporte", line)
}

func TestCSVRoundTrip(t *testing.T) {
	items := newTestGenerator(3).Items(25)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, items))

	res, err := importer.New(nil).ImportCSV(&buf)
	require.NoError(t, err)
	require.True(t, res.OK(), "errors: %v", res.Details())
	require.Len(t, res.Records, len(items))
	for i, rec := range res.Records {
		assert.Equal(t, items[i].Date, rec.Date)
		assert.Equal(t, items[i].Amount, rec.Amount)
		if items[i].Category != "" {
			assert.Equal(t, items[i].Category, rec.Category)
		}
	}
}

func TestDocumentLinesRoundTrip(t *testing.T) {
	items := newTestGenerator(5).Items(10)
	lines := []string{Title}
	for _, it := range items {
		lines = append(lines, FormatLine(it))
	}
	rows := importer.ParseDocumentLines(lines, importer.DefaultBanner)
	require.Len(t, rows, len(items))
}

func TestPDFRoundTrip(t *testing.T) {
	for name, n := range map[string]int{"single page": 5, "several pages": 80} {
		t.Run(name, func(t *testing.T) {
			items := newTestGenerator(9).Items(n)

			var buf bytes.Buffer
			require.NoError(t, WritePDF(&buf, items))
			require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

			res, err := importer.New(nil).ImportDocument(&buf)
			require.NoError(t, err)
			require.True(t, res.OK(), "errors: %v", res.Details())
			require.Len(t, res.Records, len(items))
			for i, rec := range res.Records {
				assert.Equal(t, items[i].Date, rec.Date, "item %d", i)
				assert.Equal(t, items[i].Description, rec.Description, "item %d", i)
				assert.Equal(t, items[i].Amount, rec.Amount, "item %d", i)
				if items[i].Category != "" {
					assert.Equal(t, items[i].Category, rec.Category, "item %d", i)
				} else {
					assert.Equal(t, core.FallbackCategory, rec.Category, "item %d", i)
				}
			}
		})
	}
}
