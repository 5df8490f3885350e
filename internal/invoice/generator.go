// Package invoice produces simulated credit-card invoices in the same formats
// the importers accept, so a generated file can be uploaded back unchanged.
package invoice

import (
	"fmt"
	"math/rand/v2"
	"time"

	"gastos/internal/core"
)

const (
	// Title heads every generated PDF; importers skip it as a banner.
	Title = "Fatura de Cartão - Simulação"

	minItems = 5
	maxItems = 30
)

// Generator builds fake transactions from the keyword table.
type Generator struct {
	rng         *rand.Rand
	categorizer *core.Categorizer
	now         func() time.Time
}

// NewGenerator returns a Generator. A nil rng seeds one from the runtime.
func NewGenerator(c *core.Categorizer, rng *rand.Rand) *Generator {
	if c == nil {
		c = core.DefaultCategorizer()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng, categorizer: c, now: time.Now}
}

// RandomCount picks how many items an invoice carries.
func (g *Generator) RandomCount() int {
	return minItems + g.rng.IntN(maxItems-minItems+1)
}

// Items returns n transactions dated within one random month of the last
// three years. About one in ten has no amount and some have no category.
func (g *Generator) Items(n int) []core.Transaction {
	categories := g.categorizer.Categories()
	year := g.now().Year() - g.rng.IntN(3)
	month := 1 + g.rng.IntN(12)
	lastDay := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()

	items := make([]core.Transaction, 0, n)
	for range n {
		t := core.Transaction{
			Date: core.NewDate(year, month, 1+g.rng.IntN(lastDay)),
		}

		// One extra slot stands for "no category".
		if pick := g.rng.IntN(len(categories) + 1); pick < len(categories) {
			t.Category = categories[pick]
			t.Description = t.Category
			if keywords := g.categorizer.Keywords(t.Category); len(keywords) > 0 {
				t.Description = keywords[g.rng.IntN(len(keywords))]
			}
		} else {
			t.Description = fmt.Sprintf("Item %d", 1+g.rng.IntN(100))
		}

		if g.rng.Float64() > 0.1 {
			// 5.00 to 500.00 inclusive
			t.Amount = core.NewAmount(500 + g.rng.Int64N(49501))
		}
		items = append(items, t)
	}
	return items
}
