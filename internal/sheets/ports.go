// Package sheets defines the outbound port for mirroring transactions to a
// spreadsheet. Adapters live in the google and memory subpackages.
package sheets

import (
	"context"

	"gastos/internal/core"
)

// Row is one line of the mirror. Deleted rows only carry the transaction id
// and user id.
type Row struct {
	Transaction core.Transaction
	Action      string
	BatchID     string
}

// TransactionWriter appends rows to the mirror and returns a reference to
// the written range.
type TransactionWriter interface {
	AppendRows(ctx context.Context, rows []Row) (ref string, err error)
}

// Header names the mirror columns in the order Values writes them.
var Header = []string{"id", "usuario", "data", "descricao", "valor", "categoria", "acao", "lote"}

// Values renders a row as spreadsheet cells in Header order. Unknown amounts
// and dates are left blank.
func Values(r Row) []any {
	t := r.Transaction
	date, amount := "", ""
	if !t.Date.IsZero() {
		date = t.Date.String()
	}
	if t.Amount.Valid {
		amount = t.Amount.String()
	}
	return []any{t.ID, t.UserID, date, t.Description, amount, t.Category, r.Action, r.BatchID}
}
