package sheets

import (
	"reflect"
	"testing"

	"gastos/internal/core"
)

func TestValues(t *testing.T) {
	tests := []struct {
		name string
		row  Row
		want []any
	}{
		{
			name: "full row",
			row: Row{
				Transaction: core.Transaction{ID: 3, UserID: 1, Date: core.NewDate(2024, 2, 1), Description: "Uber", Amount: core.NewAmount(1240), Category: "transporte"},
				Action:      "created",
				BatchID:     "b1",
			},
			want: []any{int64(3), int64(1), "2024-02-01", "Uber", "12.4", "transporte", "created", "b1"},
		},
		{
			name: "null amount",
			row:  Row{Transaction: core.Transaction{ID: 4, UserID: 1, Date: core.NewDate(2024, 2, 1), Description: "Netflix", Category: "assinaturas"}, Action: "created"},
			want: []any{int64(4), int64(1), "2024-02-01", "Netflix", "", "assinaturas", "created", ""},
		},
		{
			name: "deleted",
			row:  Row{Transaction: core.Transaction{ID: 5, UserID: 1}, Action: "deleted"},
			want: []any{int64(5), int64(1), "", "", "", "", "deleted", ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Values(tt.row)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Values() = %#v, want %#v", got, tt.want)
			}
			if len(got) != len(Header) {
				t.Errorf("Values() has %d cells, header has %d", len(got), len(Header))
			}
		})
	}
}
