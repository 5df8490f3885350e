package memory

import (
	"context"
	"testing"

	"gastos/internal/core"
	"gastos/internal/sheets"
)

func TestStoreAppendRows(t *testing.T) {
	s := New()

	ref, err := s.AppendRows(context.Background(), nil)
	if err != nil || ref != "" {
		t.Fatalf("empty append: ref=%q err=%v", ref, err)
	}

	rows := []sheets.Row{
		{Transaction: core.Transaction{ID: 1, Description: "a"}, Action: "created"},
		{Transaction: core.Transaction{ID: 2, Description: "b"}, Action: "created"},
	}
	ref, err = s.AppendRows(context.Background(), rows)
	if err != nil || ref != "mem:1-2" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	ref, _ = s.AppendRows(context.Background(), rows[:1])
	if ref != "mem:3-3" {
		t.Errorf("ref = %q, want mem:3-3", ref)
	}

	got := s.Rows()
	if len(got) != 3 || got[2].Transaction.ID != 1 {
		t.Fatalf("unexpected rows: %+v", got)
	}
	got[0].Action = "mutated"
	if s.Rows()[0].Action != "created" {
		t.Error("Rows must return a copy")
	}
}
