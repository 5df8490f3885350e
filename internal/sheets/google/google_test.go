package google

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"gastos/internal/core"
	"gastos/internal/sheets"
)

func TestNewClient_MissingSettings(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{"no spreadsheet", Options{SheetName: "Transacoes"}, "missing spreadsheet id"},
		{"no sheet", Options{SpreadsheetID: "id"}, "missing sheet name"},
		{"no credentials", Options{SpreadsheetID: "id", SheetName: "Transacoes"}, "missing service account credentials"},
		{
			"unreadable file",
			Options{SpreadsheetID: "id", SheetName: "Transacoes", CredentialsFile: filepath.Join(t.TempDir(), "missing.json")},
			"read service account file",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(context.Background(), tt.opts)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestAppendRows_Uninitialized(t *testing.T) {
	c := &Client{spreadsheetID: "id", sheetName: "Transacoes"}

	ref, err := c.AppendRows(context.Background(), nil)
	if err != nil || ref != "" {
		t.Fatalf("empty append should be a no-op, got %q, %v", ref, err)
	}

	_, err = c.AppendRows(context.Background(), []sheets.Row{{Transaction: core.Transaction{ID: 1}}})
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("expected not initialized error, got %v", err)
	}
}

func TestAppendRange(t *testing.T) {
	tests := map[string]string{
		"Transacoes":    "Transacoes!A:H",
		"2024 Gastos":   "'2024 Gastos'!A:H",
		"O'Brien Sheet": "'O''Brien Sheet'!A:H",
	}
	for in, want := range tests {
		if got := appendRange(in); got != want {
			t.Errorf("appendRange(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValueMatrix(t *testing.T) {
	rows := []sheets.Row{
		{Transaction: core.Transaction{ID: 1, UserID: 7, Date: core.NewDate(2024, 1, 5), Description: "Uber", Amount: core.NewAmount(2350), Category: "transporte"}, Action: "created", BatchID: "b"},
		{Transaction: core.Transaction{ID: 2, UserID: 7}, Action: "deleted"},
	}
	m := valueMatrix(rows)
	if len(m) != 2 {
		t.Fatalf("got %d rows", len(m))
	}
	if m[0][4] != "23.5" || m[0][2] != "2024-01-05" {
		t.Errorf("unexpected first row: %#v", m[0])
	}
	if m[1][6] != "deleted" || m[1][4] != "" {
		t.Errorf("unexpected second row: %#v", m[1])
	}
}
