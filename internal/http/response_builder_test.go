package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gastos/internal/core"
)

func TestJSONResponseBuilder(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Extra", "1").
		Message("ok").
		Write(rec)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Extra") != "1" {
		t.Error("custom header missing")
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"message":"ok"}` {
		t.Errorf("body = %s", got)
	}
}

func TestWriteServiceError(t *testing.T) {
	batch := core.BatchResult{Errors: []core.RowError{{Line: 2, Reason: "amount must be numeric"}}}

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"batch", core.BatchError("Erros encontrados no CSV", batch), http.StatusBadRequest, `"detalhes":["Linha 2:`},
		{"schema", core.SchemaError([]string{"valor"}), http.StatusBadRequest, "missing required columns: valor"},
		{"not found", core.NotFoundError("Transação não encontrada"), http.StatusNotFound, "Transação não encontrada"},
		{"conflict", core.ConflictError("Usuário já existe"), http.StatusBadRequest, "Usuário já existe"},
		{"unauthorized", core.UnauthorizedError("nope"), http.StatusUnauthorized, "nope"},
		{"wrapped not found", fmt.Errorf("load: %w", core.NotFoundError("x")), http.StatusNotFound, `"x"`},
		{"row date", &core.Error{Kind: core.KindRowValidation, Err: core.ErrInvalidDate}, http.StatusBadRequest, "Formato de data inválido"},
		{"plain error", errors.New("disk on fire"), http.StatusInternalServerError, msgInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, httptest.NewRequest("GET", "/", nil), tt.err)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if !strings.Contains(rec.Body.String(), tt.body) {
				t.Errorf("body %s does not contain %q", rec.Body, tt.body)
			}
			if strings.Contains(rec.Body.String(), "disk on fire") {
				t.Error("internal error leaked to client")
			}
		})
	}
}
