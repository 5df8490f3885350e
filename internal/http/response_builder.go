package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"gastos/internal/core"
	"gastos/internal/log"
)

const msgInternal = "Erro interno do servidor"

// JSONResponseBuilder assembles a JSON response with optional headers.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(key, value string) *JSONResponseBuilder {
	b.headers[key] = value
	return b
}

func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Message sets a {"message": msg} body.
func (b *JSONResponseBuilder) Message(msg string) *JSONResponseBuilder {
	return b.Body(messageResponse{Message: msg})
}

func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for k, v := range b.headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.body != nil {
		_ = json.NewEncoder(w).Encode(b.body)
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error    string   `json:"error"`
	Detalhes []string `json:"detalhes,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Body(v).Write(w)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind core.Kind) int {
	switch kind {
	case core.KindFormat, core.KindSchema, core.KindRowValidation, core.KindConflict:
		return http.StatusBadRequest
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError renders a service failure. Typed errors keep their
// message and row details; anything else is logged and hidden behind a
// generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ce *core.Error
	if errors.As(err, &ce) && ce.Kind != core.KindInternal {
		writeJSON(w, statusFor(ce.Kind), errorResponse{Error: errorMessage(ce), Detalhes: ce.Details})
		return
	}
	fields := log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "")
	log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), "Request failed", err,
		log.ComponentHTTP, core.KindOf(err).String(), fields)
	writeError(w, http.StatusInternalServerError, msgInternal)
}

// errorMessage picks the client-facing text for a typed error. Single-record
// validation failures carry only a reason, so they get a localized one.
func errorMessage(ce *core.Error) string {
	switch {
	case ce.Msg != "":
		return ce.Msg
	case errors.Is(ce, core.ErrInvalidDate):
		return errBadDate.Error()
	case errors.Is(ce, core.ErrAmountNotNumeric):
		return errBadAmount.Error()
	default:
		return ce.Error()
	}
}
