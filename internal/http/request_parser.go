package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"gastos/internal/core"
)

// Query parameter names shared by listing and chart endpoints.
const (
	paramCategory = "categoria"
	paramFrom     = "data_inicio"
	paramTo       = "data_fim"
	paramMin      = "valor_min"
	paramMax      = "valor_max"
	paramSearch   = "busca"
)

var (
	errBadDate   = errors.New("Formato de data inválido")
	errBadAmount = errors.New("Formato de valor inválido")
	errBadJSON   = errors.New("JSON inválido")
)

// JSONBody holds a decoded object body with every field kept as raw JSON, so
// numbers retain their literal text and absent fields can be told apart
// from null ones.
type JSONBody struct {
	fields map[string]json.RawMessage
}

// ParseJSONBody decodes a single JSON object from the request.
func ParseJSONBody(r *http.Request) (*JSONBody, error) {
	dec := json.NewDecoder(r.Body)
	fields := make(map[string]json.RawMessage)
	if err := dec.Decode(&fields); err != nil {
		return nil, errBadJSON
	}
	return &JSONBody{fields: fields}, nil
}

// Lookup returns the field as text and whether the key was present.
// Strings are returned unquoted, numbers in their literal form, and null as
// the empty string.
func (b *JSONBody) Lookup(key string) (string, bool, error) {
	raw, ok := b.fields[key]
	if !ok {
		return "", false, nil
	}
	v, err := stringValue(raw)
	return v, true, err
}

// Get returns the field as text, or "" when absent.
func (b *JSONBody) Get(key string) (string, error) {
	v, _, err := b.Lookup(key)
	return v, err
}

// Optional returns a pointer to the field text, or nil when absent.
func (b *JSONBody) Optional(key string) (*string, error) {
	v, ok, err := b.Lookup(key)
	if !ok || err != nil {
		return nil, err
	}
	return &v, nil
}

func stringValue(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0, bytes.Equal(raw, []byte("null")):
		return "", nil
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", errBadJSON
		}
		return s, nil
	case raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9'):
		return string(raw), nil
	case bytes.Equal(raw, []byte("true")), bytes.Equal(raw, []byte("false")):
		return string(raw), nil
	default:
		return "", errBadJSON
	}
}

// ParseFilter reads the listing and chart filters from query parameters.
// Categories are comma separated; blank entries are ignored.
func ParseFilter(q url.Values) (core.Filter, error) {
	var f core.Filter

	for _, c := range strings.Split(q.Get(paramCategory), ",") {
		if c = strings.TrimSpace(c); c != "" {
			f.Categories = append(f.Categories, c)
		}
	}

	var err error
	if f.From, err = parseDateParam(q.Get(paramFrom)); err != nil {
		return f, err
	}
	if f.To, err = parseDateParam(q.Get(paramTo)); err != nil {
		return f, err
	}
	if f.MinAmount, err = parseAmountParam(q.Get(paramMin)); err != nil {
		return f, err
	}
	if f.MaxAmount, err = parseAmountParam(q.Get(paramMax)); err != nil {
		return f, err
	}
	f.Search = strings.TrimSpace(q.Get(paramSearch))
	return f, nil
}

func parseDateParam(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return nil, errBadDate
	}
	return &d.Time, nil
}

func parseAmountParam(v string) (*core.Amount, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	a, err := core.ParseAmount(v)
	if err != nil || !a.Valid {
		return nil, errBadAmount
	}
	return &a, nil
}

// pathID reads the numeric {id} route variable.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}
