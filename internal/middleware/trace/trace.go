// Package trace assigns request ids and logs the start and end of every
// HTTP request.
package trace

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"gastos/internal/log"
)

// HeaderRequestID is read from incoming requests and echoed on responses.
const HeaderRequestID = "X-Request-ID"

const maxRequestIDLen = 64

type requestIDKey struct{}

// Stats counts traced requests.
type Stats struct {
	Requests     int64
	ServerErrors int64
	// LastDurationMs is the duration of the most recently finished request.
	LastDurationMs int64
}

// Middleware gives each request an id and a logger carrying it.
type Middleware struct {
	logger   *log.Logger
	clientIP func(*http.Request) string

	requests     atomic.Int64
	serverErrors atomic.Int64
	lastDuration atomic.Int64
}

// NewMiddleware logs through logger; clientIP may be nil.
func NewMiddleware(logger *log.Logger, clientIP func(*http.Request) string) *Middleware {
	return &Middleware{logger: logger, clientIP: clientIP}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.requests.Add(1)

		id := requestIDFrom(r)
		w.Header().Set(HeaderRequestID, id)

		reqLogger := m.logger.With(log.FieldRequestID, id)
		ctx := log.WithContext(context.WithValue(r.Context(), requestIDKey{}, id), reqLogger)
		r = r.WithContext(ctx)

		var ip string
		if m.clientIP != nil {
			ip = m.clientIP(r)
		}
		sl := log.NewStructuredLogger(reqLogger)
		sl.LogHTTPStart(ctx, r, ip)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		elapsed := time.Since(start).Milliseconds()
		m.lastDuration.Store(elapsed)
		if sw.status >= http.StatusInternalServerError {
			m.serverErrors.Add(1)
		}
		sl.LogHTTPEnd(ctx, r, sw.status, elapsed, ip)
	})
}

// requestIDFrom keeps a well-formed incoming id and mints one otherwise.
func requestIDFrom(r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(HeaderRequestID))
	if id == "" || len(id) > maxRequestIDLen || strings.ContainsAny(id, " \t\r\n") {
		return uuid.NewString()
	}
	return id
}

// RequestID returns the id assigned by the middleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (m *Middleware) Stats() Stats {
	return Stats{
		Requests:       m.requests.Load(),
		ServerErrors:   m.serverErrors.Load(),
		LastDurationMs: m.lastDuration.Load(),
	}
}

// statusWriter remembers the first status written.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.written {
		w.status, w.written = code, true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
