package http

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// handleHealth reports liveness only.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks the database.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]string{"database": "ok"}
	if s.opts.Readiness != nil {
		if err := s.opts.Readiness(ctx); err != nil {
			s.logger.WarnContext(ctx, "Readiness check failed", "error", err)
			checks["database"] = "failed"
			status, code = "not_ready", http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics exposes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceStats := s.tracer.Stats()
	limitStats := s.limiter.Stats()
	securityStats := s.detector.Stats()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceStats.Requests)
	metric("http_server_errors_total", "counter", "Responses with a 5xx status", traceStats.ServerErrors)
	metric("rate_limit_rejected_total", "counter", "Requests rejected by the rate limiter", limitStats.Rejected)
	metric("rate_limit_clients", "gauge", "Clients currently tracked by the rate limiter", limitStats.Clients)
	metric("suspicious_requests_total", "counter", "Requests flagged as suspicious", securityStats.Suspicious)
	if s.opts.CacheStats != nil {
		st := s.opts.CacheStats()
		metric("chart_cache_entries", "gauge", "Cached chart results", st.Size)
		metric("chart_cache_hits_total", "counter", "Chart cache hits", st.Hits)
		metric("chart_cache_misses_total", "counter", "Chart cache misses", st.Misses)
	}
	metric("uptime_seconds", "gauge", "Process uptime in seconds", int64(time.Since(s.started).Seconds()))
}
