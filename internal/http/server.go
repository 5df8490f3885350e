package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"gastos/internal/auth"
	"gastos/internal/cache"
	"gastos/internal/log"
	"gastos/internal/middleware/ratelimit"
	"gastos/internal/middleware/security"
	"gastos/internal/middleware/trace"
	"gastos/internal/services"
)

const defaultMaxUploadBytes = 10 << 20

// Options wires the server to its services. Readiness, CacheStats and
// TrustedProxies are optional.
type Options struct {
	Transactions *services.TransactionService
	Charts       *services.ChartService
	Accounts     *services.AuthService
	Invoices     *services.InvoiceService
	Auth         *auth.Middleware

	Readiness  func(context.Context) error
	CacheStats func() cache.Stats

	MaxUploadBytes     int64
	RateLimitPerMinute int
	TrustedProxies     []string
	Logger             *log.Logger
}

type Server struct {
	http.Server
	opts     Options
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer builds the router and middleware chain. Every request is traced,
// gets security headers and is screened for attack patterns; account and upload
// routes are rate limited and everything but health checks and accounts
// requires a token.
func NewServer(addr string, opts Options) (*Server, error) {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	detector, err := security.NewDetector(opts.TrustedProxies...)
	if err != nil {
		return nil, err
	}

	s := &Server{
		opts:     opts,
		logger:   logger,
		limiter:  ratelimit.New(ratelimit.Config{Limit: opts.RateLimitPerMinute}),
		detector: detector,
		tracer:   trace.NewMiddleware(logger, detector.ExtractClientIP),
		started:  time.Now(),
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Recurso não encontrado")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Método não permitido")
	})

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	r.Handle("/usuarios", s.limited(http.HandlerFunc(s.handleRegister))).Methods(http.MethodPost)
	r.Handle("/login", s.limited(http.HandlerFunc(s.handleLogin))).Methods(http.MethodPost)

	r.Handle("/upload", s.limited(s.protected(s.handleUploadCSV))).Methods(http.MethodPost)
	r.Handle("/upload/pdf", s.limited(s.protected(s.handleUploadPDF))).Methods(http.MethodPost)

	r.Handle("/transacoes", s.protected(s.handleListTransactions)).Methods(http.MethodGet)
	r.Handle("/transacoes", s.protected(s.handleCreateTransaction)).Methods(http.MethodPost)
	r.Handle("/transacoes/{id:[0-9]+}", s.protected(s.handleUpdateTransaction)).Methods(http.MethodPut)
	r.Handle("/transacoes/{id:[0-9]+}", s.protected(s.handleDeleteTransaction)).Methods(http.MethodDelete)
	r.Handle("/categorias", s.protected(s.handleCategories)).Methods(http.MethodGet)

	r.Handle("/charts/categoria", s.protected(s.handleChartByCategory)).Methods(http.MethodGet)
	r.Handle("/charts/geral", s.protected(s.handleChartByMonth)).Methods(http.MethodGet)
	r.Handle("/charts/insights", s.protected(s.handleChartInsights)).Methods(http.MethodGet)

	r.Handle("/fatura/pdf", s.protected(s.handleInvoicePDF)).Methods(http.MethodGet)
	r.Handle("/fatura/csv", s.protected(s.handleInvoiceCSV)).Methods(http.MethodGet)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.tracer.Middleware(headers.Middleware(detector.Middleware(r))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// limited applies the per-client rate limit.
func (s *Server) limited(next http.Handler) http.Handler {
	return s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldPath, r.URL.Path)
		writeError(w, http.StatusTooManyRequests, "Muitas requisições. Tente novamente em instantes.")
	})(next)
}

// protected requires a valid bearer token.
func (s *Server) protected(next http.HandlerFunc) http.Handler {
	return s.opts.Auth.Middleware(next)
}

// Shutdown stops background routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Close()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
