package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"spesa/internal/auth"
	applog "spesa/internal/log"
	"spesa/internal/metrics"
	"spesa/internal/middleware/ratelimit"
	"spesa/internal/middleware/security"
	"spesa/internal/middleware/trace"
	"spesa/internal/services"
)

// Options wires the server's collaborators. Ledger is required; the rest
// may be nil. A nil Auth disables login, a nil AI answers 503 on AI routes.
type Options struct {
	Addr     string
	Ledger   *services.LedgerService
	AI       *services.AIService
	Auth     *auth.Authenticator
	Limiter  *ratelimit.Limiter
	Metrics  *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer
	Logger   *applog.Logger
	Now      func() time.Time
}

type Server struct {
	http.Server

	ledger   *services.LedgerService
	ai       *services.AIService
	auth     *auth.Authenticator
	limiter  *ratelimit.Limiter
	detector *security.Detector
	metrics  *metrics.HTTPMetrics
	logger   *applog.Logger
	now      func() time.Time

	ownLimiter   bool
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		ledger:   opts.Ledger,
		ai:       opts.AI,
		auth:     opts.Auth,
		limiter:  opts.Limiter,
		detector: security.NewDetector(),
		metrics:  opts.Metrics,
		logger:   opts.Logger.WithComponent(applog.ComponentHTTP),
		now:      opts.Now,
	}
	if s.limiter == nil {
		s.limiter = ratelimit.NewLimiter(ratelimit.DefaultConfig())
		s.ownLimiter = true
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	if opts.Gatherer != nil {
		mux.Handle("GET /metrics", metrics.Handler(opts.Gatherer))
	}

	s.route(mux, "POST /api/login", s.handleLogin, false)
	s.route(mux, "POST /api/logout", s.handleLogout, false)
	s.route(mux, "GET /api/session", s.handleSession, false)

	s.route(mux, "GET /api/ledger", s.handleExport, true)
	s.route(mux, "POST /api/ledger/import", s.handleImport, true)

	s.route(mux, "POST /api/lists", s.handleCreateList, true)
	s.route(mux, "PUT /api/lists/{id}", s.handleUpdateList, true)
	s.route(mux, "DELETE /api/lists/{id}", s.handleDeleteList, true)
	s.route(mux, "POST /api/lists/{id}/items", s.handleAddItem, true)
	s.route(mux, "PATCH /api/lists/{id}/items/{itemID}", s.handleUpdateItem, true)
	s.route(mux, "DELETE /api/lists/{id}/items/{itemID}", s.handleDeleteItem, true)

	s.route(mux, "GET /api/vendors", s.handleListVendors, true)
	s.route(mux, "POST /api/vendors", s.handleAddVendor, true)
	s.route(mux, "PUT /api/vendors/{id}", s.handleUpdateVendor, true)
	s.route(mux, "DELETE /api/vendors/{id}", s.handleDeleteVendor, true)

	s.route(mux, "GET /api/categories", s.handleListCategories, true)
	s.route(mux, "POST /api/categories", s.handleAddCategory, true)
	s.route(mux, "PUT /api/categories/{name}/vendor", s.handleCategoryVendor, true)

	s.route(mux, "GET /api/items", s.handleMasterItems, true)
	s.route(mux, "GET /api/items/names", s.handleItemNames, true)
	s.route(mux, "GET /api/items/latest", s.handleLatestPurchase, true)
	s.route(mux, "PUT /api/items/master", s.handleUpdateMasterItem, true)

	s.route(mux, "GET /api/suggestions", s.handleSuggestions, true)
	s.route(mux, "POST /api/suggestions/accept", s.handleAcceptSuggestion, true)
	s.route(mux, "GET /api/summary", s.handleSummary, true)
	s.route(mux, "GET /api/forecast", s.handleForecast, true)

	s.route(mux, "POST /api/receipts", s.handleReceipt, true)
	s.route(mux, "POST /api/insights", s.handleInsight, true)

	var handler http.Handler = mux
	if s.auth != nil {
		handler = auth.Middleware(s.auth, skipAuth, func(w http.ResponseWriter, r *http.Request, err error) {
			writeError(w, r, err)
		})(handler)
	}
	handler = s.rateLimit(handler)
	handler = s.detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = trace.NewMiddleware(s.logger, s.detector.ExtractClientIP).Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// route registers an instrumented handler. Session routes answer 409 until
// the ledger has been hydrated.
func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc, session bool) {
	var handler http.Handler = h
	if session {
		handler = s.requireSession(handler)
	}
	mux.Handle(pattern, trace.Instrument(s.metrics, pattern, handler))
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch s.ledger.State() {
		case services.StateReady:
			next.ServeHTTP(w, r)
		case services.StateHydrating:
			writeError(w, r, services.ErrHydrating)
		default:
			writeError(w, r, errNoSession)
		}
	})
}

// rateLimit applies the per-client limit to API routes only.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).
			WarnContext(r.Context(), "Rate limit exceeded",
				applog.FieldClientIP, s.detector.ExtractClientIP(r),
				applog.FieldPath, r.URL.Path)
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded, try again later"})
	})(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			limited.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func skipAuth(r *http.Request) bool {
	if !strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return r.Method == http.MethodPost && r.URL.Path == "/api/login"
}

// Shutdown stops accepting requests and releases the limiter it created.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.ownLimiter {
			s.limiter.Stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type readyResponse struct {
	State     services.SessionState `json:"state"`
	SaveError string                `json:"saveError,omitempty"`
}

// handleReady reports not ready while the ledger is being loaded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := readyResponse{State: s.ledger.State()}
	if err := s.ledger.LastSaveError(); err != nil {
		resp.SaveError = err.Error()
	}
	status := http.StatusOK
	if resp.State == services.StateHydrating {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
