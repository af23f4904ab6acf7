package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"finsmart/internal/cache"
	"finsmart/internal/core"
	"finsmart/internal/log"
	"finsmart/internal/middleware/ratelimit"
	"finsmart/internal/middleware/security"
	"finsmart/internal/middleware/trace"
	"finsmart/internal/services"
	"finsmart/internal/session"
	appweb "finsmart/web"
)

// Options configures the server.
type Options struct {
	Addr     string
	Sessions *session.Manager
	Service  *services.ExpenseService
	CacheTTL time.Duration
	Logger   *log.Logger
}

// Server serves the ledger UI and API. It embeds http.Server so callers can
// ListenAndServe directly.
type Server struct {
	http.Server
	templates *template.Template
	sessions  *session.Manager
	service   *services.ExpenseService
	logger    *log.Logger

	limiter   *ratelimit.Limiter
	extractor *security.IPExtractor

	// Rendered partials cached per session; every ledger write invalidates
	// the whole session prefix.
	partialCache *cache.LRUCache[[]byte]
	caches       *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates.
func NewServer(opts Options) (*Server, error) {
	if opts.Sessions == nil {
		return nil, errors.New("http: session manager is required")
	}
	if opts.Service == nil {
		return nil, errors.New("http: expense service is required")
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}

	templates, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:         opts.Addr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  2 * time.Minute,
		},
		templates:    templates,
		sessions:     opts.Sessions,
		service:      opts.Service,
		logger:       opts.Logger.WithComponent(log.ComponentHTTP),
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		extractor:    security.NewIPExtractor(),
		partialCache: cache.NewLRUCache[[]byte](512, opts.CacheTTL),
		caches:       cache.NewManager(),
	}
	s.caches.Register(s.partialCache)
	s.caches.StartCleanup(10 * time.Minute)

	// Static assets from the embedded FS.
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("failed to mount embedded static assets", log.FieldError, err)
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/", s.withSession(s.handleIndex))
	mux.HandleFunc("/expenses", s.withSession(s.handleExpenses))
	mux.HandleFunc("/expenses/export", s.withSession(s.handleExportCSV))
	mux.HandleFunc("/expenses/import", s.withSession(s.handleImportCSV))
	mux.HandleFunc("/budgets", s.withSession(s.handleSetBudget))

	mux.HandleFunc("/ui/budget-status", s.withSession(s.handleBudgetStatus))
	mux.HandleFunc("/ui/category-breakdown", s.withSession(s.handleCategoryBreakdown))
	mux.HandleFunc("/ui/spending-trend", s.withSession(s.handleSpendingTrend))

	mux.HandleFunc("/api/projections/sip", s.handleProjectionSIP)
	mux.HandleFunc("/api/projections/lumpsum", s.handleProjectionLumpSum)
	mux.HandleFunc("/api/planner/weekly", s.handlePlannerWeekly)

	// Outermost first: tracing, request-scoped logger, security headers,
	// write rate limiting.
	tracer := trace.NewMiddleware(s.extractor.ExtractClientIP, opts.Logger)
	withLogger := log.Middleware(s.logger)
	withRequestID := log.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Handler = tracer.Middleware(withLogger(withRequestID(headers.Middleware(s.limitWrites(mux)))))

	return s, nil
}

// limitWrites applies the per-IP rate limit to mutating requests only.
func (s *Server) limitWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && !s.limiter.Allow(s.extractor.ExtractClientIP(r)) {
			s.logger.WarnContext(r.Context(), "rate limit exceeded",
				log.FieldClientIP, s.extractor.ExtractClientIP(r),
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "rate limit exceeded, try again later", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the server and its background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// partialCacheKey scopes a cached partial to one session and request shape.
func partialCacheKey(sessionID, view, params string) string {
	return sessionID + ":" + view + ":" + params
}

// invalidateSession drops every cached partial belonging to a session. Called
// on every ledger write.
func (s *Server) invalidateSession(sessionID string) {
	if n := s.partialCache.DeletePrefix(sessionID + ":"); n > 0 {
		s.logger.Debug("invalidated cached partials",
			log.FieldSessionID, sessionID,
			log.FieldRecordCount, n)
	}
}

// cachedPartial returns a cached render, or builds the view model, executes
// the template and caches the result. data is only called on a cache miss.
func (s *Server) cachedPartial(sessionID, view, params, tmpl string, data func() any) ([]byte, error) {
	key := partialCacheKey(sessionID, view, params)
	if body, ok := s.partialCache.Get(key); ok {
		return body, nil
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, tmpl, data()); err != nil {
		return nil, fmt.Errorf("render %s: %w", tmpl, err)
	}
	body := buf.Bytes()
	s.partialCache.Set(key, body)
	return body, nil
}

// writeJSON marshals v with a 200 status.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a domain error to an HTTP status: validation errors are the
// client's fault, everything else is ours.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, core.ErrValidation) {
		ValidationError(err.Error()).Write(w)
		return
	}
	log.FromContext(r.Context()).ErrorContext(r.Context(), "request failed",
		log.FieldPath, r.URL.Path,
		log.FieldError, err)
	InternalServerError("internal error").Write(w)
}

// monthRange returns the inclusive date range covering today's month so far.
func monthRange(today core.Date) (from, to core.Date) {
	return core.NewDate(today.Year(), int(today.Month()), 1), today
}

// formatMoney renders an amount for the UI.
func formatMoney(m core.Money) string {
	return "€" + m.Decimal()
}
