package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"comanda/internal/cache"
	applog "comanda/internal/log"
	"comanda/internal/search"
	"comanda/internal/store"
	appweb "comanda/web"
)

// Store is everything the web host reads from and writes to.
type Store interface {
	store.ProductWriter
	store.ProductReader
	store.ComboReader
	store.ComandaReader
	store.CheckoutWriter
	store.CheckoutReader
	store.SangriaWriter
	store.SangriaReader
}

type Server struct {
	http.Server
	templates   *template.Template
	store       Store
	logger      *applog.Logger
	slogger     *applog.StructuredLogger
	rateLimiter *rateLimiter
	started     time.Time

	// Filtered comanda lists keyed by search.Query.Key.
	searchCache cache.Cache[search.Result]

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
// A nil searchCache disables result caching.
func NewServer(addr string, st Store, logger *applog.Logger, searchCache cache.Cache[search.Result]) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:           addr,
			Handler:        applog.Middleware(logger)(mux),
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 16,
		},
		store:       st,
		logger:      logger,
		slogger:     applog.NewStructuredLogger(logger),
		rateLimiter: newRateLimiter(60, time.Minute),
		started:     time.Now(),
		searchCache: searchCache,
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/", s.withSecurityHeaders(s.handleDashboard))
	mux.HandleFunc("/ui/comandas", s.withSecurityHeaders(s.handleComandas))
	mux.HandleFunc("/products", s.withSecurityHeaders(s.handleProducts))
	mux.HandleFunc("/products/new", s.withSecurityHeaders(s.handleNewProduct))
	mux.HandleFunc("/combos", s.withSecurityHeaders(s.handleCombos))
	mux.HandleFunc("/comandas/{number}/checkout", s.withSecurityHeaders(s.handleCheckout))
	mux.HandleFunc("/sangrias", s.withSecurityHeaders(s.handleSangrias))

	return s
}

// Cleaners returns the server-owned state that should be swept periodically.
func (s *Server) Cleaners() []cache.Cleaner {
	out := []cache.Cleaner{s.rateLimiter}
	if c, ok := s.searchCache.(cache.Cleaner); ok {
		out = append(out, c)
	}
	return out
}

// Shutdown gracefully shuts down the server; repeated calls are no-ops.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// withSecurityHeaders adds security headers, rate limiting, and request logging to responses
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ip := clientIP(r)

		ctx := applog.WithRequestID(r.Context(), generateRequestID())
		r = r.WithContext(ctx)

		// POST is the only write path.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(ip) {
			applog.FromContext(ctx).WarnContext(ctx, "Rate limit exceeded", applog.FieldClientIP, ip, applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Muitas requisições. Tente novamente em instantes.", http.StatusTooManyRequests)
			s.slogger.LogHTTPEnd(ctx, r, http.StatusTooManyRequests, time.Since(start).Milliseconds(), ip)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.slogger.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), ip)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports whether templates are loaded and the store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusServiceUnavailable)
		return
	}
	if s.store == nil {
		http.Error(w, "store not configured", http.StatusServiceUnavailable)
		return
	}
	if _, err := s.store.ListProducts(ctx); err != nil {
		s.slogger.LogError(ctx, "Readiness check failed", err, applog.ComponentStorage, applog.OpList, nil)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// render executes a named template, answering 500 when templates are missing.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.slogger.LogError(r.Context(), "Template execution failed", err, applog.ComponentHTTP, applog.OpRender,
			applog.NewFields().WithRequestID(applog.RequestID(r.Context())))
		http.Error(w, "erro ao renderizar a página", http.StatusInternalServerError)
	}
}
