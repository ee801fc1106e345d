package http

import (
	"context"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"momodash/internal/log"
	"momodash/internal/metrics"
	"momodash/internal/middleware/ratelimit"
	"momodash/internal/middleware/security"
	"momodash/internal/middleware/trace"
	"momodash/internal/session"
	appweb "momodash/web"
)

// BreakerReporter exposes the backend circuit state for readiness checks.
type BreakerReporter interface {
	BreakerState() string
}

type Config struct {
	Addr       string
	Sessions   *session.Store
	SessionTTL time.Duration
	API        BreakerReporter
	// Metrics, when set, is served on /metrics.
	Metrics   *metrics.Collector
	RateLimit ratelimit.Config
	// TrustedProxies extend the networks whose forwarded headers are believed.
	TrustedProxies []string
	Logger         *log.Logger
}

type Server struct {
	http.Server
	sessions   *session.Store
	sessionTTL time.Duration
	api        BreakerReporter
	metrics    *metrics.Collector
	limiter    *ratelimit.Limiter
	detector   *security.Detector
	trace      *trace.Middleware
	logger     *log.Logger
	started    time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}

	detector := security.NewDetector(logger)
	for _, cidr := range cfg.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}
	s := &Server{
		sessions:   cfg.Sessions,
		sessionTTL: cfg.SessionTTL,
		api:        cfg.API,
		metrics:    cfg.Metrics,
		limiter:    ratelimit.NewLimiter(cfg.RateLimit, logger),
		detector:   detector,
		trace:      trace.NewMiddleware(logger, detector.ExtractClientIP),
		logger:     logger.WithComponent(log.ComponentHTTP),
		started:    time.Now(),
	}
	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.trace.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(s.detector.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))

		if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
			static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
			r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", static)
		} else {
			s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
		}

		limit := s.limiter.Middleware(s.detector.ExtractClientIP, nil)
		r.With(security.NoStore, limit).Get("/", s.handleIndex)

		r.Route("/ui", func(r chi.Router) {
			r.Use(security.NoStore)
			r.Use(limit)

			r.Get("/overview", s.ui(log.OpOverview, s.overview))
			r.Get("/transactions", s.ui(log.OpTransactions, s.transactions))
			r.Get("/search", s.ui(log.OpSearch, s.search))
			r.Get("/filter/category", s.ui(log.OpTransactions, s.categoryFilter))
			r.Get("/filter/dates", s.ui(log.OpTransactions, s.dateFilter))
			r.Post("/page/prev", s.ui(log.OpTransactions, s.prevPage))
			r.Post("/page/next", s.ui(log.OpTransactions, s.nextPage))
			r.Post("/nav/{section}", s.ui(log.OpNavigate, s.navigate))
		})
	})

	return r
}

// Shutdown gracefully shuts down the server and the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
