// Package http assembles the normalization API: chi routes, middleware and
// the server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/patent-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent-normalizer/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/patent-normalizer/internal/interfaces/http/handlers"
	"github.com/turtacn/patent-normalizer/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies of the
// route tree.  Nil handlers leave their routes unregistered.
type RouterConfig struct {
	NormalizeHandler *handlers.NormalizeHandler
	HealthHandler    *handlers.HealthHandler

	Logger           logging.Logger
	LoggingConfig    *middleware.LoggingConfig
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string

	// CORS is applied when non-nil.
	CORS *middleware.CORSConfig
	// RateLimiter throttles the /api/v1 routes when non-nil.
	RateLimiter middleware.RateLimiter
}

// NewRouter constructs the complete HTTP route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// --- Global middleware (applied to every request) ---
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if cfg.Logger != nil {
		lc := middleware.DefaultLoggingConfig()
		if cfg.LoggingConfig != nil {
			lc = *cfg.LoggingConfig
		}
		r.Use(middleware.RequestLogging(cfg.Logger.Named("http"), lc))
	}
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(chimw.Recoverer)
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}

	// --- Probes and metrics ---
	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsCollector.Handler())
	}

	r.NotFound(handlers.RouteNotFound(cfg.Logger))

	// --- API v1 ---
	r.Route("/api/v1", func(api chi.Router) {
		if cfg.RateLimiter != nil {
			api.Use(middleware.RateLimit(cfg.RateLimiter, middleware.DefaultRateLimitConfig()))
		}
		registerNormalizeRoutes(api, cfg.NormalizeHandler)
	})

	return r
}

// registerNormalizeRoutes mounts normalization, claims and schema endpoints.
func registerNormalizeRoutes(r chi.Router, h *handlers.NormalizeHandler) {
	if h == nil {
		return
	}
	r.Get("/schemas", h.ListSchemas)
	r.Route("/normalize", func(nr chi.Router) {
		nr.Post("/", h.Normalize)
		nr.Post("/{schema}", h.Normalize)
	})
	r.Post("/claims/parse", h.ParseClaims)
}

//Personal.AI order the ending
