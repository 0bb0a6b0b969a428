package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"retailpulse/internal/middleware"
)

// RouterConfig wires the handlers and middleware of the report server
type RouterConfig struct {
	Reports     *ReportHandler
	Health      *HealthHandler
	Metrics     http.Handler // served at /metrics when set
	OTel        *middleware.OTelMiddleware
	RateLimiter *middleware.RateLimiter
	Logger      *slog.Logger
}

// NewRouter builds the chi router
func NewRouter(cfg RouterConfig) chi.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.SecurityHeaders)
	if cfg.OTel != nil {
		r.Use(cfg.OTel.Handler)
	}

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(cfg.RateLimiter.Handler)
		if cfg.Health != nil {
			r.Get("/health", cfg.Health.HealthCheck)
		}
		if cfg.Reports != nil {
			r.Mount("/report", cfg.Reports.Routes())
		}
	})
	return r
}
