package http

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
	"go.uber.org/zap"

	"github.com/neomorfeo/franchiseapi/internal/adapter/metrics"
)

// RouterConfig controls the middleware stack built by NewRouter.
type RouterConfig struct {
	ServiceName string
	Version     string
	Logger      *zap.Logger
	// Metrics is optional. When set, requests are counted and /metrics is served.
	Metrics *metrics.Metrics
	// Auth is optional. When nil every route is public.
	Auth *Authenticator
}

// NewRouter builds the chi router with the full middleware stack and
// registers the REST API on it.
func NewRouter(cfg RouterConfig, h Handlers) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if h.Logger == nil {
		h.Logger = logger
	}
	if cfg.Auth == nil {
		logger.Warn("authentication disabled, every endpoint is open")
	}

	router := chi.NewMux()
	router.Use(otelchi.Middleware(cfg.ServiceName, otelchi.WithChiRoutes(router)))
	router.Use(middleware.RequestID)
	router.Use(RequestLogger(logger))
	router.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware)
	}
	if cfg.Auth != nil {
		router.Use(cfg.Auth.Middleware)
	}

	// chi requires every middleware before the first route.
	if cfg.Metrics != nil {
		router.Handle("/metrics", cfg.Metrics.Handler())
	}

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	api := humachi.New(router, huma.DefaultConfig(cfg.ServiceName, cfg.Version))
	Register(api, h)

	return router
}
