package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hpcatalog/catalogadmin/internal/config"
	"github.com/hpcatalog/catalogadmin/internal/forward"
	bffmiddleware "github.com/hpcatalog/catalogadmin/internal/middleware"
	"github.com/hpcatalog/catalogadmin/pkg/health"
	pkgmiddleware "github.com/hpcatalog/catalogadmin/pkg/middleware"
)

// NewRouter creates a chi router with the global middleware stack, health
// endpoints, and the forwarding routes onto the auth and catalog upstreams.
//
// The stack deliberately omits response compression and a request timeout:
// forwarded responses must reach the caller byte-for-byte, and a slow bulk
// import must not be cut off mid-flight.
func NewRouter(cfg *config.Config, authUp, catalogUp *forward.Upstream, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(pkgmiddleware.CORS(pkgmiddleware.CORSConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Correlation-ID"},
		MaxAge:         cfg.CORSMaxAge,
		Environment:    cfg.Environment,
	}))
	r.Use(bffmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
	r.Use(pkgmiddleware.Recovery(logger))
	r.Use(pkgmiddleware.RequestLogging(logger))
	r.Use(pkgmiddleware.PrometheusMetrics("bff"))
	r.Use(pkgmiddleware.Tracing("bff"))
	r.Use(pkgmiddleware.RequestLogger(logger))

	// Health check endpoints (no auth required).
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/bff", func(r chi.Router) {
		if cfg.VerifyJWT {
			r.Use(bffmiddleware.JWTAuth(cfg.JWTSecret, logger))
		}

		// Auth upstream.
		r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			authUp.Forward(w, r, "Auth", "login")
		})
		r.Post("/auth/register", func(w http.ResponseWriter, r *http.Request) {
			authUp.Forward(w, r, "Auth", "register")
		})
		r.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
			authUp.Forward(w, r, "Auth", "me")
		})

		// Catalog upstream: the remainder of the path is forwarded as-is, so
		// new catalog endpoints need no BFF change.
		r.HandleFunc("/catalog/*", func(w http.ResponseWriter, r *http.Request) {
			rest := chi.URLParam(r, "*")
			catalogUp.Forward(w, r, strings.Split(rest, "/")...)
		})
	})

	return r
}
