package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/hpcatalog/catalogadmin/internal/config"
	"github.com/hpcatalog/catalogadmin/internal/forward"
	"github.com/hpcatalog/catalogadmin/internal/handler"
	"github.com/hpcatalog/catalogadmin/pkg/health"
	"github.com/hpcatalog/catalogadmin/pkg/tracing"
)

// App wires together all dependencies and runs the BFF.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing the upstream
// forwarders and HTTP router. The BFF holds no database or broker.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "bff",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	authUp := forward.NewUpstream("auth", forward.AuthBaseURLEnv, logger)
	catalogUp := forward.NewUpstream("catalog", forward.CatalogBaseURLEnv, logger)

	// Readiness reflects the same per-request resolution the forwarders use:
	// a base URL that is unset or unreachable makes the BFF not ready.
	healthHandler := health.NewHandler()
	healthHandler.Register("auth-upstream", upstreamCheck(forward.AuthBaseURLEnv))
	healthHandler.Register("catalog-upstream", upstreamCheck(forward.CatalogBaseURLEnv))

	router := handler.NewRouter(cfg, authUp, catalogUp, healthHandler, logger)

	// No WriteTimeout: forwarded bulk imports may stream for a long time.
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// upstreamCheck returns a health checker that resolves the base URL from the
// environment and dials its host.
func upstreamCheck(envVar string) health.Checker {
	return func(ctx context.Context) error {
		base := os.Getenv(envVar)
		if base == "" {
			return fmt.Errorf("%s is not set", envVar)
		}
		u, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("parse %s: %w", envVar, err)
		}
		host := u.Host
		if u.Port() == "" {
			port := "80"
			if u.Scheme == "https" {
				port = "443"
			}
			host = net.JoinHostPort(u.Hostname(), port)
		}
		d := net.Dialer{Timeout: 2 * time.Second}
		conn, err := d.DialContext(ctx, "tcp", host)
		if err != nil {
			return fmt.Errorf("upstream unreachable: %w", err)
		}
		_ = conn.Close()
		return nil
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
