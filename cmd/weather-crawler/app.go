package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humagin"
	"github.com/gin-gonic/gin"

	"github.com/loenard97/weather-crawler/internal/buildinfo"
	"github.com/loenard97/weather-crawler/internal/config"
	"github.com/loenard97/weather-crawler/internal/observability"
)

// Scraper produces one exposition text per call
type Scraper interface {
	Scrape(ctx context.Context) (string, error)
	ContentType() string
}

// App encapsulates application dependencies
type App struct {
	router    *gin.Engine
	api       huma.API
	logger    *slog.Logger
	scraper   Scraper
	telemetry *observability.Telemetry
	cfg       *config.Config
}

// NewApp creates a new application with injected dependencies. telemetry may
// be nil.
func NewApp(cfg *config.Config, logger *slog.Logger, scraper Scraper, telemetry *observability.Telemetry) *App {
	// Set Gin mode from configuration
	gin.SetMode(cfg.Server.GinMode)

	router := gin.New()
	router.Use(gin.Recovery())
	if telemetry != nil {
		router.Use(telemetry.Middleware())
	}
	router.Use(requestLogger(logger))

	version := buildinfo.Version
	if version == "" {
		version = "dev"
	}
	humaConfig := huma.DefaultConfig("weather-crawler", version)
	humaConfig.Info.Description = "Prometheus exporter for the current weather at one place"

	app := &App{
		router:    router,
		api:       humagin.New(router, humaConfig),
		logger:    logger,
		scraper:   scraper,
		telemetry: telemetry,
		cfg:       cfg,
	}

	app.registerRoutes()

	return app
}

// Handler returns the root HTTP handler
func (app *App) Handler() http.Handler {
	return app.router
}

// Run listens on the configured address and serves until ctx is done.
func (app *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", app.cfg.GetServerAddr())
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return app.Serve(ctx, ln)
}

// Serve handles requests on ln until ctx is done, then shuts down gracefully.
func (app *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("starting server",
			"addr", ln.Addr().String(),
			"metrics_path", app.cfg.Server.MetricsPath,
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.cfg.Server.ShutdownTimeout)
	defer cancel()

	app.logger.Info("shutting down", "timeout", app.cfg.Server.ShutdownTimeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// requestLogger replaces gin's default logger with slog
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}
