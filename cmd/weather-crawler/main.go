package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/loenard97/weather-crawler/internal/buildinfo"
	"github.com/loenard97/weather-crawler/internal/config"
	"github.com/loenard97/weather-crawler/internal/exporter"
	"github.com/loenard97/weather-crawler/internal/location"
	"github.com/loenard97/weather-crawler/internal/observability"
	"github.com/loenard97/weather-crawler/internal/providers/geocode"
	"github.com/loenard97/weather-crawler/internal/providers/openmeteo"
	"github.com/loenard97/weather-crawler/internal/weather"
)

func main() {
	flags, place, done, err := parseArgs(os.Args[1:], os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
	if done {
		return
	}

	// Load configuration
	cfg, err := config.Load(flags)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := cfg.NewLogger()
	slog.SetDefault(logger) // Set as default logger for the application

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logger, place)
	stop()
	if err != nil {
		logger.Error("weather-crawler failed", "error", err)
		os.Exit(1)
	}
}

// run resolves place once, then serves the exporter until ctx is done.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, place string) error {
	app, err := bootstrap(ctx, cfg, logger, place)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}

// bootstrap wires the upstream clients, resolves place and builds the app.
// No server is started.
func bootstrap(ctx context.Context, cfg *config.Config, logger *slog.Logger, place string) (*App, error) {
	telemetry := observability.New()

	userAgent := cfg.HTTP.UserAgent
	if userAgent == "" {
		userAgent = buildinfo.UserAgent(appName)
	}

	geocodeClient := geocode.NewClient(newHTTPClient(cfg, telemetry, "geocode"), geocode.Options{
		BaseURL:   cfg.GeocodingBaseURL(),
		APIKey:    cfg.Geocoding.APIKey,
		Format:    geocodeFormat(cfg.Geocoding.Provider),
		UserAgent: userAgent,
	})
	locationService := location.NewLocationService(geocodeClient, logger)

	coords, err := locationService.Resolve(ctx, place)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", place, err)
	}

	forecastClient := openmeteo.NewForecastClient(newHTTPClient(cfg, telemetry, "forecast"), openmeteo.Options{
		BaseURL:   cfg.Forecast.BaseURL,
		Models:    cfg.Forecast.Models,
		UserAgent: userAgent,
	})
	weatherService := weather.NewWeatherService(forecastClient, logger)

	exp, err := exporter.New(coords, weatherService, logger, exporter.WithObserver(telemetry))
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	return NewApp(cfg, logger, exp, telemetry), nil
}

// newHTTPClient builds an upstream client whose requests are timed under
// the given upstream label.
func newHTTPClient(cfg *config.Config, telemetry *observability.Telemetry, upstream string) *http.Client {
	return &http.Client{
		Timeout:   cfg.HTTP.Timeout,
		Transport: telemetry.InstrumentTransport(upstream, nil),
	}
}

func geocodeFormat(provider string) string {
	if provider == config.ProviderNominatim {
		return "json"
	}
	return ""
}
