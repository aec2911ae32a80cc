package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loenard97/weather-crawler/internal/config"
	"github.com/loenard97/weather-crawler/internal/exporter"
	"github.com/loenard97/weather-crawler/internal/location"
	"github.com/loenard97/weather-crawler/internal/observability"
	"github.com/loenard97/weather-crawler/internal/providers/openmeteo"
	"github.com/loenard97/weather-crawler/internal/types"
	"github.com/loenard97/weather-crawler/internal/weather"
)

const (
	geocodeFixture  = "../../internal/providers/geocode/testdata/search_kaiserslautern.json"
	forecastFixture = "../../internal/providers/openmeteo/testdata/current_kaiserslautern.json"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            9090,
			GinMode:         gin.TestMode,
			MetricsPath:     "/metrics",
			TelemetryPath:   "/internal/metrics",
			ShutdownTimeout: time.Second,
		},
		Log:       config.LogConfig{Level: "info", Format: "text"},
		Geocoding: config.GeocodingConfig{Provider: config.ProviderMapsCo},
		Forecast:  config.ForecastConfig{BaseURL: "https://api.open-meteo.com/v1/forecast", Models: "best_match"},
	}
}

type fakeScraper struct {
	text  string
	err   error
	calls atomic.Int32
}

func (f *fakeScraper) Scrape(ctx context.Context) (string, error) {
	f.calls.Add(1)
	return f.text, f.err
}

func (f *fakeScraper) ContentType() string {
	return "text/plain; version=0.0.4; charset=utf-8"
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestApp_Ping(t *testing.T) {
	app := NewApp(testConfig(), discardLogger(), &fakeScraper{}, nil)

	rec := get(t, app.Handler(), "/ping")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "pong", body.Message)
}

func TestApp_OpenAPI(t *testing.T) {
	app := NewApp(testConfig(), discardLogger(), &fakeScraper{}, nil)

	rec := get(t, app.Handler(), "/openapi.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/ping")
}

func TestApp_Metrics(t *testing.T) {
	const text = "# HELP TEMPERATURE_2M temperature_2m (°C)\n# TYPE TEMPERATURE_2M gauge\nTEMPERATURE_2M 14.2\n"

	tests := []struct {
		name        string
		scraper     *fakeScraper
		wantStatus  int
		wantBody    string
		contentType string
	}{
		{
			name:        "successful scrape",
			scraper:     &fakeScraper{text: text},
			wantStatus:  http.StatusOK,
			wantBody:    text,
			contentType: "text/plain; version=0.0.4; charset=utf-8",
		},
		{
			name:       "failed scrape",
			scraper:    &fakeScraper{err: errors.New("fetch returned status 502: bad gateway")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := NewApp(testConfig(), discardLogger(), tt.scraper, nil)

			rec := get(t, app.Handler(), "/metrics")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
			if tt.contentType != "" {
				assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			}
			assert.Equal(t, int32(1), tt.scraper.calls.Load())
		})
	}
}

func TestApp_MetricsPath(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MetricsPath = "/weather"
	app := NewApp(cfg, discardLogger(), &fakeScraper{text: "RAIN 0\n"}, nil)

	assert.Equal(t, http.StatusOK, get(t, app.Handler(), "/weather").Code)
	assert.Equal(t, http.StatusNotFound, get(t, app.Handler(), "/metrics").Code)
}

func TestApp_Telemetry(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		app := NewApp(testConfig(), discardLogger(), &fakeScraper{}, observability.New())
		get(t, app.Handler(), "/ping")

		rec := get(t, app.Handler(), "/internal/metrics")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `weather_crawler_http_requests_total{code="200",method="GET",route="/ping"} 1`)
	})

	t.Run("disabled by empty path", func(t *testing.T) {
		cfg := testConfig()
		cfg.Server.TelemetryPath = ""
		app := NewApp(cfg, discardLogger(), &fakeScraper{}, observability.New())

		assert.Equal(t, http.StatusNotFound, get(t, app.Handler(), "/internal/metrics").Code)
	})

	t.Run("no telemetry", func(t *testing.T) {
		app := NewApp(testConfig(), discardLogger(), &fakeScraper{}, nil)

		assert.Equal(t, http.StatusNotFound, get(t, app.Handler(), "/internal/metrics").Code)
	})
}

func TestApp_Serve(t *testing.T) {
	app := NewApp(testConfig(), discardLogger(), &fakeScraper{text: "RAIN 0\n"}, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	resp, err := http.Get(fmt.Sprintf("http://%s/metrics", ln.Addr()))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "RAIN 0\n", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestApp_RunListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testConfig()
	cfg.Server.Port = ln.Addr().(*net.TCPAddr).Port
	app := NewApp(cfg, discardLogger(), &fakeScraper{}, nil)

	err = app.Run(context.Background())
	assert.ErrorContains(t, err, "failed to listen")
}

// upstreams starts fake geocoding and forecast services serving the
// recorded fixtures.
func upstreams(t *testing.T, geocodeBody []byte) (geocodeURL, forecastURL string, forecastCalls *atomic.Int32) {
	t.Helper()

	forecastData, err := os.ReadFile(forecastFixture)
	require.NoError(t, err)

	geocodeSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Kaiserslautern", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(geocodeBody)
	}))
	t.Cleanup(geocodeSrv.Close)

	forecastCalls = &atomic.Int32{}
	forecastSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		forecastCalls.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "49.4432174", q.Get("latitude"))
		assert.Equal(t, "7.7689951", q.Get("longitude"))
		assert.Equal(t, "unixtime", q.Get("timeformat"))
		assert.Contains(t, q.Get("current"), "temperature_2m")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(forecastData)
	}))
	t.Cleanup(forecastSrv.Close)

	return geocodeSrv.URL, forecastSrv.URL, forecastCalls
}

func TestBootstrap(t *testing.T) {
	geocodeData, err := os.ReadFile(geocodeFixture)
	require.NoError(t, err)
	geocodeURL, forecastURL, forecastCalls := upstreams(t, geocodeData)

	cfg := testConfig()
	cfg.Geocoding.BaseURL = geocodeURL
	cfg.Forecast.BaseURL = forecastURL

	app, err := bootstrap(context.Background(), cfg, discardLogger(), "Kaiserslautern")
	require.NoError(t, err)
	assert.Equal(t, int32(0), forecastCalls.Load())

	rec := get(t, app.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "\nTEMPERATURE_2M 14.2\n")
	assert.Contains(t, rec.Body.String(), "\nWINDSPEED_10M 8.3\n")
	assert.Equal(t, int32(1), forecastCalls.Load())

	telemetry := get(t, app.Handler(), "/internal/metrics").Body.String()
	assert.Contains(t, telemetry, `weather_crawler_scrapes_total{result="success"} 1`)
	assert.Contains(t, telemetry, `upstream="geocode"`)
	assert.Contains(t, telemetry, `upstream="forecast"`)
}

func TestBootstrap_NoCandidates(t *testing.T) {
	geocodeURL, forecastURL, forecastCalls := upstreams(t, []byte("[]"))

	cfg := testConfig()
	cfg.Geocoding.BaseURL = geocodeURL
	cfg.Forecast.BaseURL = forecastURL

	app, err := bootstrap(context.Background(), cfg, discardLogger(), "Kaiserslautern")
	assert.Nil(t, app)
	assert.ErrorIs(t, err, location.ErrNoCandidates)
	assert.Equal(t, int32(0), forecastCalls.Load())
}

func TestGeocodeFormat(t *testing.T) {
	assert.Equal(t, "json", geocodeFormat(config.ProviderNominatim))
	assert.Equal(t, "", geocodeFormat(config.ProviderMapsCo))
}

type failingProvider struct{}

func (failingProvider) GetCurrent(ctx context.Context, latitude, longitude string, variables []string) (*openmeteo.CurrentAPIResponse, error) {
	return nil, errors.New("fetch returned status 503: service unavailable")
}

func TestApp_MetricsFailureLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	svc := weather.NewWeatherServiceWithProvider(failingProvider{}, logger)
	exp, err := exporter.New(types.NewCoordinates("49.4432174", "7.7689951"), svc, logger)
	require.NoError(t, err)
	app := NewApp(testConfig(), logger, exp, nil)

	rec := get(t, app.Handler(), "/metrics")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, 1, strings.Count(buf.String(), "level=ERROR"), buf.String())
	assert.Contains(t, buf.String(), "service unavailable")
}
