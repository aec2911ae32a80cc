// Package exporter ties the resolved coordinates, the weather service and the
// gauge registry together. One Exporter is built at startup and shared by
// every scrape.
package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/loenard97/weather-crawler/internal/metrics"
	"github.com/loenard97/weather-crawler/internal/types"
	"github.com/loenard97/weather-crawler/internal/weather"
)

// ScrapeObserver is notified once per scrape with its outcome.
type ScrapeObserver interface {
	ObserveScrape(err error)
}

type fieldGauge struct {
	field weather.Field
	gauge prometheus.Gauge
}

// gaugeSet holds one gauge per weather field in field order.
type gaugeSet []fieldGauge

type Option func(*Exporter)

// WithObserver reports every scrape outcome to o.
func WithObserver(o ScrapeObserver) Option {
	return func(e *Exporter) {
		e.observer = o
	}
}

type Exporter struct {
	coords   types.Coordinates
	weather  weather.Service
	registry *metrics.Registry
	gauges   gaugeSet
	observer ScrapeObserver
	logger   *slog.Logger

	// mu makes set-all + render atomic so a response reflects one fetch
	mu sync.Mutex
}

// New registers a gauge for every weather field and seals the registry.
func New(coords types.Coordinates, svc weather.Service, logger *slog.Logger, opts ...Option) (*Exporter, error) {
	if coords.IsZero() {
		return nil, fmt.Errorf("coordinates are not set")
	}

	e := &Exporter{
		coords:   coords,
		weather:  svc,
		registry: metrics.NewRegistry(),
		gauges:   make(gaugeSet, 0, len(weather.Fields)),
		logger:   logger.With("component", "exporter"),
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, f := range weather.Fields {
		g, err := e.registry.Register(f.Metric, f.Help)
		if err != nil {
			return nil, fmt.Errorf("failed to register gauge for %s: %w", f.Variable, err)
		}
		e.gauges = append(e.gauges, fieldGauge{field: f, gauge: g})
	}
	e.registry.Seal()

	e.logger.Info("exporter ready",
		"latitude", coords.Latitude,
		"longitude", coords.Longitude,
		"gauges", len(e.gauges),
	)
	e.logger.Debug("registered gauges", "names", e.registry.Names())

	return e, nil
}

// Scrape fetches the current weather, updates every gauge and renders them.
// On error no gauge is touched.
func (e *Exporter) Scrape(ctx context.Context) (string, error) {
	text, err := e.scrape(ctx)
	if e.observer != nil {
		e.observer.ObserveScrape(err)
	}
	return text, err
}

func (e *Exporter) scrape(ctx context.Context) (string, error) {
	reading, err := e.weather.Current(ctx, e.coords)
	if err != nil {
		return "", fmt.Errorf("failed to fetch current weather: %w", err)
	}

	values := make([]float64, len(e.gauges))
	for i, fg := range e.gauges {
		v, ok := reading.Value(fg.field)
		if !ok {
			return "", fmt.Errorf("%s: %w", fg.field.Variable, weather.ErrMissingField)
		}
		values[i] = v
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i, fg := range e.gauges {
		e.registry.Set(fg.gauge, values[i])
	}

	text, err := e.registry.Render()
	if err != nil {
		return "", fmt.Errorf("failed to render metrics: %w", err)
	}
	return text, nil
}

func (e *Exporter) Coordinates() types.Coordinates {
	return e.coords
}

// ContentType is the media type of Scrape's output.
func (e *Exporter) ContentType() string {
	return e.registry.ContentType()
}
