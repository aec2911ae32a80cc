// Package metrics holds the gauges published on the scrape endpoint. Gauges are
// registered once while the exporter is built, after which the registry is
// sealed and only values change.
package metrics

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

var (
	ErrAlreadyRegistered = errors.New("metric already registered")
	ErrSealed            = errors.New("registry is sealed")
)

var textFormat = expfmt.NewFormat(expfmt.TypeTextPlain)

type Registry struct {
	mu     sync.RWMutex
	reg    *prometheus.Registry
	names  []string
	gauges map[string]prometheus.Gauge
	sealed bool
}

func NewRegistry() *Registry {
	return &Registry{
		reg:    prometheus.NewRegistry(),
		gauges: make(map[string]prometheus.Gauge),
	}
}

// Register creates a gauge and adds it to the registry.
func (r *Registry) Register(name, help string) (prometheus.Gauge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return nil, fmt.Errorf("register %s: %w", name, ErrSealed)
	}
	if _, ok := r.gauges[name]; ok {
		return nil, fmt.Errorf("register %s: %w", name, ErrAlreadyRegistered)
	}

	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	if err := r.reg.Register(g); err != nil {
		return nil, fmt.Errorf("register %s: %w", name, err)
	}

	r.names = append(r.names, name)
	r.gauges[name] = g
	return g, nil
}

// Seal rejects any further registration.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Set overwrites the value of a registered gauge.
func (r *Registry) Set(g prometheus.Gauge, value float64) {
	g.Set(value)
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.names...)
}

// ContentType is the media type of Render's output.
func (r *Registry) ContentType() string {
	return string(textFormat)
}

// Render encodes the current value of every gauge in the text exposition
// format, metric families sorted by name.
func (r *Registry) Render() (string, error) {
	families, err := r.reg.Gather()
	if err != nil {
		return "", fmt.Errorf("failed to gather metrics: %w", err)
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, textFormat)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return "", fmt.Errorf("failed to encode %s: %w", mf.GetName(), err)
		}
	}
	if closer, ok := enc.(expfmt.Closer); ok {
		if err := closer.Close(); err != nil {
			return "", fmt.Errorf("failed to finish encoding: %w", err)
		}
	}

	return buf.String(), nil
}
