// Package observability exposes the exporter's own metrics on a registry that
// is kept apart from the weather gauges.
package observability

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "weather_crawler"

const (
	ResultSuccess = "success"
	ResultError   = "error"
)

type Telemetry struct {
	registry *prometheus.Registry
	scrapes  *prometheus.CounterVec
	upstream *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// New creates a registry with the Go and process collectors plus the
// exporter's counters.
func New() *Telemetry {
	t := &Telemetry{
		registry: prometheus.NewRegistry(),
		scrapes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scrapes_total",
				Help:      "Total weather scrapes by result.",
			},
			[]string{"result"},
		),
		upstream: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Duration of requests to the geocoding and forecast APIs.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"upstream", "code", "method"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total requests by route, method and status code.",
			},
			[]string{"route", "method", "code"},
		),
	}

	t.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		t.scrapes,
		t.upstream,
		t.requests,
	)
	return t
}

// ObserveScrape counts one scrape; a nil error counts as success.
func (t *Telemetry) ObserveScrape(err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	t.scrapes.WithLabelValues(result).Inc()
}

// InstrumentTransport wraps next so every round trip is timed under the given
// upstream label. A nil next uses http.DefaultTransport.
func (t *Telemetry) InstrumentTransport(upstream string, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperDuration(
		t.upstream.MustCurryWith(prometheus.Labels{"upstream": upstream}),
		next,
	)
}

// Middleware counts requests per matched route
func (t *Telemetry) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		t.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Handler serves the telemetry registry in any format promhttp negotiates.
func (t *Telemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}
