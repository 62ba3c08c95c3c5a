package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus instruments for the HTTP surface and the event feed. These are
// exposed on /metrics for scrape-based setups; the OTLP pipeline above is
// for push-based tracing and is independent of these.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corral",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, route, and status code.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "corral",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corral",
			Name:      "events_published_total",
			Help:      "Total inventory events published on the bus.",
		},
		[]string{"name"},
	)

	EventFeedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "corral",
			Name:      "event_feed_clients",
			Help:      "Currently connected websocket event feed clients.",
		},
	)
)

// MetricsHandler returns the /metrics scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
