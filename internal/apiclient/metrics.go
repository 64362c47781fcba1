package apiclient

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts outgoing backend calls per resource.
type Metrics struct {
	reqTotal   *prometheus.CounterVec
	reqLatency *prometheus.HistogramVec
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	reqTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_api_requests_total",
			Help: "Total backend API requests issued by the client",
		},
		[]string{"method", "resource", "status"},
	)

	reqLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campus_api_request_duration_seconds",
			Help:    "Backend API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "resource", "status"},
	)

	registerer.MustRegister(reqTotal, reqLatency)

	return &Metrics{reqTotal: reqTotal, reqLatency: reqLatency}
}

func (m *Metrics) observe(method, path string, statusCode int, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	resource := resourceLabel(path)
	m.reqTotal.WithLabelValues(method, resource, status).Inc()
	m.reqLatency.WithLabelValues(method, resource, status).Observe(elapsed.Seconds())
}

// resourceLabel keeps label cardinality bounded: "/api/facilities/12" -> "facilities".
func resourceLabel(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	trimmed = strings.TrimPrefix(trimmed, "api/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	if trimmed == "" {
		return "root"
	}
	return trimmed
}
