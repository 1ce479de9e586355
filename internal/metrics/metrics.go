package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backoffice_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	funnelTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_funnel_transitions_total",
		Help: "Lead funnel status transitions by origin and destination",
	}, []string{"from", "to"})

	cepLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_cep_lookups_total",
		Help: "CEP lookups by result (hit, success, not_found, timeout, error)",
	}, []string{"result"})

	leadsCaptured = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_leads_captured_total",
		Help: "Leads created by source",
	}, []string{"source"})
)

// ObserveHTTPRequest records an HTTP request metric.
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveFunnelTransition records a lead status change.
func ObserveFunnelTransition(from, to string) {
	funnelTransitions.WithLabelValues(from, to).Inc()
}

// ObserveCEPLookup records the outcome of a postal-code lookup.
func ObserveCEPLookup(result string) {
	cepLookups.WithLabelValues(result).Inc()
}

// ObserveLeadCaptured records a created lead by source.
func ObserveLeadCaptured(source string) {
	leadsCaptured.WithLabelValues(source).Inc()
}
