package prometheus

import (
	"path"
	"strconv"
	"time"
)

// InsightMetrics holds the application metrics.
type InsightMetrics struct {
	// Search resolution
	SearchesTotal       CounterVec
	SearchDuration      HistogramVec
	RemoteFetchDuration HistogramVec

	// HTTP surface
	HTTPRequestsTotal     CounterVec
	HTTPRequestDuration   HistogramVec
	SessionConflictsTotal CounterVec

	// System health
	HealthCheckStatus GaugeVec
}

// Default Buckets
var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultRemoteDurationBuckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}
)

// NewInsightMetrics registers all metrics on collector.
func NewInsightMetrics(collector MetricsCollector) *InsightMetrics {
	m := &InsightMetrics{}

	m.SearchesTotal = collector.RegisterCounter("insight_searches_total", "Resolved searches by query kind, outcome and reason", "kind", "outcome", "reason")
	m.SearchDuration = collector.RegisterHistogram("insight_search_duration_seconds", "End-to-end search resolution time", DefaultRemoteDurationBuckets, "kind", "outcome")
	m.RemoteFetchDuration = collector.RegisterHistogram("insight_remote_fetch_duration_seconds", "Patent search service request time", DefaultRemoteDurationBuckets, "kind", "status")

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "route", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "route")
	m.SessionConflictsTotal = collector.RegisterCounter("insight_session_conflicts_total", "Searches rejected because the session had one in flight")

	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")

	return m
}

// RecordSearch counts one resolved search and its latency.
func (m *InsightMetrics) RecordSearch(kind, outcome, reason string, elapsed time.Duration) {
	if reason == "" {
		reason = "none"
	}
	m.SearchesTotal.WithLabelValues(kind, outcome, reason).Inc()
	m.SearchDuration.WithLabelValues(kind, outcome).Observe(elapsed.Seconds())
}

// ObserveFetch records one request to the patent search service. endpoint is
// the service path; its last segment is the query kind. A zero status means
// no response was received.
func (m *InsightMetrics) ObserveFetch(endpoint string, status int, elapsed time.Duration) {
	label := "none"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.RemoteFetchDuration.WithLabelValues(path.Base(endpoint), label).Observe(elapsed.Seconds())
}

// RecordHTTPRequest records a served request. route is the matched pattern,
// not the raw path.
func (m *InsightMetrics) RecordHTTPRequest(method, route string, statusCode int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordSessionConflict counts a search refused by the session guard.
func (m *InsightMetrics) RecordSessionConflict() {
	m.SessionConflictsTotal.WithLabelValues().Inc()
}

// SetHealth publishes a component's last health check result.
func (m *InsightMetrics) SetHealth(component string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}

//Personal.AI order the ending
