package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/KeyIP-Insight/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", Subsystem: "unit"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, collector MetricsCollector) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector_ValidConfig(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", EnableGoMetrics: true, EnableProcessMetrics: true}, nil)
	require.NoError(t, err)
	assert.Contains(t, scrapeMetrics(t, c), "go_goroutines")
}

func TestNewMetricsCollector_EmptyNamespace(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{}, logging.NewNopLogger())
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestRegisterCounter(t *testing.T) {
	c := newTestCollector(t)
	vec := c.RegisterCounter("events_total", "Events", "kind")
	vec.WithLabelValues("a").Inc()
	vec.WithLabelValues("a").Add(2)

	expected := `
# HELP test_unit_events_total Events
# TYPE test_unit_events_total counter
test_unit_events_total{kind="a"} 3
`
	require.NoError(t, testutil.GatherAndCompare(c.Gatherer(), strings.NewReader(expected), "test_unit_events_total"))
}

func TestRegisterGauge(t *testing.T) {
	c := newTestCollector(t)
	g := c.RegisterGauge("depth", "Depth", "queue").WithLabelValues("q")
	g.Set(5)
	g.Inc()
	g.Dec()
	g.Dec()

	expected := `
# HELP test_unit_depth Depth
# TYPE test_unit_depth gauge
test_unit_depth{queue="q"} 4
`
	require.NoError(t, testutil.GatherAndCompare(c.Gatherer(), strings.NewReader(expected), "test_unit_depth"))
}

func TestRegisterHistogram_DefaultBuckets(t *testing.T) {
	c := newTestCollector(t)
	h := c.RegisterHistogram("latency_seconds", "Latency", nil, "op")
	h.WithLabelValues("read").Observe(0.2)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_latency_seconds_bucket{op="read",le="0.25"} 1`)
	assert.Contains(t, out, `test_unit_latency_seconds_count{op="read"} 1`)
}

func TestRegister_SameNameReturnsExisting(t *testing.T) {
	c := newTestCollector(t)
	a := c.RegisterCounter("dup_total", "Dup", "x")
	b := c.RegisterCounter("dup_total", "Dup", "x")
	a.WithLabelValues("1").Inc()
	b.WithLabelValues("1").Inc()

	assert.Contains(t, scrapeMetrics(t, c), `test_unit_dup_total{x="1"} 2`)
}

func TestRegister_TypeMismatchIsNoop(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test"}, logging.NewLoggerFromCore(core))
	require.NoError(t, err)

	c.RegisterCounter("thing", "Thing")
	g := c.RegisterGauge("thing", "Thing")
	assert.NotPanics(t, func() { g.WithLabelValues().Set(1) })
	assert.Equal(t, 1, logs.FilterMessage("metric type mismatch").Len())
}

func TestRegister_InvalidNameIsNoop(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test"}, logging.NewLoggerFromCore(core))
	require.NoError(t, err)

	vec := c.RegisterCounter("bad-name", "Bad")
	assert.NotPanics(t, func() { vec.WithLabelValues().Inc() })
	assert.Equal(t, 1, logs.FilterMessage("failed to register counter").Len())
}

func TestCollector_ConcurrentRegistration(t *testing.T) {
	c := newTestCollector(t)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RegisterCounter("concurrent_total", "Concurrent").WithLabelValues().Inc()
		}()
	}
	wg.Wait()
	assert.Contains(t, scrapeMetrics(t, c), "test_unit_concurrent_total 10")
}

func TestTimer(t *testing.T) {
	c := newTestCollector(t)
	h := c.RegisterHistogram("timer_seconds", "Timer", []float64{1}).WithLabelValues()
	timer := NewTimer(h)
	time.Sleep(time.Millisecond)
	timer.ObserveDuration()

	assert.Contains(t, scrapeMetrics(t, c), "test_unit_timer_seconds_count 1")
	assert.NotPanics(t, func() { NewTimer(nil).ObserveDuration() })
}

//Personal.AI order the ending
