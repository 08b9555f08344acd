package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Insight/internal/config"
	"github.com/turtacn/KeyIP-Insight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Insight/internal/interfaces/http/handlers"
)

func newTestApp(t *testing.T, mutate func(*config.Config)) *app {
	t.Helper()
	cfg := config.NewDefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	a, err := newApp(context.Background(), cfg, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(a.close)
	return a
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestApp_SearchWithoutCredentialsIsRecorded(t *testing.T) {
	a := newTestApp(t, nil)

	rec := do(t, a.handler, http.MethodPost, "/api/v1/insights/search", `{"query":"Tesla Inc"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fallback", rec.Header().Get(handlers.HeaderOutcome))
	assert.Equal(t, "not_configured", rec.Header().Get(handlers.HeaderReason))

	metrics := do(t, a.handler, http.MethodGet, "/metrics", "").Body.String()
	assert.Contains(t, metrics, `keyip_insight_searches_total{kind="company",outcome="fallback",reason="not_configured"} 1`)
	assert.Contains(t, metrics, `keyip_http_requests_total{method="POST",route="/api/v1/insights/search",status_code="200"} 1`)
}

func TestApp_MetricsDisabled(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) { c.Metrics.Enabled = false })

	assert.Equal(t, http.StatusNotFound, do(t, a.handler, http.MethodGet, "/metrics", "").Code)
	assert.Equal(t, http.StatusOK, do(t, a.handler, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, do(t, a.handler, http.MethodGet, "/readyz", "").Code)
}

func TestApp_RedisReadiness(t *testing.T) {
	mr := miniredis.RunT(t)
	a := newTestApp(t, func(c *config.Config) {
		c.Redis.Enabled = true
		c.Redis.Addr = mr.Addr()
	})
	require.Len(t, a.checkers, 1)

	rec := do(t, a.handler, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis"`)

	mr.Close()
	assert.Equal(t, http.StatusServiceUnavailable, do(t, a.handler, http.MethodGet, "/readyz", "").Code)
	assert.Contains(t, do(t, a.handler, http.MethodGet, "/metrics", "").Body.String(),
		`keyip_health_check_status{component="redis"} 0`)
}

func TestApp_SessionConflict(t *testing.T) {
	mr := miniredis.RunT(t)
	a := newTestApp(t, func(c *config.Config) {
		c.Redis.Enabled = true
		c.Redis.Addr = mr.Addr()
	})
	// A lease left by another replica.
	require.NoError(t, mr.Set("keyip:lock:session:s-1", "other"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/insights/search?q=Tesla", nil)
	req.Header.Set(config.DefaultSessionHeader, "s-1")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)

	assert.Contains(t, do(t, a.handler, http.MethodGet, "/metrics", "").Body.String(),
		"keyip_insight_session_conflicts_total 1")
}

func TestApp_RedisUnreachable(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = "127.0.0.1:1"
	cfg.Redis.DialTimeout = 200 * time.Millisecond

	_, err := newApp(context.Background(), cfg, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestApp_ServeStopsOnCancel(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) {
		c.Server.Port = 0
		c.Server.GRPCPort = 0
		c.Server.ShutdownTimeout = time.Second
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

//Personal.AI order the ending
