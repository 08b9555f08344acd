package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort      = 8080
	DefaultGRPCPort        = 9090
	DefaultServerMode      = "release"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxBodySize     = 1 << 20

	DefaultRemoteBaseURL   = "https://api.patents.com/v1"
	DefaultRemoteUserAgent = "keyip-insight"
	DefaultRetryWait       = 500 * time.Millisecond

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "keyip:"

	DefaultSessionHeader  = "X-Session-ID"
	DefaultSessionLockTTL = 2 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "keyip"
	DefaultMetricsPath      = "/metrics"

	DefaultTracingServiceName = "keyip-insight"
	DefaultTracingEnvironment = "development"
	DefaultTracingSampleRatio = 1.0
)

// NewDefaultConfig returns a Config with every field at its default. Metrics
// are on, tracing and Redis are off, and no bearer token is set, so searches
// are served from sample data until credentials are supplied.
func NewDefaultConfig() *Config {
	cfg := &Config{
		Metrics: MetricsConfig{Enabled: true},
		Tracing: TracingConfig{Insecure: true},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with its default.
// Explicitly set fields are left alone. Booleans are never touched.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}

	// ── Remote ────────────────────────────────────────────────────────────────
	if cfg.Remote.BaseURL == "" {
		cfg.Remote.BaseURL = DefaultRemoteBaseURL
	}
	if cfg.Remote.UserAgent == "" {
		cfg.Remote.UserAgent = DefaultRemoteUserAgent
	}
	if cfg.Remote.RetryWait == 0 {
		cfg.Remote.RetryWait = DefaultRetryWait
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── Session ───────────────────────────────────────────────────────────────
	if cfg.Session.Header == "" {
		cfg.Session.Header = DefaultSessionHeader
	}
	if cfg.Session.LockTTL == 0 {
		cfg.Session.LockTTL = DefaultSessionLockTTL
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Tracing ───────────────────────────────────────────────────────────────
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Tracing.Environment == "" {
		cfg.Tracing.Environment = DefaultTracingEnvironment
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
}

//Personal.AI order the ending
