package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 8181
  mode: debug
remote:
  base_url: "http://localhost:4010/v1"
  bearer_token: "file-token-0123456789"
  retry_max: 2
redis:
  enabled: true
  addr: "localhost:6380"
session:
  lock_ttl: 45s
log:
  level: debug
  format: console
metrics:
  namespace: test_unit
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "http://localhost:4010/v1", cfg.Remote.BaseURL)
	assert.Equal(t, "file-token-0123456789", cfg.Remote.BearerToken)
	assert.Equal(t, 2, cfg.Remote.RetryMax)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6380", cfg.Redis.Addr)
	assert.Equal(t, 45*time.Second, cfg.Session.LockTTL)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "test_unit", cfg.Metrics.Namespace)
	// untouched keys keep their defaults
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, DefaultMetricsPath, cfg.Metrics.Path)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "server:\n  mode: prod\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("KEYIP_REMOTE_BEARER_TOKEN", "env-token-abcdefghij")
	t.Setenv("KEYIP_SERVER_PORT", "9191")

	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, "env-token-abcdefghij", cfg.Remote.BearerToken)
	assert.Equal(t, 9191, cfg.Server.Port)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("KEYIP_REMOTE_BASE_URL", "https://patents.example.com/api")
	t.Setenv("KEYIP_REMOTE_BEARER_TOKEN", "env-only")
	t.Setenv("KEYIP_LOG_LEVEL", "warn")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://patents.example.com/api", cfg.Remote.BaseURL)
	assert.True(t, cfg.Remote.Configured())
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
}

func TestLoadFromFile_EmptyPathUsesEnv(t *testing.T) {
	cfg, err := LoadFromFile("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRemoteBaseURL, cfg.Remote.BaseURL)
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "absent.yaml")) })
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(filepath.Join(t.TempDir(), "absent.yaml"), func(*Config) {}, nil)
	assert.Error(t, err)
}

//Personal.AI order the ending
