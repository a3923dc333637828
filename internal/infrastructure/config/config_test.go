package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	// Data config
	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, "course_catalog.json", cfg.Data.CatalogFile)

	// Telemetry config
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "spans.json", cfg.Telemetry.SpanFile)
	assert.False(t, cfg.Telemetry.AgentEnabled)
	assert.Equal(t, 100, cfg.Telemetry.BatchSize)
	assert.Equal(t, 5*time.Second, cfg.Telemetry.FlushInterval)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadOrDefault(t *testing.T) {
	// Should return default when no env vars set
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                 "9000",
		"HOST":                 "127.0.0.1",
		"DATA_DIR":             "/var/lib/coursecat",
		"CATALOG_FILE":         "catalog.json",
		"SPAN_FILE":            "trace.json",
		"TRACE_AGENT_ADDR":     "agent:4317",
		"TRACE_AGENT_ENABLED":  "true",
		"TRACE_BATCH_SIZE":     "50",
		"TRACE_FLUSH_INTERVAL": "2s",
		"LOG_LEVEL":            "debug",
		"LOG_DEV":              "true",
		"RATE_LIMIT_RPS":       "500",
		"RATE_LIMIT_BURST":     "1000",
		"RATE_LIMIT_ENABLED":   "false",
	}

	for key, value := range envVars {
		err := os.Setenv(key, value)
		require.NoError(t, err)
		defer os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)

	assert.Equal(t, "/var/lib/coursecat", cfg.Data.Dir)
	assert.Equal(t, filepath.Join("/var/lib/coursecat", "catalog.json"), cfg.Data.CatalogPath())

	assert.Equal(t, "agent:4317", cfg.Telemetry.AgentAddr)
	assert.True(t, cfg.Telemetry.AgentEnabled)
	assert.Equal(t, 50, cfg.Telemetry.BatchSize)
	assert.Equal(t, 2*time.Second, cfg.Telemetry.FlushInterval)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := []byte(`
server:
  port: "8080"
data:
  dir: /srv/catalog
telemetry:
  batch_size: 10
  flush_interval: 1s
  agent_enabled: true
logging:
  level: warn
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "/srv/catalog", cfg.Data.Dir)
	assert.Equal(t, 10, cfg.Telemetry.BatchSize)
	assert.Equal(t, time.Second, cfg.Telemetry.FlushInterval)
	assert.True(t, cfg.Telemetry.AgentEnabled)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Untouched fields keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "course_catalog.json", cfg.Data.CatalogFile)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
