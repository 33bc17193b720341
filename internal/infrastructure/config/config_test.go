package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("TEST_BASE_URL", "https://www.amazon.de/your-orders/orders")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
exporter:
  base_url: ${TEST_BASE_URL}
  output_dir: /tmp/exports
  request_delay_ms: 500
storage:
  database_path: /tmp/state.db
api:
  port: 9090
  allowed_origins:
    - http://localhost:3000
observability:
  logging:
    level: debug
    format: json
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Environment variables in the file are expanded.
	assert.Equal(t, "https://www.amazon.de/your-orders/orders", cfg.Exporter.BaseURL)
	assert.Equal(t, "/tmp/exports", cfg.Exporter.OutputDir)
	assert.Equal(t, 500, cfg.Exporter.RequestDelayMs)
	assert.Equal(t, "/tmp/state.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.API.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("exporter:\n  base_url: https://www.amazon.de/your-orders\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "exports", cfg.Exporter.OutputDir)
	assert.Equal(t, 200, cfg.Exporter.RequestDelayMs)
	assert.Equal(t, "amazonExporter", cfg.Exporter.StateKey)
	assert.Equal(t, "amazon_export.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.Equal(t, "text", cfg.Observability.Logging.Format)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("AMAZON_BASE_URL", "https://www.amazon.com/your-orders/orders")
	t.Setenv("EXPORT_REQUEST_DELAY_MS", "300")
	t.Setenv("LOG_LEVEL", "warn")

	cfg := LoadFromEnv()
	assert.Equal(t, "https://www.amazon.com/your-orders/orders", cfg.Exporter.BaseURL)
	assert.Equal(t, 300, cfg.Exporter.RequestDelayMs)
	assert.Equal(t, "warn", cfg.Observability.Logging.Level)
	assert.Equal(t, "amazonExporter", cfg.Exporter.StateKey)
}

func TestLoadOrEnvWithPathFallsBack(t *testing.T) {
	cfg := LoadOrEnvWithPath(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NotNil(t, cfg)
	assert.Equal(t, "exports", cfg.Exporter.OutputDir)
}
