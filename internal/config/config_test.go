package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(PathEnv, "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "http://localhost:5000", cfg.TransitAPIURL)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, time.Second, cfg.ClockInterval)
	assert.True(t, cfg.CacheEnabled)
	assert.False(t, cfg.RedisEnabled)
}

func TestLoadFiles(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "transitdash.toml",
			content: `
log_level = "debug"
http_addr = ":9090"
transit_api_url = "http://gtfs.internal:5000"
cache_ttl = "5m"
cors_origins = ["https://dash.example.com"]
`,
		},
		{
			name: "yaml",
			file: "transitdash.yaml",
			content: `
log_level: debug
http_addr: ":9090"
transit_api_url: http://gtfs.internal:5000
cache_ttl: 5m
cors_origins:
  - https://dash.example.com
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)

			assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
			assert.Equal(t, ":9090", cfg.HTTPAddr)
			assert.Equal(t, "http://gtfs.internal:5000", cfg.TransitAPIURL)
			assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
			assert.Equal(t, []string{"https://dash.example.com"}, cfg.CORSOrigins)
			// untouched keys keep their defaults
			assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
		})
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "transitdash.yaml", "http_addr: \":9090\"\nredis_db: 2\n")
	t.Setenv(PathEnv, path)
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, ,10.0.0.2")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "warning")
	t.Setenv("READ_TIMEOUT", "not-a-duration")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.RateLimitWhitelist)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.ReadTimeout)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad url", env: map[string]string{"TRANSIT_API_URL": "not a url"}},
		{name: "zero clock", env: map[string]string{"CLOCK_INTERVAL": "0s"}},
		{name: "unknown log format", env: map[string]string{"LOG_FORMAT": "xml"}},
		{name: "zero cache ttl", env: map[string]string{"CACHE_TTL": "0s"}},
		{name: "negative rate", env: map[string]string{"RATE_LIMIT_PER_WINDOW": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(PathEnv, "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file")

	_, err = Load(writeFile(t, "broken.toml", "http_addr = ["))
	assert.ErrorContains(t, err, "parsing toml config")

	_, err = Load(writeFile(t, "redis.yaml", "redis_enabled: true\nredis_addr: \"\"\n"))
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.LogFormat = "text"
	cfg.LoggerTo(&buf).Info("hello", "k", "v")
	assert.Contains(t, buf.String(), "msg=hello k=v")

	buf.Reset()
	cfg.LogFormat = "json"
	cfg.LoggerTo(&buf).Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}
