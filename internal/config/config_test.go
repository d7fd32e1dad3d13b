package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "careersync.yml")

	validConfig := `version: "1.0"
workspace: acme
backend:
  type: redis
  url: redis://localhost:6379/0
sync:
  cross_instance: false
  poll_interval: 500ms
  max_failures: 5
analytics:
  enabled: false
  user_id: admin-1
mutation_latency: 250ms
logging:
  level: debug
  format: json
health:
  port: 9090
`
	err := os.WriteFile(configPath, []byte(validConfig), 0644)
	require.NoError(t, err)

	config, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "acme", config.Workspace)
	assert.Equal(t, BackendRedis, config.Backend.Type)
	assert.Equal(t, "redis://localhost:6379/0", config.Backend.URL)
	assert.False(t, config.CrossInstanceEnabled())
	assert.Equal(t, 500*time.Millisecond, config.Sync.PollInterval)
	assert.Equal(t, 5, config.Sync.MaxFailures)
	assert.False(t, config.AnalyticsEnabled())
	assert.Equal(t, "admin-1", config.Analytics.UserID)
	assert.Equal(t, 250*time.Millisecond, config.MutationLatency)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
	assert.Equal(t, 9090, config.Health.Port)
}

func TestLoad_FileNotFound(t *testing.T) {
	config, err := Load("/nonexistent/careersync.yml")
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestParse_InvalidYAML(t *testing.T) {
	invalidYAML := `version: "1.0"
backend:
  - this is invalid
    yaml syntax
`
	config, err := Parse([]byte(invalidYAML), noEnv)
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParse_AppliesDefaults(t *testing.T) {
	config, err := Parse([]byte("version: \"1.0\"\nbackend:\n  type: memory\n"), noEnv)
	require.NoError(t, err)

	assert.Equal(t, "default", config.Workspace)
	assert.True(t, config.CrossInstanceEnabled())
	assert.Equal(t, 2*time.Second, config.Sync.PollInterval)
	assert.Equal(t, 3, config.Sync.MaxFailures)
	assert.True(t, config.AnalyticsEnabled())
	assert.Equal(t, "anonymous", config.Analytics.UserID)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "console", config.Logging.Format)
	assert.Equal(t, 8080, config.Health.Port)
	assert.Zero(t, config.MutationLatency)
}

func TestParse_EnvOverridesFile(t *testing.T) {
	yml := `version: "1.0"
backend:
  type: file
  path: .careersync
`
	config, err := Parse([]byte(yml), envMap(map[string]string{
		"CAREERSYNC_BACKEND":      "postgres",
		"CAREERSYNC_BACKEND_URL":  "postgres://localhost/careersync",
		"CAREERSYNC_WORKSPACE":    "staging",
		"CAREERSYNC_LOG_LEVEL":    "warn",
		"CAREERSYNC_LOG_FORMAT":   "json",
		"CAREERSYNC_BACKEND_PATH": "",
	}))
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, config.Backend.Type)
	assert.Equal(t, "postgres://localhost/careersync", config.Backend.URL)
	assert.Equal(t, ".careersync", config.Backend.Path)
	assert.Equal(t, "staging", config.Workspace)
	assert.Equal(t, "warn", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
}

func TestDefault_IsValid(t *testing.T) {
	config := Default()
	require.NoError(t, config.Validate())
	assert.Equal(t, BackendFile, config.Backend.Type)
	assert.Equal(t, ".careersync", config.Backend.Path)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unsupported version", func(c *Config) { c.Version = "2.0" }, "unsupported version: 2.0"},
		{"workspace with colon", func(c *Config) { c.Workspace = "a:b" }, "invalid workspace"},
		{"missing backend type", func(c *Config) { c.Backend = BackendConfig{} }, "backend.type is required"},
		{"unknown backend type", func(c *Config) { c.Backend.Type = "s3" }, "invalid backend.type: s3"},
		{"file without path", func(c *Config) { c.Backend = BackendConfig{Type: BackendFile} }, "backend 'file': path is required"},
		{"sqlite without path", func(c *Config) { c.Backend = BackendConfig{Type: BackendSQLite} }, "backend 'sqlite': path is required"},
		{"redis without url", func(c *Config) { c.Backend = BackendConfig{Type: BackendRedis} }, "backend 'redis': url is required"},
		{"redis with wrong scheme", func(c *Config) {
			c.Backend = BackendConfig{Type: BackendRedis, URL: "http://localhost"}
		}, "url must start with redis://"},
		{"postgres without url", func(c *Config) { c.Backend = BackendConfig{Type: BackendPostgres} }, "backend 'postgres': url is required"},
		{"negative poll interval", func(c *Config) { c.Sync.PollInterval = -time.Second }, "sync.poll_interval must be positive"},
		{"negative max failures", func(c *Config) { c.Sync.MaxFailures = -1 }, "sync.max_failures must be >= 1"},
		{"negative latency", func(c *Config) { c.MutationLatency = -time.Millisecond }, "mutation_latency must be >= 0"},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, "invalid logging.format: xml"},
		{"port out of range", func(c *Config) { c.Health.Port = 70000 }, "health.port out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			err := config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
