package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dyluth/careersync/internal/workspace"
	"gopkg.in/yaml.v3"
)

// Backend types accepted in backend.type.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "careersync.yml"

// Config represents the top-level careersync.yml configuration
type Config struct {
	Version         string          `yaml:"version"`
	Workspace       string          `yaml:"workspace,omitempty"`
	Backend         BackendConfig   `yaml:"backend"`
	Sync            SyncConfig      `yaml:"sync"`
	Analytics       AnalyticsConfig `yaml:"analytics"`
	MutationLatency time.Duration   `yaml:"mutation_latency,omitempty"` // Simulated latency before mutations resolve
	Logging         LoggingConfig   `yaml:"logging"`
	Health          HealthConfig    `yaml:"health"`
}

// BackendConfig selects where document slots are stored
type BackendConfig struct {
	Type string `yaml:"type"`
	Path string `yaml:"path,omitempty"` // Directory for file, database file for sqlite
	URL  string `yaml:"url,omitempty"`  // redis:// or postgres:// URL
}

// SyncConfig controls cross-instance propagation
type SyncConfig struct {
	CrossInstance *bool         `yaml:"cross_instance,omitempty"` // Default: true
	PollInterval  time.Duration `yaml:"poll_interval,omitempty"`  // Default: 2s
	MaxFailures   int           `yaml:"max_failures,omitempty"`   // Default: 3
}

// AnalyticsConfig controls the event tracker
type AnalyticsConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"` // Default: true
	UserID  string `yaml:"user_id,omitempty"`
}

// LoggingConfig mirrors logging.Config in YAML form
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// HealthConfig configures the serve command's health endpoint
type HealthConfig struct {
	Port int `yaml:"port,omitempty"` // Default: 8080
}

// Default returns a configuration that passes Validate unchanged.
func Default() *Config {
	cfg := &Config{
		Version: "1.0",
		Backend: BackendConfig{Type: BackendFile, Path: ".careersync"},
	}
	// Validate only fills defaults here and cannot fail
	_ = cfg.Validate()
	return cfg
}

// CrossInstanceEnabled reports whether cross-instance listeners should run.
func (c *Config) CrossInstanceEnabled() bool {
	return c.Sync.CrossInstance == nil || *c.Sync.CrossInstance
}

// AnalyticsEnabled reports whether tracked events are recorded.
func (c *Config) AnalyticsEnabled() bool {
	return c.Analytics.Enabled == nil || *c.Analytics.Enabled
}

// Validate performs strict validation on the configuration and applies defaults
func (c *Config) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if c.Workspace == "" {
		c.Workspace = workspace.DefaultName
	}
	if err := workspace.ValidateName(c.Workspace); err != nil {
		return fmt.Errorf("invalid workspace: %w", err)
	}

	if err := c.Backend.Validate(); err != nil {
		return err
	}

	if c.Sync.PollInterval == 0 {
		c.Sync.PollInterval = 2 * time.Second
	}
	if c.Sync.PollInterval < 0 {
		return fmt.Errorf("sync.poll_interval must be positive, got %s", c.Sync.PollInterval)
	}
	if c.Sync.MaxFailures == 0 {
		c.Sync.MaxFailures = 3
	}
	if c.Sync.MaxFailures < 1 {
		return fmt.Errorf("sync.max_failures must be >= 1, got %d", c.Sync.MaxFailures)
	}

	if c.Analytics.UserID == "" {
		c.Analytics.UserID = "anonymous"
	}

	if c.MutationLatency < 0 {
		return fmt.Errorf("mutation_latency must be >= 0, got %s", c.MutationLatency)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	switch c.Logging.Format {
	case "":
		c.Logging.Format = "console"
	case "console", "json":
	default:
		return fmt.Errorf("invalid logging.format: %s (must be 'console' or 'json')", c.Logging.Format)
	}

	if c.Health.Port == 0 {
		c.Health.Port = 8080
	}
	if c.Health.Port < 0 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port out of range: %d", c.Health.Port)
	}

	return nil
}

// Validate checks the backend type and its required location
func (b *BackendConfig) Validate() error {
	switch b.Type {
	case BackendMemory:
	case BackendFile, BackendSQLite:
		if b.Path == "" {
			return fmt.Errorf("backend '%s': path is required", b.Type)
		}
	case BackendRedis:
		if b.URL == "" {
			return fmt.Errorf("backend 'redis': url is required")
		}
		if !strings.HasPrefix(b.URL, "redis://") && !strings.HasPrefix(b.URL, "rediss://") {
			return fmt.Errorf("backend 'redis': url must start with redis:// or rediss://")
		}
	case BackendPostgres:
		if b.URL == "" {
			return fmt.Errorf("backend 'postgres': url is required")
		}
	case "":
		return fmt.Errorf("backend.type is required")
	default:
		return fmt.Errorf("invalid backend.type: %s (must be 'memory', 'file', 'redis', 'sqlite', or 'postgres')", b.Type)
	}
	return nil
}

// ApplyEnv overrides file values with CAREERSYNC_* environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("CAREERSYNC_WORKSPACE"); ok && v != "" {
		c.Workspace = v
	}
	if v, ok := lookup("CAREERSYNC_BACKEND"); ok && v != "" {
		c.Backend.Type = v
	}
	if v, ok := lookup("CAREERSYNC_BACKEND_URL"); ok && v != "" {
		c.Backend.URL = v
	}
	if v, ok := lookup("CAREERSYNC_BACKEND_PATH"); ok && v != "" {
		c.Backend.Path = v
	}
	if v, ok := lookup("CAREERSYNC_LOG_LEVEL"); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup("CAREERSYNC_LOG_FORMAT"); ok && v != "" {
		c.Logging.Format = v
	}
}

// Load reads careersync.yml from the specified path, applies environment
// overrides, and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(data, os.LookupEnv)
}

// Parse decodes YAML config bytes with the given environment lookup.
func Parse(data []byte, lookup func(string) (string, bool)) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if lookup != nil {
		config.ApplyEnv(lookup)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
