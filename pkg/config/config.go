// Package config loads CMRP settings from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all CMRP configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Sessions SessionsConfig `yaml:"sessions"`
	Limits   LimitsConfig   `yaml:"limits"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	StaticDir       string `yaml:"static_dir"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// DatabaseConfig selects the SQLite driver and file.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite3 (cgo) or sqlite (pure Go)
	Path   string `yaml:"path"`
}

// SessionsConfig configures login sessions.
type SessionsConfig struct {
	Path            string `yaml:"path"`
	TTL             string `yaml:"ttl"`
	CookieName      string `yaml:"cookie_name"`
	SecureCookie    bool   `yaml:"secure_cookie"`
	CleanupInterval string `yaml:"cleanup_interval"`
}

// LimitsConfig caps user-generated data.
type LimitsConfig struct {
	MaxUpdatesPerProject int `yaml:"max_updates_per_project"`
	ForecastLimit        int `yaml:"forecast_limit"`
	MinPasswordLength    int `yaml:"min_password_length"`
	MaxUploadErrors      int `yaml:"max_upload_errors"`
	MaxBulkErrors        int `yaml:"max_bulk_errors"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            "0.0.0.0:5000",
			StaticDir:       "static",
			ReadTimeout:     "30s",
			WriteTimeout:    "60s",
			ShutdownTimeout: "5s",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "projects.db",
		},
		Sessions: SessionsConfig{
			Path:            "sessions.db",
			TTL:             "744h",
			CookieName:      "cmrp_session",
			CleanupInterval: "1h",
		},
		Limits: LimitsConfig{
			MaxUpdatesPerProject: 30,
			ForecastLimit:        100,
			MinPasswordLength:    8,
			MaxUploadErrors:      100,
			MaxBulkErrors:        50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{"CMRP_ADDR", &c.Server.Addr},
		{"CMRP_STATIC_DIR", &c.Server.StaticDir},
		{"CMRP_DB", &c.Database.Path},
		{"CMRP_DB_DRIVER", &c.Database.Driver},
		{"CMRP_SESSION_DB", &c.Sessions.Path},
		{"CMRP_LOG_LEVEL", &c.Logging.Level},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.env)); v != "" {
			*o.target = v
		}
	}
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server address cannot be empty")
	}
	switch c.Database.Driver {
	case "sqlite3", "sqlite":
	default:
		return fmt.Errorf("invalid database driver: %s (valid: sqlite3, sqlite)", c.Database.Driver)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.Sessions.CookieName == "" {
		return fmt.Errorf("session cookie name cannot be empty")
	}
	if _, err := time.ParseDuration(c.Sessions.TTL); err != nil {
		return fmt.Errorf("invalid session ttl %q: %w", c.Sessions.TTL, err)
	}
	if c.Limits.MaxUpdatesPerProject < 1 || c.Limits.ForecastLimit < 1 {
		return fmt.Errorf("update and forecast limits must be positive")
	}
	if c.Limits.MinPasswordLength < 1 {
		return fmt.Errorf("minimum password length must be positive")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging format: %s (valid: json, console)", c.Logging.Format)
	}
	return nil
}

// GetReadTimeout returns the HTTP read timeout as a duration.
func (c *Config) GetReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 30*time.Second)
}

// GetWriteTimeout returns the HTTP write timeout as a duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 60*time.Second)
}

// GetShutdownTimeout returns the graceful shutdown window as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 5*time.Second)
}

// GetSessionTTL returns the session lifetime as a duration.
func (c *Config) GetSessionTTL() time.Duration {
	return parseDuration(c.Sessions.TTL, 31*24*time.Hour)
}

// GetCleanupInterval returns how often expired sessions are purged.
func (c *Config) GetCleanupInterval() time.Duration {
	return parseDuration(c.Sessions.CleanupInterval, time.Hour)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
