package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Addr)
	assert.Equal(t, 30, cfg.Limits.MaxUpdatesPerProject)
	assert.Equal(t, 100, cfg.Limits.ForecastLimit)
	assert.Equal(t, 31*24*time.Hour, cfg.GetSessionTTL())
	assert.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("CMRP_DB", "")
	path := filepath.Join(t.TempDir(), "conf", "cmrp.yaml")

	cfg := DefaultConfig()
	cfg.Database.Driver = "sqlite3"
	cfg.Limits.ForecastLimit = 250
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", loaded.Database.Driver)
	assert.Equal(t, 250, loaded.Limits.ForecastLimit)
	assert.Equal(t, cfg.Sessions.CookieName, loaded.Sessions.CookieName)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CMRP_ADDR", "127.0.0.1:9000")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "projects.db", cfg.Database.Path)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cmrp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("limits:\n  max_updates_per_project: 5\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Limits.MaxUpdatesPerProject)
	assert.Equal(t, 100, cfg.Limits.ForecastLimit)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cmrp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CMRP_DB", "/var/lib/cmrp/projects.db")
	t.Setenv("CMRP_DB_DRIVER", "sqlite3")
	t.Setenv("CMRP_SESSION_DB", "/var/lib/cmrp/sessions.db")
	t.Setenv("CMRP_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, "/var/lib/cmrp/projects.db", cfg.Database.Path)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "/var/lib/cmrp/sessions.db", cfg.Sessions.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "postgres" }},
		{"empty path", func(c *Config) { c.Database.Path = "" }},
		{"bad ttl", func(c *Config) { c.Sessions.TTL = "forever" }},
		{"zero forecast limit", func(c *Config) { c.Limits.ForecastLimit = 0 }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_DurationFallbacks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.ShutdownTimeout = "soon"
	cfg.Sessions.CleanupInterval = "15m"

	assert.Equal(t, 5*time.Second, cfg.GetShutdownTimeout())
	assert.Equal(t, 15*time.Minute, cfg.GetCleanupInterval())
}
