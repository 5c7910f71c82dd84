package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RETAILPULSE_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8502, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "data", cfg.Paths.DataDir)
	assert.True(t, cfg.Security.RateLimit.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("RETAILPULSE_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("RETAILPULSE_SERVER_PORT", "9000")
	t.Setenv("RETAILPULSE_LOGGING_LEVEL", "debug")
	t.Setenv("RETAILPULSE_PATHS_DATA_DIR", "/srv/retail/data")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/srv/retail/data", cfg.Paths.DataDir)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9100
logging:
  level: warn
paths:
  data_dir: /opt/retail
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))
	t.Setenv("RETAILPULSE_CONFIG_FILE", configFile)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "/opt/retail", cfg.Paths.DataDir)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"invalid port", func(c *Config) { c.Server.Port = 0 }},
		{"negative read timeout", func(c *Config) { c.Server.ReadTimeout = -1 }},
		{"empty data dir", func(c *Config) { c.Paths.DataDir = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RETAILPULSE_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestMergeConfigsFileOverridesSetFields(t *testing.T) {
	fileCfg := Config{}
	fileCfg.Server.Port = 9100

	envCfg := Config{}
	envCfg.Server.Port = 9000
	envCfg.Logging.Level = "debug"

	merged := mergeConfigs(fileCfg, envCfg)

	assert.Equal(t, 9100, merged.Server.Port)
	// Fields absent from the file keep the env value.
	assert.Equal(t, "debug", merged.Logging.Level)
}
