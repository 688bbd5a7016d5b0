package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewplane/crewplane/pkg/observability"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CREWPLANE_POSTGRES_URL", "postgres://localhost/crewplane_test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.HealthPort)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, 90*24*time.Hour, cfg.Audit.Retention)
	assert.Equal(t, observability.InfoLevel, cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.MetricsEnabled)
	assert.False(t, cfg.Observability.OTelEnabled)
	assert.Equal(t, 20, cfg.Storage.MaxConns)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CREWPLANE_POSTGRES_URL", "postgres://db:5432/crewplane")
	t.Setenv("CREWPLANE_PORT", "8088")
	t.Setenv("CREWPLANE_HEALTH_PORT", "9099")
	t.Setenv("CREWPLANE_READ_TIMEOUT", "5s")
	t.Setenv("CREWPLANE_LOG_LEVEL", "debug")
	t.Setenv("CREWPLANE_AUDIT_ENABLED", "false")
	t.Setenv("CREWPLANE_METRICS_ENABLED", "0")
	t.Setenv("CREWPLANE_POSTGRES_MAX_CONNS", "50")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8088", cfg.Server.Port)
	assert.Equal(t, "9099", cfg.Server.HealthPort)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, observability.DebugLevel, cfg.Observability.LogLevel)
	assert.False(t, cfg.Audit.Enabled)
	assert.False(t, cfg.Observability.MetricsEnabled)
	assert.Equal(t, "postgres://db:5432/crewplane", cfg.Storage.URL)
	assert.Equal(t, 50, cfg.Storage.MaxConns)
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "7070"
  health_port: "7071"
storage:
  url: postgres://file-host/crewplane
audit:
  enabled: true
  retention: 24h
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("CREWPLANE_CONFIG_FILE", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "7071", cfg.Server.HealthPort)
	assert.Equal(t, "postgres://file-host/crewplane", cfg.Storage.URL)
	assert.Equal(t, 24*time.Hour, cfg.Audit.Retention)
}

func TestLoadConfig_EnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "7070"
storage:
  url: postgres://file-host/crewplane
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("CREWPLANE_CONFIG_FILE", path)
	t.Setenv("CREWPLANE_PORT", "8081")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv("CREWPLANE_CONFIG_FILE", "/nonexistent/config.yaml")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Server.Port = "8080"
		cfg.Server.HealthPort = "9090"
		cfg.Storage.URL = "postgres://localhost/crewplane"
		return cfg
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("missing port", func(t *testing.T) {
		cfg := base()
		cfg.Server.Port = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("equal ports", func(t *testing.T) {
		cfg := base()
		cfg.Server.HealthPort = cfg.Server.Port
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing postgres url", func(t *testing.T) {
		cfg := base()
		cfg.Storage.URL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("audit enabled without retention", func(t *testing.T) {
		cfg := base()
		cfg.Audit.Enabled = true
		cfg.Audit.Retention = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("otel enabled without endpoint", func(t *testing.T) {
		cfg := base()
		cfg.Observability.OTelEnabled = true
		cfg.Observability.OTelServiceName = "crewplane"
		assert.Error(t, cfg.Validate())
	})
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]observability.LogLevel{
		"debug":   observability.DebugLevel,
		"info":    observability.InfoLevel,
		"warn":    observability.WarnLevel,
		"warning": observability.WarnLevel,
		"error":   observability.ErrorLevel,
		"bogus":   observability.InfoLevel,
	}
	for input, want := range cases {
		assert.Equal(t, want, parseLogLevel(input), "level %q", input)
	}
}
