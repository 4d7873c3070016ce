//go:build unit
// +build unit

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rest-app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestInitializeRestConfig_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "port: \"9090\"\n")

	cfg, err := InitializeRestConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, SqliteDbType, cfg.Database.Type)
	assert.Equal(t, "scan-warden.db", cfg.Database.DSN)
	assert.Equal(t, LocalProvider, cfg.ReportConnector.Provider)
	assert.Equal(t, DefaultScanWorkers, cfg.Scanners.Workers)
	assert.Equal(t, DefaultScanTimeout, cfg.Scanners.Timeout)
	assert.Equal(t, DefaultProbeConcurrency, cfg.Scanners.Probe.Concurrency)
	assert.False(t, cfg.Redis.Enabled())
}

func TestInitializeRestConfig_ParsesSections(t *testing.T) {
	path := writeConfig(t, `
port: "8081"
logger:
  log_level: debug
  log_type: console
database:
  type: postgres
  dsn: "host=localhost user=postgres"
  db_name: scanwarden
redis:
  addr: localhost:6379
  limit: 3
  window: 1m
scanners:
  workers: 2
  tools:
    semgrep:
      timeout: 5m
sla:
  critical: 12h
plan_path: plan.yaml
`)

	cfg, err := InitializeRestConfig(path)
	require.NoError(t, err)

	assert.Equal(t, LogLevelDebug, cfg.Logger.LogLevel)
	assert.Equal(t, "scanwarden", cfg.Database.DBName)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, int64(3), cfg.Redis.Limit)
	assert.Equal(t, time.Minute, cfg.Redis.Window)
	assert.Equal(t, 2, cfg.Scanners.Workers)
	assert.Equal(t, 5*time.Minute, cfg.Scanners.TimeoutFor("semgrep"))
	assert.Equal(t, DefaultScanTimeout, cfg.Scanners.TimeoutFor("trivy"))
	assert.Equal(t, 12*time.Hour, cfg.SLA.Critical)
	assert.Equal(t, "plan.yaml", cfg.PlanPath)
}

func TestInitializeRestConfig_EnvOverride(t *testing.T) {
	path := writeConfig(t, "port: \"8080\"\n")
	t.Setenv("SCANWARDEN_DATABASE_DSN", "override.db")

	cfg, err := InitializeRestConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "override.db", cfg.Database.DSN)
}

func TestInitializeRestConfig_Invalid(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := InitializeRestConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})

	t.Run("redis without limit", func(t *testing.T) {
		path := writeConfig(t, "redis:\n  addr: localhost:6379\n")
		_, err := InitializeRestConfig(path)
		require.Error(t, err)
	})

	t.Run("azure connector without container", func(t *testing.T) {
		path := writeConfig(t, "report_connector:\n  provider: azure\n  connection_string: x\n")
		_, err := InitializeRestConfig(path)
		require.Error(t, err)
	})
}

func TestInitializeRestConfig_SampleFile(t *testing.T) {
	cfg, err := InitializeRestConfig("../../../configs/rest-app.yaml")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Hour, cfg.Scanners.TimeoutFor("zap"))
	assert.Equal(t, 30*time.Minute, cfg.Scanners.TimeoutFor("semgrep"))
	assert.Equal(t, 168*time.Hour, cfg.SLA.High)
	assert.False(t, cfg.Redis.Enabled())
	assert.Empty(t, cfg.PlanPath)
}
