package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ReadsYAMLAndAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
database:
  host: db.example.com
  user: pipeline
  password: secret
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.example.com", cfg.Database.Host)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Defaults fill everything the file omitted.
	assert.Equal(t, DefaultDBPort, cfg.Database.Port)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Len(t, cfg.Pipeline.FeeTiers, 3)
}

func TestLoad_FileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_ValidationFailureSurfaces(t *testing.T) {
	path := writeConfigFile(t, `
server:
  mode: production
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.mode")
}

func TestLoad_FeeTiersFromFile(t *testing.T) {
	path := writeConfigFile(t, `
pipeline:
  fee_currency: EUR
  fee_tiers:
    - offset_years: 4
      amount_cents: 100000
    - offset_years: 8
      amount_cents: 200000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Pipeline.FeeTiers, 2)
	assert.Equal(t, 4, cfg.Pipeline.FeeTiers[0].OffsetYears)
	assert.Equal(t, int64(200000), cfg.Pipeline.FeeTiers[1].AmountCents)
	assert.Equal(t, "EUR", cfg.Pipeline.FeeCurrency)
}

func TestLoadFromEnv_UsesEnvironmentOverrides(t *testing.T) {
	t.Setenv("PATMAINT_DATABASE_HOST", "env-host")
	t.Setenv("PATMAINT_SERVER_PORT", "7070")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestMustLoad_PanicsOnMissingFile(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "absent.yaml"))
	})
}
