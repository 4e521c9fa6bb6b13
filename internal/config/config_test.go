package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/raw", cfg.Data.RawDir)
	assert.Equal(t, "MER_T01_01.csv", cfg.Data.EnergyFile)
	assert.Equal(t, "MER_T11_01.csv", cfg.Data.CO2File)
	assert.Equal(t, "outputs", cfg.Data.OutputDir)
	assert.Equal(t, "CO2Intensity", cfg.Analysis.Target)
	assert.Equal(t, []string{"FossilShare", "RenewableShare"}, cfg.Analysis.Features)
	assert.Len(t, cfg.Analysis.CorrelationPredictors, 3)
	assert.InDelta(t, 0.05, cfg.Analysis.Alpha, 1e-9)
	assert.Equal(t, 4, cfg.Analysis.MaxDepth)
	assert.Equal(t, uint64(42), cfg.Analysis.Seed)
	assert.InDelta(t, 0.2, cfg.Analysis.TestFraction, 1e-9)
	assert.InDelta(t, 5.0, cfg.Analysis.BreakThreshold, 1e-9)
	assert.Equal(t, 1, cfg.Analysis.AutocorrLag)
	assert.False(t, cfg.Analysis.Scale)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "energy.clean_panel", cfg.Warehouse.Table)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30, cfg.Server.TimeoutSecs)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate("analyze"))
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
data:
  raw_dir: /srv/eia
analysis:
  test_fraction: 0.25
  break_threshold: 3.5
  scale: true
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/eia", cfg.Data.RawDir)
	assert.InDelta(t, 0.25, cfg.Analysis.TestFraction, 1e-9)
	assert.InDelta(t, 3.5, cfg.Analysis.BreakThreshold, 1e-9)
	assert.True(t, cfg.Analysis.Scale)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset values
	assert.Equal(t, 4, cfg.Analysis.MaxDepth)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
analysis:
  max_depth: 6
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("ENERGY_ANALYSIS_MAX_DEPTH", "3")
	t.Setenv("ENERGY_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Analysis.MaxDepth)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("analysis: [unclosed"), 0o644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	assert.Error(t, InitLogger(LogConfig{Level: "invalid", Format: "json"}))
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Data.RawDir = "data/raw"
	cfg.Data.EnergyFile = "MER_T01_01.csv"
	cfg.Data.CO2File = "MER_T11_01.csv"
	cfg.EIA.EnergyURL = "https://example.test/t01"
	cfg.EIA.CO2URL = "https://example.test/t11"
	cfg.Analysis.Target = "CO2Intensity"
	cfg.Analysis.Features = []string{"FossilShare", "RenewableShare"}
	cfg.Analysis.Alpha = 0.05
	cfg.Analysis.MaxDepth = 4
	cfg.Analysis.TestFraction = 0.2
	cfg.Analysis.AutocorrLag = 1
	cfg.Warehouse.Table = "energy.clean_panel"
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateAnalyze_Bounds(t *testing.T) {
	cfg := validDefaults()
	require.NoError(t, cfg.Validate("analyze"))

	cfg.Analysis.TestFraction = 1
	err := cfg.Validate("analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test_fraction")

	cfg.Analysis.TestFraction = 0.2
	cfg.Analysis.MaxDepth = 0
	cfg.Analysis.Alpha = 0
	err = cfg.Validate("analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_depth")
	assert.Contains(t, err.Error(), "alpha")
}

func TestValidateAnalyze_EmptyFeatures(t *testing.T) {
	cfg := validDefaults()
	cfg.Analysis.Features = nil

	err := cfg.Validate("analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis.features must not be empty")
}

func TestValidatePublish_RequiresURL(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("publish")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warehouse.database_url is required")

	cfg.Warehouse.DatabaseURL = "postgres://localhost/energy"
	assert.NoError(t, cfg.Validate("publish"))
}

func TestValidateFetch(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("fetch"))

	cfg.EIA.CO2URL = ""
	assert.Error(t, cfg.Validate("fetch"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
