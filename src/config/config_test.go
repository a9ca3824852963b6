package config

import (
	"os"
	"path/filepath"
	"testing"

	"macro-observer/src/helpers"
	"macro-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func validConfig() *Config {
	return &Config{MConfig: &models.MConfig{
		Name:     "macro-observer",
		Host:     "127.0.0.1",
		Port:     8400,
		LogLevel: "INFO",
		Provider: models.MProviderConfig{
			BaseURL: "https://api.stlouisfed.org/fred",
			APIKey:  "key",
		},
		Cache: models.MCacheConfig{TTLSeconds: 3600, DSN: ":memory:"},
		Data:  models.MDataConfig{LookbackYears: 5, UpdateIntervalSeconds: 900},
		Network: models.MNetworkConfig{
			RequestTimeout:     30,
			MaxRetries:         3,
			ConcurrentRequests: 4,
		},
		Simulator: models.MSimulatorConfig{
			HorizonPeriods: 6,
			DefaultRate:    0.002,
			MinRate:        -0.02,
			MaxRate:        0.02,
		},
	}}
}

// -----------------------------------------------------------------------------

func TestValidateAcceptsDefaults(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRejectsMissingAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.Provider.APIKey = ""

	err := cfg.Validate()
	require.Error(t, err)

	var credErr *helpers.CredentialError
	assert.ErrorAs(t, err, &credErr)
}

func TestValidateRejectsBadLookback(t *testing.T) {
	cfg := validConfig()
	cfg.Data.LookbackYears = 2
	assert.Error(t, cfg.Validate())

	cfg.Data.LookbackYears = 21
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsInvertedSimulatorBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Simulator.MinRate = 0.05
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := validConfig()
	cfg.Port = 80
	assert.Error(t, cfg.Validate())
}

// -----------------------------------------------------------------------------

func TestSetLookbackYears(t *testing.T) {
	cfg := validConfig()

	require.NoError(t, cfg.SetLookbackYears(10))
	assert.Equal(t, 10, cfg.Data.LookbackYears)

	err := cfg.SetLookbackYears(2)
	require.Error(t, err)
	var valErr *helpers.ValidationError
	assert.ErrorAs(t, err, &valErr)

	assert.Error(t, cfg.SetLookbackYears(25))
	assert.Equal(t, 10, cfg.Data.LookbackYears, "rejected values leave the config unchanged")
}

// -----------------------------------------------------------------------------

func TestNewConfigEnvOverridesKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
name: "macro-observer"
host: "127.0.0.1"
port: 8400
log_level: "INFO"
provider:
  base_url: "https://api.stlouisfed.org/fred"
  api_key: "from-file"
cache:
  ttl_seconds: 3600
  dsn: ":memory:"
data:
  lookback_years: 5
  update_interval_seconds: 900
network:
  timeout: 30
  retries: 3
  concurrent_requests: 4
simulator:
  horizon_periods: 6
  default_rate: 0.002
  min_rate: -0.02
  max_rate: 0.02
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	t.Setenv("FRED_API_KEY", "from-env")
	cfg, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Provider.APIKey)
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig("/nonexistent/config.yaml")
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestSaveRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	cfg := validConfig()
	cfg.Data.LookbackYears = 12
	require.NoError(t, cfg.Save(path))

	t.Setenv("FRED_API_KEY", "")
	loaded, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 12, loaded.Data.LookbackYears)
	assert.Equal(t, cfg.Provider.APIKey, loaded.Provider.APIKey)
}
