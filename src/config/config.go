package config

import (
	"fmt"
	"os"

	"macro-observer/src/helpers"
	"macro-observer/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Lookback bounds in years. FRED history is long; 20 years of daily data is
// the most the dashboard charts remain legible at.
const (
	MinLookbackYears = 3
	MaxLookbackYears = 20
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file. The FRED_API_KEY
// environment variable overrides the key in the file; a missing key is fatal
// here, before any fetch is attempted.
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}

	// 3. Environment override for the credential
	if key := os.Getenv("FRED_API_KEY"); key != "" {
		config.Provider.APIKey = key
	}

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration (Flattened)
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Provider configuration
	if c.Provider.APIKey == "" {
		return helpers.NewCredentialError("provider API key is required (set provider.api_key or FRED_API_KEY)")
	}
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider base URL cannot be empty")
	}

	// Validate Cache configuration
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache TTL must be greater than 0")
	}
	if c.Cache.DSN == "" {
		return fmt.Errorf("cache DSN cannot be empty (use :memory: for the default process-local store)")
	}

	// Validate Data configuration
	if c.Data.LookbackYears < MinLookbackYears || c.Data.LookbackYears > MaxLookbackYears {
		return fmt.Errorf("lookback years must be between %d and %d, got %d",
			MinLookbackYears, MaxLookbackYears, c.Data.LookbackYears)
	}
	if c.Data.UpdateIntervalSeconds <= 0 {
		return fmt.Errorf("update interval must be greater than 0")
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.Network.ConcurrentRequests <= 0 {
		return fmt.Errorf("concurrent requests must be greater than 0")
	}

	// Validate Simulator configuration
	if c.Simulator.HorizonPeriods <= 0 || c.Simulator.HorizonPeriods > 24 {
		return fmt.Errorf("simulator horizon must be between 1 and 24 periods, got %d", c.Simulator.HorizonPeriods)
	}
	if c.Simulator.MinRate >= c.Simulator.MaxRate {
		return fmt.Errorf("simulator rate bounds are inverted: min %f >= max %f", c.Simulator.MinRate, c.Simulator.MaxRate)
	}
	if c.Simulator.DefaultRate < c.Simulator.MinRate || c.Simulator.DefaultRate > c.Simulator.MaxRate {
		return fmt.Errorf("simulator default rate %f outside bounds [%f, %f]",
			c.Simulator.DefaultRate, c.Simulator.MinRate, c.Simulator.MaxRate)
	}

	return nil
}

// -----------------------------------------------------------------------------

// SetLookbackYears updates the lookback window at runtime, keeping the
// operator bounds.
func (c *Config) SetLookbackYears(years int) error {
	if years < MinLookbackYears || years > MaxLookbackYears {
		return helpers.NewValidationError(fmt.Sprintf("lookback years must be between %d and %d, got %d",
			MinLookbackYears, MaxLookbackYears, years))
	}
	c.Data.LookbackYears = years
	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
