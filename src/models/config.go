package models

// MConfig Structure
type MConfig struct {
	Name      string           `yaml:"name"`
	Host      string           `yaml:"host"`
	Port      int              `yaml:"port"`
	LogLevel  string           `yaml:"log_level"`
	Provider  MProviderConfig  `yaml:"provider"`
	Cache     MCacheConfig     `yaml:"cache"`
	Data      MDataConfig      `yaml:"data"`
	Network   MNetworkConfig   `yaml:"network"`
	Simulator MSimulatorConfig `yaml:"simulator"`
}

type MProviderConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type MCacheConfig struct {
	TTLSeconds int    `yaml:"ttl_seconds"`
	DSN        string `yaml:"dsn"`
}

type MDataConfig struct {
	LookbackYears         int `yaml:"lookback_years"`
	UpdateIntervalSeconds int `yaml:"update_interval_seconds"`
}

type MNetworkConfig struct {
	Enabled            bool     `yaml:"enabled"`
	Proxies            []string `yaml:"proxies"`
	RequestTimeout     int      `yaml:"timeout"`
	MaxRetries         int      `yaml:"retries"`
	ConcurrentRequests int      `yaml:"concurrent_requests"`
	UserAgent          string   `yaml:"user_agent"`
}

type MSimulatorConfig struct {
	HorizonPeriods int     `yaml:"horizon_periods"`
	DefaultRate    float64 `yaml:"default_rate"`
	MinRate        float64 `yaml:"min_rate"`
	MaxRate        float64 `yaml:"max_rate"`
}
