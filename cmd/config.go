package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/carry"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is the content of cts.toml.
type Config struct {
	DataDir    string        `toml:"data_dir"`   // folder read by source.Files
	Portfolio  string        `toml:"portfolio"`  // default portfolio folder
	Instrument string        `toml:"instrument"` // default fund
	Currency   string        `toml:"currency"`   // currency of fund prices
	Prices     PricesConfig  `toml:"prices"`
	Logging    LoggingConfig `toml:"logging"`
}

// PricesConfig selects where fund prices come from. Without URL prices are read from the data
// folder.
type PricesConfig struct {
	URL        string `toml:"url"` // "{instrument}" and "{from}" are replaced
	Path       string `toml:"path"`
	DateField  string `toml:"date_field"`
	PriceField string `toml:"price_field"`
	RateLimit  int    `toml:"rate_limit"` // requests per second
	Timeout    string `toml:"timeout"`
	CacheTTL   string `toml:"cache_ttl"`
	CacheDir   string `toml:"cache_dir"` // responses of the day are kept there, empty disables it
	History    int    `toml:"history"`   // days of prices read before the first day of interest
}

// GetTimeout parses and returns the timeout duration.
func (c *PricesConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetCacheTTL parses and returns the cache time to live.
func (c *PricesConfig) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		DataDir:    ".",
		Portfolio:  "default",
		Instrument: "FCI",
		Currency:   carry.ARS,
		Prices: PricesConfig{
			Path:       "$",
			DateField:  "fecha",
			PriceField: "vcp",
			RateLimit:  2,
			Timeout:    "30s",
			CacheTTL:   "15m",
			CacheDir:   filepath.Join(os.TempDir(), "cts"),
			History:    30,
		},
		Logging: LoggingConfig{Level: "warn"},
	}
}

// LoadConfig loads configuration from files with environment overrides. Missing files are
// skipped, later files override earlier ones.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()
	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(config)
	config.Currency = strings.ToUpper(config.Currency)
	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv(EnvDataDir); v != "" {
		config.DataDir = v
	}
	if v := os.Getenv(EnvPortfolio); v != "" {
		config.Portfolio = v
	}
	if v := os.Getenv(EnvInstrument); v != "" {
		config.Instrument = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("CTS_PRICES_URL"); v != "" {
		config.Prices.URL = v
	}
	if v := os.Getenv("CTS_PRICES_HISTORY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Prices.History = n
		}
	}
}
