package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Analytics sources
const (
	AnalyticsServer = "server"
	AnalyticsLocal  = "local"
)

// Output formats
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Config is the complete client configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	API       APIConfig       `mapstructure:"api" yaml:"api"`
	Session   SessionConfig   `mapstructure:"session" yaml:"session"`
	Analytics AnalyticsConfig `mapstructure:"analytics" yaml:"analytics"`
	Offline   OfflineConfig   `mapstructure:"offline" yaml:"offline"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// APIConfig points at the finance backend.
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// SessionConfig locates the persisted session.
type SessionConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// AnalyticsConfig selects where derived views come from.
type AnalyticsConfig struct {
	Source string `mapstructure:"source" yaml:"source"`
}

// OfflineConfig enables the local file backend.
type OfflineConfig struct {
	Enabled          bool   `mapstructure:"enabled" yaml:"enabled"`
	TransactionsFile string `mapstructure:"transactions_file" yaml:"transactions_file"`
	CategoriesFile   string `mapstructure:"categories_file" yaml:"categories_file"`
}

// OutputConfig controls how command results are printed.
type OutputConfig struct {
	Format         string `mapstructure:"format" yaml:"format"`
	CurrencySymbol string `mapstructure:"currency_symbol" yaml:"currency_symbol"`
}

// InitializeConfig loads the configuration with the usual precedence:
// defaults, then config.yaml, then FINTRACK_* environment variables.
func InitializeConfig() (*Config, error) {
	return InitializeConfigFromFile("")
}

// InitializeConfigFromFile is InitializeConfig reading an explicit config
// file instead of searching the default locations. A missing explicit file
// is an error.
func InitializeConfigFromFile(file string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultDir())
		v.AddConfigPath(DirName)
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("FINTRACK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless explicit)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.resolvePaths()

	// 5. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout_seconds", 30)

	v.SetDefault("session.file", "")

	v.SetDefault("analytics.source", AnalyticsServer)

	v.SetDefault("offline.enabled", false)
	v.SetDefault("offline.transactions_file", "")
	v.SetDefault("offline.categories_file", "")

	v.SetDefault("output.format", OutputTable)
	v.SetDefault("output.currency_symbol", "$")
}

// resolvePaths fills empty file locations with their place under the
// per-user directory.
func (c *Config) resolvePaths() {
	dir := DefaultDir()
	if c.Session.File == "" {
		c.Session.File = filepath.Join(dir, "session.yaml")
	}
	if c.Offline.TransactionsFile == "" {
		c.Offline.TransactionsFile = filepath.Join(dir, "transactions.csv")
	}
	if c.Offline.CategoriesFile == "" {
		c.Offline.CategoriesFile = filepath.Join(dir, "categories.yaml")
	}
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if !config.Offline.Enabled {
		u, err := url.Parse(config.API.BaseURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("api.base_url must be an absolute http(s) URL, got: %q", config.API.BaseURL)
		}
	}

	if config.API.TimeoutSeconds < 1 || config.API.TimeoutSeconds > 300 {
		return fmt.Errorf("api.timeout_seconds must be between 1 and 300, got: %d", config.API.TimeoutSeconds)
	}

	switch config.Analytics.Source {
	case AnalyticsServer, AnalyticsLocal:
	default:
		return fmt.Errorf("analytics.source must be 'server' or 'local', got: %s", config.Analytics.Source)
	}

	switch config.Output.Format {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("output.format must be 'table', 'json' or 'yaml', got: %s", config.Output.Format)
	}

	return nil
}
