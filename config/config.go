// Package config loads engine configuration from omega.yml and the
// environment.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config represents the Omega configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig represents database configuration.
type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"`
	DSN        string `mapstructure:"dsn"`
	MaxRetries int    `mapstructure:"max_retries"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads the configuration from omega.yml or omega.yaml in the current
// directory, falling back to defaults when no file exists.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom loads the configuration from the given directory.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "file:omega.db")
	v.SetDefault("database.max_retries", 3)
	v.SetDefault("log.level", "info")

	// Set config name and paths
	v.SetConfigName("omega")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	// Enable environment variable support
	v.SetEnvPrefix("omega")
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig validates the configuration.
func validateConfig(cfg *Config) error {
	if cfg.Database.Driver == "" {
		return fmt.Errorf("database.driver must not be empty")
	}
	if cfg.Database.MaxRetries < 0 {
		return fmt.Errorf("database.max_retries must not be negative, got: %d", cfg.Database.MaxRetries)
	}
	return nil
}
