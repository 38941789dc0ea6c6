// Package config provides configuration management for rentaltrack.
// Configurations are loaded from TOML files with XDG-compliant paths and
// may be overridden from the environment or a .env file.
package config

import (
	"errors"
	"fmt"
)

// Config holds the complete application configuration.
type Config struct {
	Storage    StorageConfig    `toml:"storage"`
	Logging    LoggingConfig    `toml:"logging"`
	Agreements AgreementsConfig `toml:"agreements"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Seed       SeedConfig       `toml:"seed"`
}

// StorageBackend selects where record tables live.
type StorageBackend string

const (
	BackendCSV    StorageBackend = "csv"
	BackendSQLite StorageBackend = "sqlite"
)

// StorageConfig controls where the portfolio is loaded from and saved to.
type StorageConfig struct {
	Backend    StorageBackend `toml:"backend"`
	DataDir    string         `toml:"data_dir"`
	SQLitePath string         `toml:"sqlite_path"`
}

// LoggingConfig controls application logging.
type LoggingConfig struct {
	Level LogLevel `toml:"level"`
	File  string   `toml:"file"`
}

// LogLevel defines logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// AgreementsConfig controls agreement status maintenance.
type AgreementsConfig struct {
	// RefreshOnLoad re-derives statuses after every load and saves when
	// any changed.
	RefreshOnLoad bool `toml:"refresh_on_load"`
}

// MetricsConfig controls the Prometheus textfile written after each run.
type MetricsConfig struct {
	Textfile string `toml:"textfile"`
}

// SeedConfig controls the demo portfolio generator.
type SeedConfig struct {
	RandomSeed int64 `toml:"random_seed"`
	Owners     int   `toml:"owners"`
	Hosts      int   `toml:"hosts"`
	Tenants    int   `toml:"tenants"`
	Properties int   `toml:"properties"`
	Agreements int   `toml:"agreements"`
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("storage: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Seed.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("seed: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the storage configuration is valid.
func (s *StorageConfig) Validate() error {
	var errs []error

	switch s.Backend {
	case BackendCSV:
		if s.DataDir == "" {
			errs = append(errs, errors.New("data_dir is required for the csv backend"))
		}
	case BackendSQLite:
		if s.SQLitePath == "" {
			errs = append(errs, errors.New("sqlite_path is required for the sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid backend: %s", s.Backend))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the logging configuration is valid.
func (l *LoggingConfig) Validate() error {
	validLevels := map[LogLevel]bool{
		LogLevelDebug: true,
		LogLevelInfo:  true,
		LogLevelWarn:  true,
		LogLevelError: true,
	}

	if !validLevels[l.Level] && l.Level != "" {
		return fmt.Errorf("invalid log level: %s", l.Level)
	}

	return nil
}

// Validate checks that the seed counts are usable.
func (s *SeedConfig) Validate() error {
	var errs []error

	counts := []struct {
		name string
		n    int
	}{
		{"owners", s.Owners},
		{"hosts", s.Hosts},
		{"tenants", s.Tenants},
		{"properties", s.Properties},
		{"agreements", s.Agreements},
	}
	for _, c := range counts {
		if c.n < 0 {
			errs = append(errs, fmt.Errorf("%s must be non-negative", c.name))
		}
	}

	if s.Agreements > s.Properties {
		errs = append(errs, errors.New("agreements must not exceed properties"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Default returns a configuration with sensible default values.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:    BackendCSV,
			DataDir:    "data",
			SQLitePath: "rentaltrack.db",
		},
		Logging: LoggingConfig{
			Level: LogLevelInfo,
			File:  "",
		},
		Agreements: AgreementsConfig{
			RefreshOnLoad: false,
		},
		Metrics: MetricsConfig{
			Textfile: "",
		},
		Seed: SeedConfig{
			RandomSeed: 1987,
			Owners:     8,
			Hosts:      4,
			Tenants:    30,
			Properties: 20,
			Agreements: 15,
		},
	}
}
