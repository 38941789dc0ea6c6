package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override the configuration file.
const (
	EnvStorageBackend = "RENTALTRACK_STORAGE_BACKEND"
	EnvDataDir        = "RENTALTRACK_DATA_DIR"
	EnvSQLitePath     = "RENTALTRACK_SQLITE_PATH"
	EnvLogLevel       = "RENTALTRACK_LOG_LEVEL"
	EnvLogFile        = "RENTALTRACK_LOG_FILE"
	EnvRefreshOnLoad  = "RENTALTRACK_REFRESH_ON_LOAD"
	EnvMetricsFile    = "RENTALTRACK_METRICS_FILE"
	EnvSeed           = "RENTALTRACK_SEED"
)

// DefaultEnvFile is read by LoadEnvFile when no path is given.
const DefaultEnvFile = ".env"

// LoadEnvFile loads variables from a .env file into the process environment.
// Variables already set are left alone. An empty path reads DefaultEnvFile
// if it exists; an explicit path must exist.
func LoadEnvFile(path string) error {
	if path == "" {
		if !fileExists(DefaultEnvFile) {
			return nil
		}
		path = DefaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("env file %s: %w", path, err)
		}
		return fmt.Errorf("parsing env file %s: %w", path, err)
	}
	return nil
}

// LookupFunc reports the value of an environment variable.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides cfg with any RENTALTRACK_* variables lookup reports.
// Pass os.LookupEnv for the process environment.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	strs := []struct {
		key string
		set func(string)
	}{
		{EnvStorageBackend, func(v string) { cfg.Storage.Backend = StorageBackend(v) }},
		{EnvDataDir, func(v string) { cfg.Storage.DataDir = v }},
		{EnvSQLitePath, func(v string) { cfg.Storage.SQLitePath = v }},
		{EnvLogLevel, func(v string) { cfg.Logging.Level = LogLevel(v) }},
		{EnvLogFile, func(v string) { cfg.Logging.File = v }},
		{EnvMetricsFile, func(v string) { cfg.Metrics.Textfile = v }},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok && v != "" {
			s.set(v)
		}
	}

	var errs []error

	if v, ok := lookup(EnvRefreshOnLoad); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not a boolean", EnvRefreshOnLoad, v))
		} else {
			cfg.Agreements.RefreshOnLoad = b
		}
	}

	if v, ok := lookup(EnvSeed); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not an integer", EnvSeed, v))
		} else {
			cfg.Seed.RandomSeed = n
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
