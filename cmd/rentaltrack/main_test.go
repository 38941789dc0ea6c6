package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rentaltrack/rentaltrack/internal/config"
)

// testEnv writes a config pointing every path into a temp directory.
func testEnv(t *testing.T) (cfgPath, base string) {
	t.Helper()
	for _, key := range []string{
		config.EnvStorageBackend, config.EnvDataDir, config.EnvSQLitePath, config.EnvLogLevel,
		config.EnvLogFile, config.EnvRefreshOnLoad, config.EnvMetricsFile, config.EnvSeed,
	} {
		t.Setenv(key, "")
	}

	base = t.TempDir()
	cfg := config.Default()
	cfg.Storage.DataDir = filepath.Join(base, "data")
	cfg.Logging.Level = config.LogLevelError
	cfg.Logging.File = filepath.Join(base, "logs", "rentaltrack.log")
	cfg.Metrics.Textfile = filepath.Join(base, "rentaltrack.prom")

	cfgPath = filepath.Join(base, config.DefaultConfigFileName)
	if err := config.Save(cfg, cfgPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return cfgPath, base
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	cfgPath, base := testEnv(t)

	t.Run("Version", func(t *testing.T) {
		out, err := execute(t, "version")
		if err != nil || !strings.Contains(out, "rentaltrack version") {
			t.Fatalf("version = %q, %v", out, err)
		}
	})

	t.Run("Check on an empty store", func(t *testing.T) {
		out, err := execute(t, "--config", cfgPath, "check", "--strict")
		if err != nil {
			t.Fatalf("check error = %v", err)
		}
		if !strings.Contains(out, "owners=0") {
			t.Errorf("check output = %q", out)
		}
	})

	t.Run("Seed then check", func(t *testing.T) {
		out, err := execute(t, "--config", cfgPath, "seed")
		if err != nil {
			t.Fatalf("seed error = %v", err)
		}
		if !strings.Contains(out, "owners=8") {
			t.Errorf("seed output = %q", out)
		}
		if _, err := os.Stat(filepath.Join(base, "data", "owners.txt")); err != nil {
			t.Errorf("owners table not written: %v", err)
		}

		out, err = execute(t, "--config", cfgPath, "check", "--strict")
		if err != nil {
			t.Fatalf("check error = %v", err)
		}
		if !strings.Contains(out, "properties=20") || strings.Contains(out, "problems") {
			t.Errorf("check output = %q", out)
		}
	})

	t.Run("Seeding twice leaves the store alone", func(t *testing.T) {
		before, _ := os.ReadFile(filepath.Join(base, "data", "owners.txt"))
		if _, err := execute(t, "--config", cfgPath, "seed", "--random-seed", "7"); err != nil {
			t.Fatalf("seed error = %v", err)
		}
		after, _ := os.ReadFile(filepath.Join(base, "data", "owners.txt"))
		if !bytes.Equal(before, after) {
			t.Error("owners table changed on second seed")
		}
	})

	t.Run("Refresh", func(t *testing.T) {
		out, err := execute(t, "--config", cfgPath, "refresh")
		if err != nil {
			t.Fatalf("refresh error = %v", err)
		}
		if !strings.Contains(out, "current") && !strings.Contains(out, "updated") {
			t.Errorf("refresh output = %q", out)
		}
	})

	t.Run("Export to SQLite", func(t *testing.T) {
		dbPath := filepath.Join(base, "export", "portfolio.db")
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			t.Fatal(err)
		}
		out, err := execute(t, "--config", cfgPath, "export", dbPath)
		if err != nil {
			t.Fatalf("export error = %v", err)
		}
		if !strings.Contains(out, "properties") {
			t.Errorf("export output = %q", out)
		}
		if _, err := os.Stat(dbPath); err != nil {
			t.Errorf("database not created: %v", err)
		}
	})

	t.Run("Metrics textfile", func(t *testing.T) {
		b, err := os.ReadFile(filepath.Join(base, "rentaltrack.prom"))
		if err != nil {
			t.Fatalf("textfile not written: %v", err)
		}
		if !strings.Contains(string(b), "rentaltrack_") {
			t.Errorf("textfile = %q", b)
		}
	})

	t.Run("Bad config", func(t *testing.T) {
		if _, err := execute(t, "--config", filepath.Join(base, "absent.toml"), "check"); err == nil {
			t.Fatal("expected an error for a missing config file")
		}
	})
}
