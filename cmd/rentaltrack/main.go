// rentaltrack: rental property portfolio management.
//
// Loads a portfolio of owners, hosts, tenants, properties and rental
// agreements from flat record tables, keeps agreement statuses current and
// writes the portfolio back.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rentaltrack/rentaltrack/internal/config"
	"github.com/rentaltrack/rentaltrack/internal/manager"
	"github.com/rentaltrack/rentaltrack/internal/metrics"
	"github.com/rentaltrack/rentaltrack/internal/reconciler"
	"github.com/rentaltrack/rentaltrack/internal/storage"
	"github.com/rentaltrack/rentaltrack/internal/storage/csvstore"
	"github.com/rentaltrack/rentaltrack/internal/storage/sqlitestore"
)

// Build information (set via ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		slog.Info("received shutdown signal", "signal", sig)
		cancel()

		// Force exit after timeout
		time.AfterFunc(10*time.Second, func() {
			slog.Error("forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// rootOptions holds the persistent flags.
type rootOptions struct {
	configPath string
	envFile    string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "rentaltrack",
		Short:         "Rental property portfolio management",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Path to a .env file (default ./.env if present)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		checkCmd(opts),
		refreshCmd(opts),
		seedCmd(opts),
		exportCmd(opts),
		versionCmd(),
	)
	return rootCmd
}

// app is the state shared by the commands of one run.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	closers []func() error
}

// setup loads configuration and builds the logger and metrics.
func (o *rootOptions) setup() (*app, error) {
	if err := config.LoadEnvFile(o.envFile); err != nil {
		return nil, err
	}

	cfg, cfgPath, err := config.Load(o.configPath, true)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	a := &app{cfg: cfg, metrics: metrics.New()}

	logLevel := slog.LevelInfo
	if o.debug {
		logLevel = slog.LevelDebug
	} else {
		switch cfg.Logging.Level {
		case config.LogLevelDebug:
			logLevel = slog.LevelDebug
		case config.LogLevelWarn:
			logLevel = slog.LevelWarn
		case config.LogLevelError:
			logLevel = slog.LevelError
		}
	}

	var logHandler slog.Handler
	logPath, err := config.EnsureLogDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	if logPath != "" {
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		a.closers = append(a.closers, logFile.Close)

		logHandler = slog.NewJSONHandler(logFile, &slog.HandlerOptions{
			Level: logLevel,
		})
	} else {
		logHandler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		})
	}

	a.logger = slog.New(logHandler)
	slog.SetDefault(a.logger)

	a.logger.Info("rentaltrack starting",
		"version", Version,
		"config_path", cfgPath,
		"backend", cfg.Storage.Backend,
	)
	return a, nil
}

// openStore opens the configured record store.
func (a *app) openStore(ctx context.Context) (storage.Store, error) {
	switch a.cfg.Storage.Backend {
	case config.BackendSQLite:
		path, err := config.EnsureSQLiteDir(a.cfg)
		if err != nil {
			return nil, err
		}
		return a.openSQLite(ctx, path)
	default:
		dir, err := config.EnsureDataDir(a.cfg)
		if err != nil {
			return nil, err
		}
		a.logger.Debug("using flat-file store", "dir", dir)
		return csvstore.New(dir), nil
	}
}

func (a *app) openSQLite(ctx context.Context, path string) (*sqlitestore.Store, error) {
	store, result, err := sqlitestore.OpenStore(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.closers = append(a.closers, store.Close)
	a.logger.Debug("opened database", "path", store.DB().Path())

	if len(result.Applied) > 0 {
		a.logger.Info("updated database schema",
			"steps", len(result.Applied),
			"from_version", result.Previous,
			"to_version", result.Current,
		)
	}
	return store, nil
}

// newReconciler wires an empty manager set to store.
func (a *app) newReconciler(store storage.Store) *reconciler.Reconciler {
	set := manager.NewSet(manager.WithLogger(a.logger))
	return reconciler.New(store, set,
		reconciler.WithLogger(a.logger),
		reconciler.WithMetrics(a.metrics),
	)
}

// load opens the store and loads the portfolio, refreshing statuses when
// configured to.
func (a *app) load(ctx context.Context) (*reconciler.Reconciler, *reconciler.LoadReport, error) {
	store, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	r := a.newReconciler(store)
	rep, err := r.LoadAll(ctx)
	if err != nil {
		return nil, rep, err
	}

	if a.cfg.Agreements.RefreshOnLoad {
		changed, err := r.Refresh(ctx)
		if err != nil {
			return nil, rep, fmt.Errorf("refreshing statuses: %w", err)
		}
		if len(changed) > 0 {
			a.logger.Info("refreshed agreement statuses on load", "changed", len(changed))
		}
	}
	return r, rep, nil
}

// close writes the metrics textfile and releases resources in reverse order.
func (a *app) close() {
	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			a.logger.Error("writing metrics textfile", "path", path, "error", err)
		}
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error("error closing resource", "error", err)
		}
	}
}

// run sets up the app, calls fn and always closes the app.
func (o *rootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := o.setup()
	if err != nil {
		return err
	}
	defer a.close()

	return fn(cmd.Context(), a)
}
