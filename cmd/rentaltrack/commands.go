package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rentaltrack/rentaltrack/internal/manager"
	"github.com/rentaltrack/rentaltrack/internal/reconciler"
	"github.com/rentaltrack/rentaltrack/internal/seed"
	"github.com/rentaltrack/rentaltrack/internal/storage"
)

func checkCmd(opts *rootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load the portfolio and report skipped records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				r, rep, err := a.load(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				printReport(out, rep)
				printCounts(out, r.Set().Counts())

				if strict && rep.TotalSkipped() > 0 {
					return fmt.Errorf("%d records skipped", rep.TotalSkipped())
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any record was skipped")
	return cmd
}

func refreshCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Re-derive agreement statuses from today's date and save changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				r, _, err := a.load(ctx)
				if err != nil {
					return err
				}

				changed, err := r.Refresh(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(changed) == 0 {
					fmt.Fprintln(out, "All agreement statuses are current.")
					return nil
				}
				for _, id := range changed {
					agr, _ := r.Set().Agreements.Get(id)
					fmt.Fprintf(out, "%s -> %s\n", id, agr.Status)
				}
				fmt.Fprintf(out, "%d agreements updated.\n", len(changed))
				return nil
			})
		},
	}
}

func seedCmd(opts *rootOptions) *cobra.Command {
	var randomSeed int64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a demo portfolio into an empty store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				r, _, err := a.load(ctx)
				if err != nil {
					return err
				}

				sc := a.cfg.Seed
				cfg := seed.Config{
					Owners:     sc.Owners,
					Hosts:      sc.Hosts,
					Tenants:    sc.Tenants,
					Properties: sc.Properties,
					Agreements: sc.Agreements,
					RandomSeed: sc.RandomSeed,
				}
				if cmd.Flags().Changed("random-seed") {
					cfg.RandomSeed = randomSeed
				}

				counts, err := seed.NewGenerator(r.Set(), cfg, a.logger).Generate(ctx)
				if errors.Is(err, seed.ErrNotEmpty) {
					a.logger.Warn("store already contains data, skipping seed generation",
						"owners", counts.Owners,
						"properties", counts.Properties,
					)
					return nil
				}
				if err != nil {
					return fmt.Errorf("generating seed data: %w", err)
				}

				if err := r.SaveAll(ctx); err != nil {
					return fmt.Errorf("saving seed data: %w", err)
				}
				printCounts(cmd.OutOrStdout(), counts)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&randomSeed, "random-seed", 0, "Override the configured random seed")
	return cmd
}

func exportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <sqlite-path>",
		Short: "Copy the portfolio into a SQLite database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				r, _, err := a.load(ctx)
				if err != nil {
					return err
				}

				dst, err := a.openSQLite(ctx, args[0])
				if err != nil {
					return err
				}
				if err := r.CopyTo(ctx, dst); err != nil {
					return fmt.Errorf("exporting: %w", err)
				}

				counts, err := dst.TableCounts(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, table := range storage.Tables {
					fmt.Fprintf(out, "%-28s %d\n", table, counts[table])
				}
				return nil
			})
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rentaltrack version %s (built %s)\n", Version, BuildTime)
		},
	}
}

func printReport(w io.Writer, rep *reconciler.LoadReport) {
	fmt.Fprintf(w, "%-28s %8s %8s\n", "TABLE", "LOADED", "SKIPPED")
	for _, table := range storage.Tables {
		fmt.Fprintf(w, "%-28s %8d %8d\n", table.FileName(), rep.Loaded[table], rep.Skipped[table])
	}

	if len(rep.Problems) > 0 {
		fmt.Fprintf(w, "\n%d problems:\n", len(rep.Problems))
		for _, p := range rep.Problems {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
}

func printCounts(w io.Writer, c manager.Counts) {
	parts := []string{
		fmt.Sprintf("owners=%d", c.Owners),
		fmt.Sprintf("hosts=%d", c.Hosts),
		fmt.Sprintf("tenants=%d", c.Tenants),
		fmt.Sprintf("properties=%d", c.Properties),
		fmt.Sprintf("agreements=%d", c.Agreements),
		fmt.Sprintf("payments=%d", c.Payments),
	}
	fmt.Fprintln(w, strings.Join(parts, " "))
}
