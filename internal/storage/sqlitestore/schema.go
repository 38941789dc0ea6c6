package sqlitestore

import (
	"cmp"
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// NNN_description.sql, numbered from 001 without gaps.
var schemaFile = regexp.MustCompile(`^(\d{3})_([a-z0-9_]+)\.sql$`)

type schemaStep struct {
	Version int
	Name    string
	SQL     string
}

// SchemaResult reports what bringing a database up to date did. The schema
// version lives in SQLite's user_version.
type SchemaResult struct {
	Previous int
	Current  int
	Applied  []string
}

func loadSchema() ([]schemaStep, error) {
	entries, err := fs.ReadDir(schemaFS, "schema")
	if err != nil {
		return nil, fmt.Errorf("reading embedded schema: %w", err)
	}

	var steps []schemaStep
	for _, e := range entries {
		m := schemaFile.FindStringSubmatch(e.Name())
		if m == nil {
			return nil, fmt.Errorf("unexpected schema file %q", e.Name())
		}
		version, _ := strconv.Atoi(m[1])
		body, err := fs.ReadFile(schemaFS, "schema/"+e.Name())
		if err != nil {
			return nil, fmt.Errorf("reading schema file %s: %w", e.Name(), err)
		}
		steps = append(steps, schemaStep{Version: version, Name: m[2], SQL: string(body)})
	}

	slices.SortFunc(steps, func(a, b schemaStep) int { return cmp.Compare(a.Version, b.Version) })
	for i, s := range steps {
		if s.Version != i+1 {
			return nil, fmt.Errorf("schema step %03d_%s: expected version %d", s.Version, s.Name, i+1)
		}
	}
	return steps, nil
}

// ensureSchema applies every embedded step above the database's
// user_version, each in its own transaction.
func ensureSchema(ctx context.Context, db *DB, logger *slog.Logger) (*SchemaResult, error) {
	steps, err := loadSchema()
	if err != nil {
		return nil, err
	}

	var current int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return nil, fmt.Errorf("reading schema version: %w", err)
	}
	res := &SchemaResult{Previous: current, Current: current}
	if current > len(steps) {
		return res, fmt.Errorf("schema version %d is newer than this build supports (%d)", current, len(steps))
	}

	for _, step := range steps[current:] {
		err := db.inTx(ctx, func(tx *sql.Tx) error {
			for _, stmt := range statements(step.SQL) {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("%w\nSQL: %s", err, stmt)
				}
			}
			// PRAGMA takes no bound parameters.
			_, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", step.Version))
			return err
		})
		if err != nil {
			return res, fmt.Errorf("applying schema step %03d_%s: %w", step.Version, step.Name, err)
		}

		logger.Debug("applied schema step", "version", step.Version, "name", step.Name)
		res.Applied = append(res.Applied, step.Name)
		res.Current = step.Version
	}
	return res, nil
}

// statements splits a schema file into statements. A statement ends on a
// line whose last character is a semicolon; comment lines are dropped.
func statements(script string) []string {
	var (
		out []string
		cur []string
	)
	flush := func() {
		stmt := strings.TrimSuffix(strings.TrimSpace(strings.Join(cur, "\n")), ";")
		if stmt != "" {
			out = append(out, stmt)
		}
		cur = nil
	}

	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cur = append(cur, line)
		if strings.HasSuffix(trimmed, ";") {
			flush()
		}
	}
	flush()
	return out
}
