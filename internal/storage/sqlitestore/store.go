package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rentaltrack/rentaltrack/internal/storage"
)

// Store is a storage.Store over the records table.
type Store struct {
	db *DB
}

// OpenStore opens the database at path and brings its schema up to date.
func OpenStore(ctx context.Context, path string) (*Store, *SchemaResult, error) {
	logger := slog.Default()

	db, err := Open(ctx, path, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", storage.ErrStorageUnavailable, err)
	}

	result, err := ensureSchema(ctx, db, logger)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("%w: %w", storage.ErrStorageUnavailable, err)
	}
	return &Store{db: db}, result, nil
}

// DB returns the underlying database.
func (s *Store) DB() *DB {
	return s.db
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ReadTable returns the rows of table in written order. A stored row whose
// fields do not decode is reported through *storage.MalformedRowsError.
func (s *Store) ReadTable(ctx context.Context, table storage.Table) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT fields FROM records WHERE table_name = ? ORDER BY position", string(table))
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w: %w", table, storage.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var (
		out       [][]string
		malformed *storage.MalformedRowsError
	)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		var fields []string
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			if malformed == nil {
				malformed = &storage.MalformedRowsError{Table: table}
			}
			out = append(out, nil)
			malformed.Rows = append(malformed.Rows, &storage.RowError{Line: len(out), Err: err})
			continue
		}
		out = append(out, fields)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", table, err)
	}

	if malformed != nil {
		return out, malformed
	}
	return out, nil
}

// WriteTable replaces table with rows in a single transaction.
func (s *Store) WriteTable(ctx context.Context, table storage.Table, rows [][]string) error {
	return s.db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE table_name = ?", string(table)); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}

		stmt, err := tx.PrepareContext(ctx, "INSERT INTO records (table_name, position, fields) VALUES (?, ?, ?)")
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		for i, row := range rows {
			if row == nil {
				row = []string{}
			}
			fields, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("encoding %s row %d: %w", table, i, err)
			}
			if _, err := stmt.ExecContext(ctx, string(table), i, string(fields)); err != nil {
				return fmt.Errorf("inserting %s row %d: %w", table, i, err)
			}
		}
		return nil
	})
}

// TableCounts returns the number of rows stored per table.
func (s *Store) TableCounts(ctx context.Context) (map[storage.Table]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT table_name, COUNT(*) FROM records GROUP BY table_name")
	if err != nil {
		return nil, fmt.Errorf("counting records: %w", err)
	}
	defer rows.Close()

	counts := make(map[storage.Table]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[storage.Table(name)] = n
	}
	return counts, rows.Err()
}
