// Package sqlitestore keeps the record tables in a single SQLite database.
// It is the export target for the flat-file store and can also serve as the
// primary store.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

var errClosed = errors.New("database is closed")

// Applied to every connection through the DSN.
var pragmas = []string{
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"busy_timeout(5000)",
}

// DB is the SQLite file behind a Store. It holds a single connection, so
// table rewrites are serialised.
type DB struct {
	*sql.DB
	path   string
	logger *slog.Logger

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func dsn(path string) string {
	q := url.Values{}
	q.Set("_txlock", "immediate")
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	return "file:" + path + "?" + q.Encode()
}

// Open opens or creates the database at path. A file that fails the
// integrity check is refused: its records cannot be trusted.
func Open(ctx context.Context, path string, logger *slog.Logger) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	db := &DB{DB: sqlDB, path: path, logger: logger}
	if err := db.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("connecting to %s: %w", path, err)
	}
	if err := db.CheckIntegrity(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}

	logger.Debug("opened database", "path", path)
	return db, nil
}

// CheckIntegrity runs SQLite's integrity check and returns every reported
// problem in one error.
func (db *DB) CheckIntegrity(ctx context.Context) error {
	rows, err := db.QueryContext(ctx, "PRAGMA integrity_check")
	if err != nil {
		return fmt.Errorf("checking integrity of %s: %w", db.path, err)
	}
	defer rows.Close()

	var problems []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return fmt.Errorf("checking integrity of %s: %w", db.path, err)
		}
		if line != "ok" {
			problems = append(problems, line)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("checking integrity of %s: %w", db.path, err)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s failed integrity check: %s", db.path, strings.Join(problems, "; "))
	}
	return nil
}

// checkpoint folds the write-ahead log into the main file so an exported
// database is a single self-contained file.
func (db *DB) checkpoint(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("checkpointing %s: %w", db.path, err)
	}
	return nil
}

// Close checkpoints and closes the database. Later calls return the first
// result.
func (db *DB) Close() error {
	db.closeOnce.Do(func() {
		db.closed.Store(true)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.checkpoint(ctx); err != nil {
			db.logger.Warn("final checkpoint failed", "path", db.path, "error", err)
		}

		if err := db.DB.Close(); err != nil {
			db.closeErr = fmt.Errorf("closing %s: %w", db.path, err)
			return
		}
		db.logger.Debug("database closed", "path", db.path)
	})
	return db.closeErr
}

// IsClosed reports whether Close has been called.
func (db *DB) IsClosed() bool {
	return db.closed.Load()
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// inTx runs fn in a transaction, committing when fn succeeds.
func (db *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	if db.IsClosed() {
		return fmt.Errorf("%s: %w", db.path, errClosed)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = errors.Join(err, fmt.Errorf("rolling back: %w", rbErr))
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
