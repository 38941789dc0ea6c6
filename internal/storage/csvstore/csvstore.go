// Package csvstore keeps each table in its own comma-separated file inside a
// data directory. Fields containing commas, quotes or newlines are quoted.
package csvstore

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rentaltrack/rentaltrack/internal/storage"
)

// Store is a flat-file storage.Store rooted at a directory.
type Store struct {
	dir string
}

// New returns a store for dir. The directory must exist before the first
// read or write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file backing table.
func (s *Store) Path(table storage.Table) string {
	return filepath.Join(s.dir, table.FileName())
}

func (s *Store) checkDir() error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("data directory %s: %w: %w", s.dir, storage.ErrStorageUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data directory %s is not a directory: %w", s.dir, storage.ErrStorageUnavailable)
	}
	return nil
}

// ReadTable parses every row of table. A missing file is an empty table;
// a missing directory is ErrStorageUnavailable. Blank lines are skipped.
// Rows the CSV reader rejects come back as nil entries described by a
// *storage.MalformedRowsError, and reading carries on with the next row.
func (s *Store) ReadTable(ctx context.Context, table storage.Table) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.checkDir(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(table))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w: %w", table, storage.ErrStorageUnavailable, err)
	}

	r := csv.NewReader(bytes.NewReader(data))
	// Row width varies with the legacy property and agreement formats.
	r.FieldsPerRecord = -1

	var (
		rows      [][]string
		malformed *storage.MalformedRowsError
	)
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			if malformed == nil {
				malformed = &storage.MalformedRowsError{Table: table}
			}
			rows = append(rows, nil)
			malformed.Rows = append(malformed.Rows, &storage.RowError{Line: len(rows), Err: perr})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w: %w", table, storage.ErrStorageUnavailable, err)
		}
		rows = append(rows, row)
	}

	if malformed != nil {
		return rows, malformed
	}
	return rows, nil
}

// WriteTable replaces table with rows. The file is written to a temporary
// name and renamed so a failed write leaves the previous contents intact.
func (s *Store) WriteTable(ctx context.Context, table storage.Table, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.checkDir(); err != nil {
		return err
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("encoding %s: %w", table, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+table.FileName()+".*")
	if err != nil {
		return fmt.Errorf("writing %s: %w: %w", table, storage.ErrStorageUnavailable, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w: %w", table, storage.ErrStorageUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w: %w", table, storage.ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(table)); err != nil {
		return fmt.Errorf("replacing %s: %w: %w", table, storage.ErrStorageUnavailable, err)
	}
	return nil
}
