// Package memstore is an in-memory storage.Store for tests and dry runs.
package memstore

import (
	"context"
	"slices"
	"sync"

	"github.com/rentaltrack/rentaltrack/internal/storage"
)

// Store holds tables in memory. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	tables map[storage.Table][][]string
	writes map[storage.Table]int
}

// New returns an empty store.
func New() *Store {
	return &Store{
		tables: make(map[storage.Table][][]string),
		writes: make(map[storage.Table]int),
	}
}

func cloneRows(rows [][]string) [][]string {
	if rows == nil {
		return nil
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out
}

// ReadTable returns a copy of the rows last written to table.
func (s *Store) ReadTable(ctx context.Context, table storage.Table) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRows(s.tables[table]), nil
}

// WriteTable replaces table with a copy of rows.
func (s *Store) WriteTable(ctx context.Context, table storage.Table, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = cloneRows(rows)
	s.writes[table]++
	return nil
}

// Writes returns how many times table was written.
func (s *Store) Writes(table storage.Table) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes[table]
}
