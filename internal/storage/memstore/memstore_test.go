package memstore

import (
	"context"
	"testing"

	"github.com/rentaltrack/rentaltrack/internal/storage"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := New()

	rows, err := s.ReadTable(ctx, storage.TableHosts)
	if err != nil || rows != nil {
		t.Fatalf("unwritten table: rows=%v err=%v", rows, err)
	}

	in := [][]string{{"H1", "Harry", "1980-01-01", "h@example.com"}}
	if err := s.WriteTable(ctx, storage.TableHosts, in); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}
	in[0][1] = "mutated"

	got, _ := s.ReadTable(ctx, storage.TableHosts)
	if got[0][1] != "Harry" {
		t.Errorf("store shares memory with caller: %q", got[0][1])
	}
	got[0][1] = "mutated again"
	again, _ := s.ReadTable(ctx, storage.TableHosts)
	if again[0][1] != "Harry" {
		t.Errorf("read result shares memory with store: %q", again[0][1])
	}

	if n := s.Writes(storage.TableHosts); n != 1 {
		t.Errorf("Writes() = %d, want 1", n)
	}
}
