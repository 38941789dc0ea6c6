package csvstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rentaltrack/rentaltrack/internal/storage"
	"github.com/rentaltrack/rentaltrack/internal/testutil"
)

func TestStore_RoundTrip(t *testing.T) {
	dir := testutil.NewDataDir(t)
	s := New(dir.Path)
	ctx := context.Background()

	rows := [][]string{
		{"P1", "RESIDENTIAL", "1 High St, Flat 2", "250000", "AVAILABLE", "O1", "2", "true", "false", "", "", ""},
		{"P2", "COMMERCIAL", "Unit \"B\"\nDock Road", "1e+06", "RENTED", "O2", "", "", "", "Retail", "4", "120.5"},
	}
	if err := s.WriteTable(ctx, storage.TableProperties, rows); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}

	got, err := s.ReadTable(ctx, storage.TableProperties)
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("ReadTable() returned %d rows, want %d", len(got), len(rows))
	}
	for i := range rows {
		for j := range rows[i] {
			if got[i][j] != rows[i][j] {
				t.Errorf("row %d field %d = %q, want %q", i, j, got[i][j], rows[i][j])
			}
		}
	}

	first := dir.ReadFile(t, storage.TableProperties.FileName())
	if err := s.WriteTable(ctx, storage.TableProperties, got); err != nil {
		t.Fatalf("second WriteTable() error = %v", err)
	}
	if second := dir.ReadFile(t, storage.TableProperties.FileName()); second != first {
		t.Errorf("rewriting the same rows changed the file:\n%s\n---\n%s", first, second)
	}
}

func TestStore_ReadTable(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing file is an empty table", func(t *testing.T) {
		s := New(testutil.NewDataDir(t).Path)
		rows, err := s.ReadTable(ctx, storage.TableOwners)
		if err != nil {
			t.Fatalf("ReadTable() error = %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("ReadTable() returned %d rows, want 0", len(rows))
		}
	})

	t.Run("Missing directory is fatal", func(t *testing.T) {
		s := New(filepath.Join(t.TempDir(), "absent"))
		_, err := s.ReadTable(ctx, storage.TableOwners)
		if !errors.Is(err, storage.ErrStorageUnavailable) {
			t.Fatalf("expected ErrStorageUnavailable, got %v", err)
		}
		err = s.WriteTable(ctx, storage.TableOwners, nil)
		if !errors.Is(err, storage.ErrStorageUnavailable) {
			t.Fatalf("expected ErrStorageUnavailable on write, got %v", err)
		}
	})

	t.Run("Rows of different widths", func(t *testing.T) {
		dir := testutil.NewDataDir(t)
		dir.WriteLines(t, storage.TableRentalAgreements.FileName(),
			"A1,P1,T1,O1,H1,2024-01-01,2024-12-31,100.0,MONTHLY,ACTIVE",
			"",
			"A2,P1,T1;T2,O1,H1,2024-01-01,2024-12-31,100.0,MONTHLY,NEW,extra",
		)
		rows, err := New(dir.Path).ReadTable(ctx, storage.TableRentalAgreements)
		if err != nil {
			t.Fatalf("ReadTable() error = %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("ReadTable() returned %d rows, want 2", len(rows))
		}
		if len(rows[0]) != 10 || len(rows[1]) != 11 {
			t.Errorf("row widths = %d, %d", len(rows[0]), len(rows[1]))
		}
		if rows[1][2] != "T1;T2" {
			t.Errorf("tenant list = %q", rows[1][2])
		}
	})

	t.Run("Malformed row between valid rows", func(t *testing.T) {
		dir := testutil.NewDataDir(t)
		dir.WriteLines(t, storage.TableOwners.FileName(),
			"O1,Ann Owner,1960-01-02,ann@example.com",
			`O2,Bob "The" Owner,1961-02-03,bob@example.com`,
			"O3,Cat Owner,1962-03-04,cat@example.com",
		)
		rows, err := New(dir.Path).ReadTable(ctx, storage.TableOwners)

		var malformed *storage.MalformedRowsError
		if !errors.As(err, &malformed) {
			t.Fatalf("expected *storage.MalformedRowsError, got %v", err)
		}
		if errors.Is(err, storage.ErrStorageUnavailable) {
			t.Error("a malformed row must not make the store unavailable")
		}
		if len(rows) != 3 {
			t.Fatalf("ReadTable() returned %d rows, want 3", len(rows))
		}
		if rows[0][0] != "O1" || rows[1] != nil || rows[2][0] != "O3" {
			t.Errorf("rows = %q", rows)
		}
		if rerr := malformed.At(2); !errors.Is(rerr, storage.ErrMalformedRow) {
			t.Errorf("At(2) = %v, want ErrMalformedRow", rerr)
		}
		if rerr := malformed.At(1); rerr != nil {
			t.Errorf("At(1) = %v, want nil", rerr)
		}
	})

	t.Run("Cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := New(t.TempDir()).ReadTable(cctx, storage.TableOwners); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestStore_WriteEmptyTable(t *testing.T) {
	dir := testutil.NewDataDir(t)
	s := New(dir.Path)

	if err := s.WriteTable(context.Background(), storage.TablePayments, nil); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}
	if content := dir.ReadFile(t, storage.TablePayments.FileName()); content != "" {
		t.Errorf("empty table wrote %q", content)
	}
	if got := len(dir.Snapshot(t)); got != 1 {
		t.Errorf("directory holds %d files, want 1 (temporary file left behind?)", got)
	}
}
