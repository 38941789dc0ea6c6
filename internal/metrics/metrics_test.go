package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.Loaded("owners", 3)
	m.Loaded("owners", 2)
	m.Loaded("hosts", 0)
	m.Skipped("properties")
	m.Saved("payments", 4)
	m.Transitions(2)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"Owners loaded", promtest.ToFloat64(m.RecordsLoaded.WithLabelValues("owners")), 5},
		{"Properties skipped", promtest.ToFloat64(m.RecordsSkipped.WithLabelValues("properties")), 1},
		{"Payments saved", promtest.ToFloat64(m.RecordsSaved.WithLabelValues("payments")), 4},
		{"Status transitions", promtest.ToFloat64(m.StatusTransitions), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if n := promtest.CollectAndCount(m.RecordsLoaded); n != 1 {
		t.Errorf("loaded series = %d, want 1 (zero adds must not create series)", n)
	}
}

func TestMetrics_Gauges(t *testing.T) {
	m := New()

	m.SetAgreements(map[string]int{"NEW": 1, "ACTIVE": 4, "COMPLETED": 2})
	m.SetEntities("owners", 7)
	m.SetRentalIncome(4200.5)

	if got := promtest.ToFloat64(m.Agreements.WithLabelValues("ACTIVE")); got != 4 {
		t.Errorf("ACTIVE agreements = %v, want 4", got)
	}
	if got := promtest.ToFloat64(m.Entities.WithLabelValues("owners")); got != 7 {
		t.Errorf("owners = %v, want 7", got)
	}
	if got := promtest.ToFloat64(m.RentalIncome); got != 4200.5 {
		t.Errorf("rental income = %v, want 4200.5", got)
	}
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.Loaded("tenants", 2)
	m.ObserveLoad(150 * time.Millisecond)
	m.ObserveSave(20 * time.Millisecond)

	path := filepath.Join(t.TempDir(), "rentaltrack.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading textfile: %v", err)
	}
	content := string(b)
	for _, want := range []string{
		`rentaltrack_reconciler_records_loaded_total{table="tenants"} 2`,
		"rentaltrack_reconciler_load_duration_seconds_count 1",
		"rentaltrack_reconciler_save_duration_seconds_count 1",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("textfile missing %q", want)
		}
	}
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics

	m.Loaded("owners", 1)
	m.Skipped("owners")
	m.Saved("owners", 1)
	m.ObserveLoad(time.Second)
	m.ObserveSave(time.Second)
	m.Transitions(1)
	m.SetAgreements(map[string]int{"NEW": 1})
	m.SetEntities("owners", 1)
	m.SetRentalIncome(1)

	if m.Registry() != nil {
		t.Error("nil metrics should have no registry")
	}
	if err := m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Errorf("WriteTextfile() on nil = %v", err)
	}
}
