// Package metrics records reconciler and portfolio metrics on a private
// Prometheus registry and writes them in the text exposition format for a
// node_exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rentaltrack"

// Metrics holds every collector. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RecordsLoaded  *prometheus.CounterVec
	RecordsSkipped *prometheus.CounterVec
	RecordsSaved   *prometheus.CounterVec

	LoadDuration prometheus.Histogram
	SaveDuration prometheus.Histogram

	StatusTransitions prometheus.Counter
	Agreements        *prometheus.GaugeVec
	Entities          *prometheus.GaugeVec
	RentalIncome      prometheus.Gauge
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RecordsLoaded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "records_loaded_total",
			Help:      "Records loaded into the entity graph, by table",
		}, []string{"table"}),
		RecordsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "records_skipped_total",
			Help:      "Records skipped during load because they were malformed or inconsistent, by table",
		}, []string{"table"}),
		RecordsSaved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "records_saved_total",
			Help:      "Records written to storage, by table",
		}, []string{"table"}),
		LoadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "load_duration_seconds",
			Help:      "Histogram of full load durations",
			Buckets:   prometheus.DefBuckets,
		}),
		SaveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "save_duration_seconds",
			Help:      "Histogram of full save durations",
			Buckets:   prometheus.DefBuckets,
		}),
		StatusTransitions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "agreements",
			Name:      "status_transitions_total",
			Help:      "Agreement status changes applied by refresh passes",
		}),
		Agreements: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "agreements",
			Name:      "count",
			Help:      "Agreements held, by status",
		}, []string{"status"}),
		Entities: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "entities",
			Help:      "Entities held, by kind",
		}, []string{"kind"}),
		RentalIncome: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "active_rental_income",
			Help:      "Sum of rent over active agreements",
		}),
	}
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Loaded adds n loaded records for table.
func (m *Metrics) Loaded(table string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RecordsLoaded.WithLabelValues(table).Add(float64(n))
}

// Skipped counts one skipped record for table.
func (m *Metrics) Skipped(table string) {
	if m == nil {
		return
	}
	m.RecordsSkipped.WithLabelValues(table).Inc()
}

// Saved adds n written records for table.
func (m *Metrics) Saved(table string, n int) {
	if m == nil {
		return
	}
	m.RecordsSaved.WithLabelValues(table).Add(float64(n))
}

// ObserveLoad records the duration of a full load.
func (m *Metrics) ObserveLoad(d time.Duration) {
	if m == nil {
		return
	}
	m.LoadDuration.Observe(d.Seconds())
}

// ObserveSave records the duration of a full save.
func (m *Metrics) ObserveSave(d time.Duration) {
	if m == nil {
		return
	}
	m.SaveDuration.Observe(d.Seconds())
}

// Transitions adds n status changes.
func (m *Metrics) Transitions(n int) {
	if m == nil || n == 0 {
		return
	}
	m.StatusTransitions.Add(float64(n))
}

// SetAgreements replaces the per-status agreement gauges.
func (m *Metrics) SetAgreements(byStatus map[string]int) {
	if m == nil {
		return
	}
	for status, n := range byStatus {
		m.Agreements.WithLabelValues(status).Set(float64(n))
	}
}

// SetEntities sets the gauge for one entity kind.
func (m *Metrics) SetEntities(kind string, n int) {
	if m == nil {
		return
	}
	m.Entities.WithLabelValues(kind).Set(float64(n))
}

// SetRentalIncome sets the active rental income gauge.
func (m *Metrics) SetRentalIncome(v float64) {
	if m == nil {
		return
	}
	m.RentalIncome.Set(v)
}

// WriteTextfile writes every metric to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
