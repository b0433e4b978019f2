// Package metrics exposes Prometheus metrics for interview prep migrations.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MigrationMetrics counts migration outcomes.
type MigrationMetrics struct {
	recordsTotal  *prometheus.CounterVec   // by status, dry_run
	batchesTotal  *prometheus.CounterVec   // by dry_run, result
	batchDuration *prometheus.HistogramVec // by dry_run
}

// NewMigrationMetrics creates the metrics and registers them with registry.
func NewMigrationMetrics(registry prometheus.Registerer) (*MigrationMetrics, error) {
	m := &MigrationMetrics{
		recordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interview_prep_migration_records_total",
				Help: "Interview prep records processed by the migration runner, by outcome",
			},
			[]string{"status", "dry_run"},
		),
		batchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interview_prep_migration_batches_total",
				Help: "Migration batches run, by result (ok, fetch_error)",
			},
			[]string{"dry_run", "result"},
		),
		batchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "interview_prep_migration_batch_duration_seconds",
				Help:    "Wall time of one migration batch",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"dry_run"},
		),
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register migration metrics: %w", err)
	}
	return m, nil
}

// ObserveRecord counts one record outcome.
func (m *MigrationMetrics) ObserveRecord(status string, dryRun bool) {
	m.recordsTotal.WithLabelValues(status, strconv.FormatBool(dryRun)).Inc()
}

// ObserveBatch counts one finished batch. A non-nil err means the fetch failed.
func (m *MigrationMetrics) ObserveBatch(dryRun bool, err error, took time.Duration) {
	result := "ok"
	if err != nil {
		result = "fetch_error"
	}
	dr := strconv.FormatBool(dryRun)
	m.batchesTotal.WithLabelValues(dr, result).Inc()
	m.batchDuration.WithLabelValues(dr).Observe(took.Seconds())
}

// Describe implements the prometheus.Collector interface.
func (m *MigrationMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.recordsTotal.Describe(ch)
	m.batchesTotal.Describe(ch)
	m.batchDuration.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *MigrationMetrics) Collect(ch chan<- prometheus.Metric) {
	m.recordsTotal.Collect(ch)
	m.batchesTotal.Collect(ch)
	m.batchDuration.Collect(ch)
}
