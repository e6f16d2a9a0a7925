// Package metrics exposes Prometheus instrumentation for sync cycles.
package metrics

import (
	"errors"

	"github.com/SscSPs/exchange_rates_app/internal/apperrors"
	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cycle outcome label values.
const (
	OutcomeSuccess          = "success"
	OutcomeNetworkError     = "network_error"
	OutcomeDecodeError      = "decode_error"
	OutcomeFormatError      = "format_error"
	OutcomePersistenceError = "persistence_error"
	OutcomeValidationError  = "validation_error"
	OutcomeError            = "error"
)

// SyncMetrics records the outcome of every sync cycle.
type SyncMetrics struct {
	CyclesTotal      *prometheus.CounterVec
	RecordsInserted  prometheus.Counter
	CycleDuration    *prometheus.HistogramVec
	LastSuccessEpoch prometheus.Gauge
}

// NewSyncMetrics registers the sync metrics with reg.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	factory := promauto.With(reg)
	return &SyncMetrics{
		CyclesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_sync_cycles_total",
				Help: "Number of sync cycles by trigger and outcome",
			},
			[]string{"trigger", "outcome"},
		),
		RecordsInserted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rates_sync_records_inserted_total",
				Help: "Number of exchange rates inserted by sync cycles",
			},
		),
		CycleDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rates_sync_cycle_duration_seconds",
				Help:    "Wall time of sync cycles",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
			},
			[]string{"trigger"},
		),
		LastSuccessEpoch: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rates_sync_last_success_timestamp_seconds",
				Help: "Unix time when the last successful cycle started",
			},
		),
	}
}

// ObserveCycle records one finished cycle.
func (m *SyncMetrics) ObserveCycle(result domain.SyncResult, err error) {
	trigger := string(result.Trigger)
	m.CyclesTotal.WithLabelValues(trigger, Outcome(err)).Inc()
	m.CycleDuration.WithLabelValues(trigger).Observe(result.Duration.Seconds())

	if err == nil {
		m.RecordsInserted.Add(float64(result.Inserted))
		m.LastSuccessEpoch.Set(float64(result.StartedAt.Unix()))
	}
}

// Outcome maps a cycle error to its label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, apperrors.ErrNetwork):
		return OutcomeNetworkError
	case errors.Is(err, apperrors.ErrDecode):
		return OutcomeDecodeError
	case errors.Is(err, apperrors.ErrFormat):
		return OutcomeFormatError
	case errors.Is(err, apperrors.ErrPersistence):
		return OutcomePersistenceError
	case errors.Is(err, apperrors.ErrValidation):
		return OutcomeValidationError
	default:
		return OutcomeError
	}
}
