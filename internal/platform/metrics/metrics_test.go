package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/exchange_rates_app/internal/apperrors"
	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, Outcome(nil))
	assert.Equal(t, OutcomeNetworkError, Outcome(fmt.Errorf("%w: timeout", apperrors.ErrNetwork)))
	assert.Equal(t, OutcomeDecodeError, Outcome(fmt.Errorf("%w: eof", apperrors.ErrDecode)))
	assert.Equal(t, OutcomeFormatError, Outcome(fmt.Errorf("record 2: %w", apperrors.ErrFormat)))
	assert.Equal(t, OutcomePersistenceError, Outcome(fmt.Errorf("%w: commit: %w", apperrors.ErrPersistence, apperrors.ErrDuplicate)))
	assert.Equal(t, OutcomeValidationError, Outcome(apperrors.NewValidationError("bad window")))
	assert.Equal(t, OutcomeError, Outcome(errors.New("boom")))
}

func TestObserveCycle(t *testing.T) {
	m := NewSyncMetrics(prometheus.NewRegistry())
	started := time.Date(2025, 6, 10, 16, 30, 0, 0, time.UTC)

	m.ObserveCycle(domain.SyncResult{Trigger: domain.TriggerScheduled, Inserted: 13, StartedAt: started, Duration: 800 * time.Millisecond}, nil)
	m.ObserveCycle(domain.SyncResult{Trigger: domain.TriggerManual, Inserted: 0, StartedAt: started.Add(time.Hour)}, nil)
	m.ObserveCycle(domain.SyncResult{Trigger: domain.TriggerScheduled, StartedAt: started.Add(24 * time.Hour)}, fmt.Errorf("%w: 503", apperrors.ErrNetwork))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CyclesTotal.WithLabelValues("scheduled", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CyclesTotal.WithLabelValues("manual", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CyclesTotal.WithLabelValues("scheduled", OutcomeNetworkError)))
	assert.Equal(t, 13.0, testutil.ToFloat64(m.RecordsInserted))
	assert.Equal(t, float64(started.Add(time.Hour).Unix()), testutil.ToFloat64(m.LastSuccessEpoch))
	assert.Equal(t, 2, testutil.CollectAndCount(m.CycleDuration))
}

func TestObserveRejectedCycle(t *testing.T) {
	m := NewSyncMetrics(prometheus.NewRegistry())

	m.ObserveCycle(domain.SyncResult{Trigger: domain.TriggerBackfill}, apperrors.NewValidationError("window starts after it ends"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CyclesTotal.WithLabelValues("backfill", OutcomeValidationError)))
	assert.Zero(t, testutil.ToFloat64(m.RecordsInserted))
	assert.Zero(t, testutil.ToFloat64(m.LastSuccessEpoch))
}
