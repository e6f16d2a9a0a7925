package services

import (
	"context"
	"time"

	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
)

// RateSyncSvc runs sync cycles against the upstream feed. At most one cycle runs at a time.
type RateSyncSvc interface {
	// DailySync fetches and reconciles today's rates.
	DailySync(ctx context.Context, trigger domain.SyncTrigger) (*domain.SyncResult, error)

	// RangeBackfill fetches the whole window in one request and reconciles it.
	RangeBackfill(ctx context.Context, window domain.SyncWindow, trigger domain.SyncTrigger) (*domain.SyncResult, error)

	// ColdStartBackfill reconciles the trailing window of the given number of days ending today.
	ColdStartBackfill(ctx context.Context, days int) (*domain.SyncResult, error)

	// LastResult returns the most recent successful cycle, if any.
	LastResult() *domain.SyncResult
}

// ScheduleReader exposes the scheduler's current state.
type ScheduleReader interface {
	CronSpec() string
	NextRunAt() time.Time
}
