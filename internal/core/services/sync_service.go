package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/SscSPs/exchange_rates_app/internal/apperrors"
	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
	"github.com/SscSPs/exchange_rates_app/internal/core/normalize"
	portsrepo "github.com/SscSPs/exchange_rates_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/exchange_rates_app/internal/core/ports/services"
)

// RateFetcher retrieves raw records from the upstream feed.
type RateFetcher interface {
	FetchDay(ctx context.Context, day civil.Date) ([]domain.UpstreamRate, error)
	FetchRange(ctx context.Context, from, to civil.Date) ([]domain.UpstreamRate, error)
}

// RateEventPublisher announces rates committed by a cycle.
type RateEventPublisher interface {
	PublishRatesSynced(ctx context.Context, result domain.SyncResult, rates []domain.ExchangeRate) error
}

// CycleObserver is notified after every cycle, successful or not.
type CycleObserver interface {
	ObserveCycle(result domain.SyncResult, err error)
}

// rateSyncService composes fetch, normalize, reconcile and commit into one cycle.
type rateSyncService struct {
	BaseService
	fetcher    RateFetcher
	reconciler *Reconciler
	publisher  RateEventPublisher
	observer   CycleObserver
	location   *time.Location
	now        func() time.Time

	// cycleMu admits one cycle at a time across scheduled, manual and backfill triggers.
	cycleMu sync.Mutex

	resultMu   sync.RWMutex
	lastResult *domain.SyncResult
}

// SyncOption is a functional option for configuring the rate sync service
type SyncOption func(*rateSyncService)

// WithSyncLogger sets the logger used outside of request scope.
func WithSyncLogger(logger *slog.Logger) SyncOption {
	return func(s *rateSyncService) {
		s.Logger = logger
	}
}

// WithEventPublisher publishes an event after each cycle that inserted rates.
func WithEventPublisher(p RateEventPublisher) SyncOption {
	return func(s *rateSyncService) {
		s.publisher = p
	}
}

// WithCycleObserver reports each cycle outcome, e.g. to metrics.
func WithCycleObserver(o CycleObserver) SyncOption {
	return func(s *rateSyncService) {
		s.observer = o
	}
}

// WithSyncLocation sets the zone that decides what "today" is.
func WithSyncLocation(loc *time.Location) SyncOption {
	return func(s *rateSyncService) {
		s.location = loc
	}
}

// WithSyncClock overrides the wall clock.
func WithSyncClock(now func() time.Time) SyncOption {
	return func(s *rateSyncService) {
		s.now = now
		s.reconciler.now = now
	}
}

// NewRateSyncService creates the sync orchestrator.
func NewRateSyncService(fetcher RateFetcher, store portsrepo.RateSyncStore, options ...SyncOption) portssvc.RateSyncSvc {
	svc := &rateSyncService{
		fetcher:    fetcher,
		reconciler: NewReconciler(store),
		location:   time.Local,
		now:        time.Now,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure rateSyncService implements the RateSyncSvc interface
var _ portssvc.RateSyncSvc = (*rateSyncService)(nil)

func (s *rateSyncService) today() civil.Date {
	return civil.DateOf(s.now().In(s.location))
}

// DailySync runs one cycle for today's applicable date.
func (s *rateSyncService) DailySync(ctx context.Context, trigger domain.SyncTrigger) (*domain.SyncResult, error) {
	day := s.today()
	return s.runCycle(ctx, domain.SingleDay(day), trigger, func(ctx context.Context) ([]domain.UpstreamRate, error) {
		return s.fetcher.FetchDay(ctx, day)
	})
}

// RangeBackfill runs one cycle for the whole window using a single range fetch.
func (s *rateSyncService) RangeBackfill(ctx context.Context, window domain.SyncWindow, trigger domain.SyncTrigger) (*domain.SyncResult, error) {
	if err := window.Validate(); err != nil {
		return s.rejectCycle(ctx, window, trigger, fmt.Errorf("%w: %w", apperrors.ErrValidation, err))
	}
	return s.runCycle(ctx, window, trigger, func(ctx context.Context) ([]domain.UpstreamRate, error) {
		return s.fetcher.FetchRange(ctx, window.From, window.To)
	})
}

// ColdStartBackfill reconciles [today-days, today].
func (s *rateSyncService) ColdStartBackfill(ctx context.Context, days int) (*domain.SyncResult, error) {
	today := s.today()
	window := domain.SyncWindow{From: today.AddDays(-days), To: today}
	if days < 0 {
		err := fmt.Errorf("%w: backfill days must not be negative, got %d", apperrors.ErrValidation, days)
		return s.rejectCycle(ctx, window, domain.TriggerColdStart, err)
	}
	return s.RangeBackfill(ctx, window, domain.TriggerColdStart)
}

// LastResult returns a copy of the most recent successful cycle.
func (s *rateSyncService) LastResult() *domain.SyncResult {
	s.resultMu.RLock()
	defer s.resultMu.RUnlock()
	if s.lastResult == nil {
		return nil
	}
	r := *s.lastResult
	return &r
}

// runCycle serializes cycles and is the single place where cycle outcomes are logged.
// The cycle ignores caller cancellation so a commit is never cut short.
// rejectCycle reports a cycle that failed validation and never ran.
func (s *rateSyncService) rejectCycle(ctx context.Context, window domain.SyncWindow, trigger domain.SyncTrigger, err error) (*domain.SyncResult, error) {
	result := domain.SyncResult{Trigger: trigger, Window: window, StartedAt: s.now()}
	if s.observer != nil {
		s.observer.ObserveCycle(result, err)
	}
	s.GetLogger(ctx).Error("Rate sync cycle rejected",
		slog.String("trigger", string(trigger)),
		slog.String("window", window.String()),
		slog.String("error", err.Error()),
	)
	return nil, err
}

func (s *rateSyncService) runCycle(
	ctx context.Context,
	window domain.SyncWindow,
	trigger domain.SyncTrigger,
	fetch func(context.Context) ([]domain.UpstreamRate, error),
) (*domain.SyncResult, error) {
	ctx = context.WithoutCancel(ctx)

	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	logger := s.GetLogger(ctx).With(
		slog.String("trigger", string(trigger)),
		slog.String("window", window.String()),
	)

	result := domain.SyncResult{Trigger: trigger, Window: window, StartedAt: s.now()}
	inserted, err := s.cycle(ctx, fetch, &result)
	result.Duration = s.now().Sub(result.StartedAt)

	if s.observer != nil {
		s.observer.ObserveCycle(result, err)
	}

	if err != nil {
		logger.Error("Rate sync cycle failed",
			slog.String("error", err.Error()),
			slog.Int("fetched", result.Fetched),
			slog.Duration("duration", result.Duration),
		)
		return nil, err
	}

	logger.Info("Rate sync cycle completed",
		slog.Int("fetched", result.Fetched),
		slog.Int("inserted", result.Inserted),
		slog.Int("skipped", result.Skipped),
		slog.Duration("duration", result.Duration),
	)

	s.resultMu.Lock()
	last := result
	s.lastResult = &last
	s.resultMu.Unlock()

	if len(inserted) > 0 && s.publisher != nil {
		if perr := s.publisher.PublishRatesSynced(ctx, result, inserted); perr != nil {
			logger.Warn("Failed to publish rates synced event", slog.String("error", perr.Error()))
		}
	}

	return &result, nil
}

// cycle stages the whole batch in memory and commits once. Any error before the commit
// discards everything staged so far.
func (s *rateSyncService) cycle(
	ctx context.Context,
	fetch func(context.Context) ([]domain.UpstreamRate, error),
	result *domain.SyncResult,
) ([]domain.ExchangeRate, error) {
	raw, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	result.Fetched = len(raw)

	candidates, err := normalize.ExchangeRates(raw)
	if err != nil {
		return nil, err
	}

	fresh, err := s.reconciler.Reconcile(ctx, candidates, nil)
	if err != nil {
		return nil, err
	}

	if err := s.reconciler.Commit(ctx, fresh); err != nil {
		return nil, err
	}

	result.Inserted = len(fresh)
	result.Skipped = len(candidates) - len(fresh)
	return fresh, nil
}
