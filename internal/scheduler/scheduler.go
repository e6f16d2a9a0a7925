package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
	"github.com/robfig/cron/v3"
)

// DefaultPollInterval is how often the loop compares the clock with the next run.
const DefaultPollInterval = time.Minute

// Syncer runs one daily sync cycle.
type Syncer interface {
	DailySync(ctx context.Context, trigger domain.SyncTrigger) (*domain.SyncResult, error)
}

// Config holds the schedule definition.
type Config struct {
	CronSpec     string
	Location     *time.Location
	PollInterval time.Duration
}

// State is a read-only snapshot of the scheduler.
type State struct {
	CronSpec  string    `json:"cronSpec"`
	NextRunAt time.Time `json:"nextRunAt"`
	LastRunAt time.Time `json:"lastRunAt,omitempty"`
	LastError string    `json:"lastError,omitempty"`
	Running   bool      `json:"running"`
}

// Scheduler owns the next-run state and the polling loop.
type Scheduler struct {
	cfg      Config
	schedule cron.Schedule
	syncer   Syncer
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.RWMutex
	nextRunAt time.Time
	lastRunAt time.Time
	lastErr   error
	running   bool

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// Option is a functional option for configuring the Scheduler
type Option func(*Scheduler)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithLogger sets the scheduler logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

var specParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ParseSpec parses a five-field cron spec. Descriptors such as @daily or @every are rejected.
func ParseSpec(spec string) (cron.Schedule, error) {
	schedule, err := specParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return schedule, nil
}

// ComputeNextRun returns the earliest instant strictly after now that matches the
// five-field cron spec evaluated in loc.
func ComputeNextRun(spec string, now time.Time, loc *time.Location) (time.Time, error) {
	schedule, err := ParseSpec(spec)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.Local
	}
	return schedule.Next(now.In(loc)), nil
}

// New validates the config and computes the first run from the current clock.
func New(cfg Config, syncer Syncer, options ...Option) (*Scheduler, error) {
	if syncer == nil {
		return nil, errors.New("scheduler requires a syncer")
	}
	schedule, err := ParseSpec(cfg.CronSpec)
	if err != nil {
		return nil, err
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	s := &Scheduler{
		cfg:      cfg,
		schedule: schedule,
		syncer:   syncer,
		logger:   slog.Default(),
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
	for _, option := range options {
		option(s)
	}

	s.nextRunAt = s.next(s.now())
	return s, nil
}

func (s *Scheduler) next(after time.Time) time.Time {
	return s.schedule.Next(after.In(s.cfg.Location))
}

// CronSpec returns the configured schedule expression.
func (s *Scheduler) CronSpec() string {
	return s.cfg.CronSpec
}

// NextRunAt returns the next scheduled instant.
func (s *Scheduler) NextRunAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextRunAt
}

// State returns a snapshot of the scheduler.
func (s *Scheduler) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{
		CronSpec:  s.cfg.CronSpec,
		NextRunAt: s.nextRunAt,
		LastRunAt: s.lastRunAt,
		Running:   s.running,
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

// Tick runs a scheduled cycle when now has reached the next run and reports whether it did.
// The next run is recomputed from the clock after the cycle, whatever its outcome.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) bool {
	s.mu.Lock()
	if now.Before(s.nextRunAt) {
		s.mu.Unlock()
		return false
	}
	due := s.nextRunAt
	s.running = true
	s.mu.Unlock()

	s.logger.Debug("Scheduled rate sync due", slog.Time("due", due))

	// The orchestrator logs the cycle outcome.
	_, err := s.syncer.DailySync(context.WithoutCancel(ctx), domain.TriggerScheduled)

	s.mu.Lock()
	s.running = false
	s.lastRunAt = now
	s.lastErr = err
	s.nextRunAt = s.next(s.now())
	next := s.nextRunAt
	s.mu.Unlock()

	s.logger.Info("Next rate sync scheduled", slog.Time("next_run_at", next))
	return true
}

// Start launches the polling loop. The first check happens immediately.
func (s *Scheduler) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.logger.Info("Starting rate sync scheduler",
			slog.String("cron", s.cfg.CronSpec),
			slog.String("timezone", s.cfg.Location.String()),
			slog.Time("next_run_at", s.NextRunAt()),
		)

		s.wg.Add(1)
		go s.loop(ctx)
	})
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	s.Tick(ctx, s.now())
	for {
		select {
		case <-ticker.C:
			s.Tick(ctx, s.now())
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop requests shutdown and waits for an in-flight cycle to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Rate sync scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for scheduler to stop: %w", ctx.Err())
	}
}
