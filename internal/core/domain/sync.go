package domain

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// SyncTrigger records why a sync cycle ran.
type SyncTrigger string

const (
	TriggerScheduled SyncTrigger = "scheduled"
	TriggerManual    SyncTrigger = "manual"
	TriggerColdStart SyncTrigger = "cold-start"
	TriggerBackfill  SyncTrigger = "backfill"
)

// SyncWindow is an inclusive range of calendar days covered by one cycle.
type SyncWindow struct {
	From civil.Date `json:"from"`
	To   civil.Date `json:"to"`
}

// SingleDay returns a window covering only d.
func SingleDay(d civil.Date) SyncWindow {
	return SyncWindow{From: d, To: d}
}

// IsSingleDay reports whether the window spans exactly one day.
func (w SyncWindow) IsSingleDay() bool {
	return w.From == w.To
}

// Days returns the number of calendar days in the window.
func (w SyncWindow) Days() int {
	return w.To.DaysSince(w.From) + 1
}

// Validate checks that both bounds are valid dates and From is not after To.
func (w SyncWindow) Validate() error {
	if !w.From.IsValid() || !w.To.IsValid() {
		return fmt.Errorf("invalid sync window %s..%s", w.From, w.To)
	}
	if w.From.After(w.To) {
		return fmt.Errorf("sync window start %s is after end %s", w.From, w.To)
	}
	return nil
}

func (w SyncWindow) String() string {
	return fmt.Sprintf("%s..%s", w.From, w.To)
}

// SyncResult summarizes one completed cycle.
type SyncResult struct {
	Trigger   SyncTrigger   `json:"trigger"`
	Window    SyncWindow    `json:"window"`
	Fetched   int           `json:"fetched"`
	Inserted  int           `json:"inserted"`
	Skipped   int           `json:"skipped"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
}
