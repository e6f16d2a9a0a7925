package dto

import (
	"time"

	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
	"github.com/SscSPs/exchange_rates_app/internal/core/normalize"
)

// MaxBackfillDays bounds the window a caller may backfill in one request.
const MaxBackfillDays = 366

// BackfillRequest asks for a range backfill. Dates use the dd.MM.yyyy. layout.
type BackfillRequest struct {
	FromDate string `json:"fromDate" binding:"required,apidate" example:"01.06.2025."`
	ToDate   string `json:"toDate" binding:"required,apidate" example:"10.06.2025."`
}

// SyncResultResponse describes one completed sync cycle.
type SyncResultResponse struct {
	Trigger    string    `json:"trigger"`
	FromDate   string    `json:"fromDate"`
	ToDate     string    `json:"toDate"`
	Fetched    int       `json:"fetched"`
	Inserted   int       `json:"inserted"`
	Skipped    int       `json:"skipped"`
	StartedAt  time.Time `json:"startedAt"`
	DurationMs int64     `json:"durationMs"`
}

// SyncStatusResponse reports the schedule and the last successful cycle.
type SyncStatusResponse struct {
	CronSpec   string              `json:"cronSpec"`
	NextRunAt  *time.Time          `json:"nextRunAt,omitempty"`
	LastResult *SyncResultResponse `json:"lastResult,omitempty"`
}

// ToSyncResultResponse converts a domain.SyncResult to its API form.
func ToSyncResultResponse(result *domain.SyncResult) *SyncResultResponse {
	if result == nil {
		return nil
	}
	return &SyncResultResponse{
		Trigger:    string(result.Trigger),
		FromDate:   normalize.FormatDate(result.Window.From, normalize.APIDateLayout),
		ToDate:     normalize.FormatDate(result.Window.To, normalize.APIDateLayout),
		Fetched:    result.Fetched,
		Inserted:   result.Inserted,
		Skipped:    result.Skipped,
		StartedAt:  result.StartedAt,
		DurationMs: result.Duration.Milliseconds(),
	}
}
