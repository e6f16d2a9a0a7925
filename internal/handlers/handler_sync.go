package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/exchange_rates_app/internal/apperrors"
	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
	"github.com/SscSPs/exchange_rates_app/internal/core/normalize"
	portssvc "github.com/SscSPs/exchange_rates_app/internal/core/ports/services"
	"github.com/SscSPs/exchange_rates_app/internal/dto"
	"github.com/SscSPs/exchange_rates_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type syncHandler struct {
	syncService portssvc.RateSyncSvc
	schedule    portssvc.ScheduleReader
}

// RegisterSyncRoutes registers the sync status route on public and the trigger routes on secured.
// schedule may be nil when no scheduler is running.
func RegisterSyncRoutes(public, secured *gin.RouterGroup, syncService portssvc.RateSyncSvc, schedule portssvc.ScheduleReader) {
	h := &syncHandler{syncService: syncService, schedule: schedule}

	public.GET("/sync/status", h.getSyncStatus)

	sync := secured.Group("/sync")
	{
		sync.POST("", h.triggerSync)
		sync.POST("/backfill", h.backfill)
	}
}

// triggerSync godoc
// @Summary Run a sync now
// @Description Fetches today's rates from the upstream feed and stores the new ones. Waits for any running cycle first.
// @Tags sync
// @Produce  json
// @Success 200 {object} dto.SyncResultResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Sync failed"
// @Failure 502 {object} map[string]string "Upstream feed failed"
// @Security BearerAuth
// @Router /sync [post]
func (h *syncHandler) triggerSync(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if subject, ok := middleware.GetSubjectFromCtx(c.Request.Context()); ok {
		logger.Info("Manual sync requested", slog.String("requested_by", subject))
	}

	result, err := h.syncService.DailySync(c.Request.Context(), domain.TriggerManual)
	if err != nil {
		writeSyncError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSyncResultResponse(result))
}

// backfill godoc
// @Summary Backfill a date range
// @Description Fetches every rate in the inclusive window with one upstream request and stores the new ones
// @Tags sync
// @Accept  json
// @Produce  json
// @Param   window body dto.BackfillRequest true "Window to backfill"
// @Success 200 {object} dto.SyncResultResponse
// @Failure 400 {object} map[string]string "Invalid or oversized window"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Sync failed"
// @Failure 502 {object} map[string]string "Upstream feed failed"
// @Security BearerAuth
// @Router /sync/backfill [post]
func (h *syncHandler) backfill(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BackfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Backfill", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	window, err := backfillWindow(req)
	if err != nil {
		logger.Warn("Rejected backfill window", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.syncService.RangeBackfill(c.Request.Context(), window, domain.TriggerBackfill)
	if err != nil {
		writeSyncError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSyncResultResponse(result))
}

// getSyncStatus godoc
// @Summary Sync status
// @Description Returns the schedule, the next planned run and the last successful cycle
// @Tags sync
// @Produce  json
// @Success 200 {object} dto.SyncStatusResponse
// @Router /sync/status [get]
func (h *syncHandler) getSyncStatus(c *gin.Context) {
	var status dto.SyncStatusResponse
	if h.schedule != nil {
		status.CronSpec = h.schedule.CronSpec()
		if next := h.schedule.NextRunAt(); !next.IsZero() {
			status.NextRunAt = &next
		}
	}
	status.LastResult = dto.ToSyncResultResponse(h.syncService.LastResult())
	c.JSON(http.StatusOK, status)
}

func backfillWindow(req dto.BackfillRequest) (domain.SyncWindow, error) {
	from, err := normalize.ParseDate(req.FromDate, normalize.APIDateLayout)
	if err != nil {
		return domain.SyncWindow{}, fmt.Errorf("invalid fromDate %q", req.FromDate)
	}
	to, err := normalize.ParseDate(req.ToDate, normalize.APIDateLayout)
	if err != nil {
		return domain.SyncWindow{}, fmt.Errorf("invalid toDate %q", req.ToDate)
	}
	window := domain.SyncWindow{From: from, To: to}
	if err := window.Validate(); err != nil {
		return domain.SyncWindow{}, err
	}
	if window.Days() > dto.MaxBackfillDays {
		return domain.SyncWindow{}, fmt.Errorf("backfill window spans %d days, at most %d allowed", window.Days(), dto.MaxBackfillDays)
	}
	return window, nil
}

func writeSyncError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNetwork),
		errors.Is(err, apperrors.ErrDecode),
		errors.Is(err, apperrors.ErrFormat):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream rates feed failed: " + err.Error()})
	default:
		logger.Error("Sync request failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sync failed"})
	}
}
