package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/exchange_rates_app/internal/apperrors"
	portssvc "github.com/SscSPs/exchange_rates_app/internal/core/ports/services"
	"github.com/SscSPs/exchange_rates_app/internal/dto"
	"github.com/SscSPs/exchange_rates_app/internal/middleware"
	"github.com/SscSPs/exchange_rates_app/internal/utils/pagination"
	"github.com/gin-gonic/gin"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateSvcFacade
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(ers portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{
		exchangeRateService: ers,
	}
}

// RegisterExchangeRateRoutes registers the public read routes on public and the write routes on secured.
func RegisterExchangeRateRoutes(public, secured *gin.RouterGroup, exchangeRateService portssvc.ExchangeRateSvcFacade) {
	h := newExchangeRateHandler(exchangeRateService)

	rates := public.Group("/rates")
	{
		rates.GET("", h.listExchangeRates)
		rates.GET("/:id", h.getExchangeRate)
	}

	securedRates := secured.Group("/rates")
	{
		securedRates.POST("", h.createExchangeRate)
		securedRates.PUT("/:id", h.updateExchangeRate)
		securedRates.DELETE("/:id", h.deleteExchangeRate)
	}
}

// listExchangeRates godoc
// @Summary List exchange rates
// @Description Returns a filtered, paginated list of stored exchange rates
// @Tags exchange rates
// @Produce  json
// @Param   currencyCode query string false "Currency code"
// @Param   currencyName query string false "Currency name"
// @Param   fromDate query string false "First date (dd.MM.yyyy.)"
// @Param   toDate query string false "Last date (dd.MM.yyyy.)"
// @Param   page query int false "Page number" default(1)
// @Param   pageSize query int false "Page size" default(10)
// @Param   sort query string false "Sort by date" Enums(asc, desc) default(desc)
// @Success 200 {object} dto.ListExchangeRatesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list exchange rates"
// @Router /rates [get]
func (h *exchangeRateHandler) listExchangeRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListExchangeRatesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListExchangeRates", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	rates, total, err := h.exchangeRateService.ListExchangeRates(c.Request.Context(), params)
	if err != nil {
		writeServiceError(c, logger, err, "Failed to list exchange rates")
		return
	}

	page := pagination.New(params.Page, params.PageSize)
	response := dto.ListExchangeRatesResponse{
		Status:     dto.StatusNoError,
		Data:       dto.ToListExchangeRateResponse(rates),
		Page:       page.Number,
		PageSize:   page.Size,
		TotalCount: total,
		TotalPages: pagination.TotalPages(total, page.Size),
	}
	if len(rates) == 0 {
		response.Status = dto.StatusNoRatesFound
	}

	logger.Debug("Exchange rates listed", slog.Int("count", len(rates)), slog.Int("total", total))
	c.JSON(http.StatusOK, response)
}

// getExchangeRate godoc
// @Summary Get an exchange rate
// @Description Retrieves a stored exchange rate by its id
// @Tags exchange rates
// @Produce  json
// @Param   id path string true "Exchange rate ID"
// @Success 200 {object} dto.ExchangeRateResult
// @Failure 404 {object} map[string]string "Exchange rate not found"
// @Failure 500 {object} map[string]string "Failed to retrieve exchange rate"
// @Router /rates/{id} [get]
func (h *exchangeRateHandler) getExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	rateID := c.Param("id")
	logger = logger.With(slog.String("rate_id", rateID))

	rate, err := h.exchangeRateService.GetExchangeRateByID(c.Request.Context(), rateID)
	if err != nil {
		writeServiceError(c, logger, err, "Failed to retrieve exchange rate")
		return
	}

	c.JSON(http.StatusOK, dto.ExchangeRateResult{Status: dto.StatusNoError, Data: dto.ToExchangeRateResponse(rate)})
}

// createExchangeRate godoc
// @Summary Create a new exchange rate
// @Description Adds an exchange rate for a currency on a date. The date, code and name must be unique together.
// @Tags exchange rates
// @Accept  json
// @Produce  json
// @Param   rate body dto.CreateExchangeRateRequest true "Exchange Rate details"
// @Success 201 {object} dto.ExchangeRateResult
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Exchange rate already exists"
// @Failure 500 {object} map[string]string "Failed to create exchange rate"
// @Security BearerAuth
// @Router /rates [post]
func (h *exchangeRateHandler) createExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateExchangeRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger.Info("Received request to create exchange rate",
		slog.String("date", req.Date),
		slog.String("currency_code", req.CurrencyCode),
		slog.String("currency_name", req.CurrencyName),
	)

	createdRate, err := h.exchangeRateService.CreateExchangeRate(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, logger, err, "Failed to create exchange rate")
		return
	}

	logger.Info("Exchange rate created successfully", slog.String("rate_id", createdRate.ExchangeRateID))
	c.JSON(http.StatusCreated, dto.ExchangeRateResult{Status: dto.StatusNoError, Data: dto.ToExchangeRateResponse(createdRate)})
}

// updateExchangeRate godoc
// @Summary Update an exchange rate
// @Description Replaces the fields of a stored exchange rate
// @Tags exchange rates
// @Accept  json
// @Produce  json
// @Param   id path string true "Exchange rate ID"
// @Param   rate body dto.CreateExchangeRateRequest true "Exchange Rate details"
// @Success 200 {object} dto.ExchangeRateResult
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Exchange rate not found"
// @Failure 409 {object} map[string]string "Another rate already uses this date, code and name"
// @Failure 500 {object} map[string]string "Failed to update exchange rate"
// @Security BearerAuth
// @Router /rates/{id} [put]
func (h *exchangeRateHandler) updateExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	rateID := c.Param("id")
	logger = logger.With(slog.String("rate_id", rateID))

	var req dto.CreateExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateExchangeRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	updated, err := h.exchangeRateService.UpdateExchangeRate(c.Request.Context(), rateID, req)
	if err != nil {
		writeServiceError(c, logger, err, "Failed to update exchange rate")
		return
	}

	logger.Info("Exchange rate updated successfully")
	c.JSON(http.StatusOK, dto.ExchangeRateResult{Status: dto.StatusNoError, Data: dto.ToExchangeRateResponse(updated)})
}

// deleteExchangeRate godoc
// @Summary Delete an exchange rate
// @Tags exchange rates
// @Produce  json
// @Param   id path string true "Exchange rate ID"
// @Success 200 {object} map[string]string "Exchange rate deleted"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Exchange rate not found"
// @Failure 500 {object} map[string]string "Failed to delete exchange rate"
// @Security BearerAuth
// @Router /rates/{id} [delete]
func (h *exchangeRateHandler) deleteExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	rateID := c.Param("id")
	logger = logger.With(slog.String("rate_id", rateID))

	if err := h.exchangeRateService.DeleteExchangeRate(c.Request.Context(), rateID); err != nil {
		writeServiceError(c, logger, err, "Failed to delete exchange rate")
		return
	}

	logger.Info("Exchange rate deleted successfully")
	c.JSON(http.StatusOK, gin.H{"status": dto.StatusNoError})
}

// writeServiceError maps application errors onto HTTP statuses. Unknown errors become a 500 with fallback.
func writeServiceError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Exchange rate not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Exchange rate not found"})
	case errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Duplicate exchange rate", slog.String("error", err.Error()))
		msg := "Exchange rate already exists"
		if errors.As(err, &appErr) && appErr.Message != "" {
			msg = appErr.Message
		}
		c.JSON(http.StatusConflict, gin.H{"error": msg})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
