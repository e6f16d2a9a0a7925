package dto

import (
	"time"

	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
	"github.com/SscSPs/exchange_rates_app/internal/core/normalize"
	"github.com/shopspring/decimal"
)

// Response status messages.
const (
	StatusNoError      = "No error"
	StatusNoRatesFound = "No exchange rates found."
)

// ListExchangeRatesParams are the query parameters accepted by the rate listing.
// Dates use the dd.MM.yyyy. layout.
type ListExchangeRatesParams struct {
	CurrencyCode string `form:"currencyCode" binding:"omitempty,max=10"`
	CurrencyName string `form:"currencyName" binding:"omitempty,max=10"`
	FromDate     string `form:"fromDate" binding:"omitempty,apidate"`
	ToDate       string `form:"toDate" binding:"omitempty,apidate"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	Sort         string `form:"sort" binding:"omitempty,oneof=asc desc"`
}

// CreateExchangeRateRequest defines the structure for creating or replacing an exchange rate.
type CreateExchangeRateRequest struct {
	Date         string          `json:"date" binding:"required" example:"10.06.2025."`
	CurrencyCode string          `json:"currencyCode" binding:"required,max=10" example:"840"`
	CurrencyName string          `json:"currencyName" binding:"required,max=10" example:"USD"`
	BuyRate      decimal.Decimal `json:"buyRate" swaggertype:"string" example:"1.1384"`
	MiddleRate   decimal.Decimal `json:"middleRate" swaggertype:"string" example:"1.1367"`
	SellRate     decimal.Decimal `json:"sellRate" swaggertype:"string" example:"1.135"`
}

// ExchangeRateResponse defines the structure for API responses containing exchange rate details.
type ExchangeRateResponse struct {
	ExchangeRateID string          `json:"exchangeRateID"`
	Date           string          `json:"date"`
	CurrencyCode   string          `json:"currencyCode"`
	CurrencyName   string          `json:"currencyName"`
	BuyRate        decimal.Decimal `json:"buyRate" swaggertype:"string"`
	MiddleRate     decimal.Decimal `json:"middleRate" swaggertype:"string"`
	SellRate       decimal.Decimal `json:"sellRate" swaggertype:"string"`
	CreatedAt      time.Time       `json:"createdAt"`
	LastUpdatedAt  time.Time       `json:"lastUpdatedAt"`
}

// ExchangeRateResult wraps a single rate with a status message.
type ExchangeRateResult struct {
	Status string               `json:"status"`
	Data   ExchangeRateResponse `json:"data"`
}

// ListExchangeRatesResponse is one page of rates.
type ListExchangeRatesResponse struct {
	Status     string                 `json:"status"`
	Data       []ExchangeRateResponse `json:"data"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"pageSize"`
	TotalCount int                    `json:"totalCount"`
	TotalPages int                    `json:"totalPages"`
}

// ToExchangeRateResponse converts a domain.ExchangeRate to ExchangeRateResponse DTO
func ToExchangeRateResponse(rate *domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		ExchangeRateID: rate.ExchangeRateID,
		Date:           normalize.FormatDate(rate.Date, normalize.APIDateLayout),
		CurrencyCode:   rate.CurrencyCode,
		CurrencyName:   rate.CurrencyName,
		BuyRate:        rate.BuyRate,
		MiddleRate:     rate.MiddleRate,
		SellRate:       rate.SellRate,
		CreatedAt:      rate.CreatedAt,
		LastUpdatedAt:  rate.LastUpdatedAt,
	}
}

// ToListExchangeRateResponse converts a slice of domain.ExchangeRate to a slice of ExchangeRateResponse DTOs.
func ToListExchangeRateResponse(rates []domain.ExchangeRate) []ExchangeRateResponse {
	responses := make([]ExchangeRateResponse, len(rates))
	for i := range rates {
		responses[i] = ToExchangeRateResponse(&rates[i])
	}
	return responses
}
