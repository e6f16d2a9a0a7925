package services

import (
	"context"

	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
	"github.com/SscSPs/exchange_rates_app/internal/dto"
)

// ExchangeRateReaderSvc defines read operations for exchange rate data
type ExchangeRateReaderSvc interface {
	// GetExchangeRateByID retrieves a stored rate.
	GetExchangeRateByID(ctx context.Context, rateID string) (*domain.ExchangeRate, error)

	// ListExchangeRates returns a filtered, sorted page of rates and the total count.
	ListExchangeRates(ctx context.Context, req dto.ListExchangeRatesParams) ([]domain.ExchangeRate, int, error)
}

// ExchangeRateWriterSvc defines write operations for exchange rate data
type ExchangeRateWriterSvc interface {
	// CreateExchangeRate persists a new rate; the natural key must not exist yet.
	CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest) (*domain.ExchangeRate, error)

	// UpdateExchangeRate replaces the fields of an existing rate.
	UpdateExchangeRate(ctx context.Context, rateID string, req dto.CreateExchangeRateRequest) (*domain.ExchangeRate, error)

	// DeleteExchangeRate removes a rate.
	DeleteExchangeRate(ctx context.Context, rateID string) error
}

// ExchangeRateSvcFacade combines all exchange rate-related service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ExchangeRateWriterSvc
}
