package repositories

import (
	"context"

	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
)

// ExchangeRateReader defines read operations for exchange rate data
type ExchangeRateReader interface {
	// ExistsExchangeRate reports whether a rate with the given natural key is stored.
	ExistsExchangeRate(ctx context.Context, key domain.RateKey) (bool, error)

	// FindExchangeRateByID retrieves a rate by its id.
	FindExchangeRateByID(ctx context.Context, rateID string) (*domain.ExchangeRate, error)

	// ListExchangeRates returns one page of rates matching the filter and the total match count.
	ListExchangeRates(ctx context.Context, filter domain.ExchangeRateFilter) ([]domain.ExchangeRate, int, error)
}

// ExchangeRateWriter defines write operations for exchange rate data
type ExchangeRateWriter interface {
	// InsertExchangeRates stores all rates in one transaction. Either every rate is stored or none is.
	InsertExchangeRates(ctx context.Context, rates []domain.ExchangeRate) error

	// UpdateExchangeRate replaces the stored rate with the same id.
	UpdateExchangeRate(ctx context.Context, rate domain.ExchangeRate) error

	// DeleteExchangeRate removes the rate with the given id.
	DeleteExchangeRate(ctx context.Context, rateID string) error
}

// ExchangeRateRepositoryFacade combines all exchange rate-related repository interfaces
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}

// RateSyncStore is the narrow store gateway used by the sync engine.
type RateSyncStore interface {
	ExistsExchangeRate(ctx context.Context, key domain.RateKey) (bool, error)
	InsertExchangeRates(ctx context.Context, rates []domain.ExchangeRate) error
}
