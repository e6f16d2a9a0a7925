package pgsql

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertExchangeRatesBatchQueuesOneInsertPerRate(t *testing.T) {
	created := time.Date(2025, 6, 10, 16, 30, 0, 0, time.UTC)
	rates := []domain.ExchangeRate{
		{
			ExchangeRateID: "3f1c2a9e-5b7d-4c1e-9a8f-2d6b0e4c7a11",
			Date:           civil.Date{Year: 2025, Month: 6, Day: 10},
			CurrencyCode:   "840",
			CurrencyName:   "USD",
			BuyRate:        decimal.RequireFromString("1.1433"),
			MiddleRate:     decimal.RequireFromString("1.1416"),
			SellRate:       decimal.RequireFromString("1.1399"),
			AuditFields:    domain.AuditFields{CreatedAt: created, LastUpdatedAt: created},
		},
		{
			ExchangeRateID: "9b2e7c44-0d1a-4f63-8e55-7a1c3b9d2f08",
			Date:           civil.Date{Year: 2025, Month: 6, Day: 10},
			CurrencyCode:   "392",
			CurrencyName:   "JPY",
			BuyRate:        decimal.RequireFromString("165.28"),
			MiddleRate:     decimal.RequireFromString("165.03"),
			SellRate:       decimal.RequireFromString("164.78"),
			AuditFields:    domain.AuditFields{CreatedAt: created, LastUpdatedAt: created},
		},
	}

	batch := insertExchangeRatesBatch(rates)

	require.Equal(t, len(rates), batch.Len())
	for i, rate := range rates {
		q := batch.QueuedQueries[i]
		assert.Equal(t, insertExchangeRateSQL, q.SQL)
		require.Len(t, q.Arguments, 9)
		assert.Equal(t, rate.ExchangeRateID, q.Arguments[0])
		assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), q.Arguments[1])
		assert.Equal(t, rate.CurrencyCode, q.Arguments[2])
		assert.Equal(t, rate.CurrencyName, q.Arguments[3])
		assert.True(t, rate.MiddleRate.Equal(q.Arguments[5].(decimal.Decimal)))
	}
}

func TestInsertExchangeRatesBatchEmpty(t *testing.T) {
	assert.Zero(t, insertExchangeRatesBatch(nil).Len())
}
