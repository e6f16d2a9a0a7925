package normalize

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/SscSPs/exchange_rates_app/internal/apperrors"
	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimal(t *testing.T) {
	want := decimal.RequireFromString("7.25")

	for _, raw := range []string{"7,25", "7.25", " 7,250000 "} {
		got, err := ParseDecimal(raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got), "%q parsed to %s", raw, got)
	}

	got, err := ParseDecimal("0,000001")
	require.NoError(t, err)
	assert.Equal(t, "0.000001", got.String())

	for _, raw := range []string{"", "   ", "abc", "7,25,1", "1.234,56"} {
		_, err := ParseDecimal(raw)
		assert.ErrorIs(t, err, apperrors.ErrFormat, raw)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-09", UpstreamDateLayout)
	require.NoError(t, err)
	assert.Equal(t, civil.Date{Year: 2025, Month: 6, Day: 9}, d)

	d, err = ParseDate("09.06.2025.", APIDateLayout)
	require.NoError(t, err)
	assert.Equal(t, civil.Date{Year: 2025, Month: 6, Day: 9}, d)

	_, err = ParseDate("09.06.2025", UpstreamDateLayout)
	assert.ErrorIs(t, err, apperrors.ErrFormat)

	_, err = ParseDate("2025-02-30", UpstreamDateLayout)
	assert.ErrorIs(t, err, apperrors.ErrFormat)

	assert.Equal(t, "09.06.2025.", FormatDate(civil.Date{Year: 2025, Month: 6, Day: 9}, APIDateLayout))
}

func upstream(date, name, middle string) domain.UpstreamRate {
	return domain.UpstreamRate{
		BatchNumber:    "110",
		ApplicableDate: date,
		Country:        "SAD",
		CountryISO:     "USA",
		BuyRate:        "1,1384",
		SellRate:       "1,1350",
		CurrencyCode:   "840",
		MiddleRate:     middle,
		CurrencyName:   name,
	}
}

func TestExchangeRate(t *testing.T) {
	r, err := ExchangeRate(upstream("2025-06-09", "USD", "1,1367"))
	require.NoError(t, err)

	assert.Empty(t, r.ExchangeRateID)
	assert.Equal(t, civil.Date{Year: 2025, Month: 6, Day: 9}, r.Date)
	assert.Equal(t, "840", r.CurrencyCode)
	assert.Equal(t, "USD", r.CurrencyName)
	assert.Equal(t, "1.1384", r.BuyRate.String())
	assert.Equal(t, "1.1367", r.MiddleRate.String())
	assert.Equal(t, "1.135", r.SellRate.String())

	_, err = ExchangeRate(upstream("2025-06-09", "  ", "1,1367"))
	assert.ErrorIs(t, err, apperrors.ErrFormat)

	_, err = ExchangeRate(upstream("2025-06-09", "USD", "n/a"))
	assert.ErrorIs(t, err, apperrors.ErrFormat)
	assert.Contains(t, err.Error(), "middle rate")
}

func TestExchangeRatesFailsWholeBatch(t *testing.T) {
	records := []domain.UpstreamRate{
		upstream("2025-06-09", "USD", "1,1367"),
		upstream("2025-06-09", "GBP", "0,8421"),
		upstream("09.06.2025", "JPY", "164,12"),
		upstream("2025-06-09", "CHF", "0,9372"),
	}

	rates, err := ExchangeRates(records)
	assert.ErrorIs(t, err, apperrors.ErrFormat)
	assert.Nil(t, rates)
	assert.Contains(t, err.Error(), "record 2")

	rates, err = ExchangeRates(records[:2])
	require.NoError(t, err)
	assert.Len(t, rates, 2)

	rates, err = ExchangeRates(nil)
	require.NoError(t, err)
	assert.Empty(t, rates)
}
