// Package normalize converts upstream wire values into canonical domain types.
//
// It is the only place where rate strings are parsed; everything downstream works on
// decimal.Decimal and civil.Date.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/SscSPs/exchange_rates_app/internal/apperrors"
	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

const (
	// UpstreamDateLayout is the applicable-date format used by the rates feed.
	UpstreamDateLayout = "2006-01-02"
	// APIDateLayout is the dd.MM.yyyy. format used by the public rates API.
	APIDateLayout = "02.01.2006."
)

// ParseDate parses raw with the given time layout and returns the calendar day.
func ParseDate(raw, layout string) (civil.Date, error) {
	t, err := time.Parse(layout, strings.TrimSpace(raw))
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: date %q does not match %q", apperrors.ErrFormat, raw, layout)
	}
	return civil.DateOf(t), nil
}

// FormatDate renders d with the given time layout.
func FormatDate(d civil.Date, layout string) string {
	return d.In(time.UTC).Format(layout)
}

// ParseDecimal parses a decimal string using either comma or dot as the decimal separator.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: empty decimal value", apperrors.ErrFormat)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: invalid decimal %q", apperrors.ErrFormat, raw)
	}
	return d, nil
}

// ExchangeRate converts one upstream record into a canonical rate without an id.
func ExchangeRate(u domain.UpstreamRate) (domain.ExchangeRate, error) {
	date, err := ParseDate(u.ApplicableDate, UpstreamDateLayout)
	if err != nil {
		return domain.ExchangeRate{}, err
	}

	code := strings.TrimSpace(u.CurrencyCode)
	name := strings.TrimSpace(u.CurrencyName)
	if code == "" || name == "" {
		return domain.ExchangeRate{}, fmt.Errorf("%w: missing currency code or name on %s", apperrors.ErrFormat, date)
	}

	buy, err := ParseDecimal(u.BuyRate)
	if err != nil {
		return domain.ExchangeRate{}, fmt.Errorf("buy rate: %w", err)
	}
	middle, err := ParseDecimal(u.MiddleRate)
	if err != nil {
		return domain.ExchangeRate{}, fmt.Errorf("middle rate: %w", err)
	}
	sell, err := ParseDecimal(u.SellRate)
	if err != nil {
		return domain.ExchangeRate{}, fmt.Errorf("sell rate: %w", err)
	}

	return domain.ExchangeRate{
		Date:         date,
		CurrencyCode: code,
		CurrencyName: name,
		BuyRate:      buy,
		MiddleRate:   middle,
		SellRate:     sell,
	}, nil
}

// ExchangeRates converts a whole batch. A single bad record fails the batch and no rates are returned.
func ExchangeRates(records []domain.UpstreamRate) ([]domain.ExchangeRate, error) {
	rates := make([]domain.ExchangeRate, 0, len(records))
	for i, u := range records {
		r, err := ExchangeRate(u)
		if err != nil {
			return nil, fmt.Errorf("record %d (%s %s): %w", i, u.CurrencyName, u.ApplicableDate, err)
		}
		rates = append(rates, r)
	}
	return rates, nil
}
