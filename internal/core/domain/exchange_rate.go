package domain

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// ExchangeRate is one currency's buy, middle and sell rate for a calendar day.
// Rates are fixed-point decimals; never convert them through float64.
type ExchangeRate struct {
	ExchangeRateID string          `json:"exchangeRateID"`
	Date           civil.Date      `json:"date"`
	CurrencyCode   string          `json:"currencyCode"`
	CurrencyName   string          `json:"currencyName"`
	BuyRate        decimal.Decimal `json:"buyRate"`
	MiddleRate     decimal.Decimal `json:"middleRate"`
	SellRate       decimal.Decimal `json:"sellRate"`
	AuditFields
}

// Key returns the natural key of the rate.
func (r ExchangeRate) Key() RateKey {
	return RateKey{
		Date:         r.Date,
		CurrencyCode: r.CurrencyCode,
		CurrencyName: r.CurrencyName,
	}
}

// RateKey is the natural key of an ExchangeRate. At most one record per key exists in the store.
type RateKey struct {
	Date         civil.Date
	CurrencyCode string
	CurrencyName string
}

func (k RateKey) String() string {
	return fmt.Sprintf("%s|%s|%s", k.Date, k.CurrencyCode, k.CurrencyName)
}

// UpstreamRate is a record exactly as the upstream feed delivers it. It lives for one sync cycle.
type UpstreamRate struct {
	BatchNumber    string
	ApplicableDate string
	Country        string
	CountryISO     string
	BuyRate        string
	SellRate       string
	CurrencyCode   string
	MiddleRate     string
	CurrencyName   string
}

// ExchangeRateFilter narrows a stored rate listing.
type ExchangeRateFilter struct {
	CurrencyCode *string
	CurrencyName *string
	FromDate     *civil.Date
	ToDate       *civil.Date
	Ascending    bool
	Limit        int
	Offset       int
}

// Matches reports whether r passes every set field of the filter. Paging fields are ignored.
func (f ExchangeRateFilter) Matches(r ExchangeRate) bool {
	if f.CurrencyCode != nil && r.CurrencyCode != *f.CurrencyCode {
		return false
	}
	if f.CurrencyName != nil && r.CurrencyName != *f.CurrencyName {
		return false
	}
	if f.FromDate != nil && r.Date.Before(*f.FromDate) {
		return false
	}
	if f.ToDate != nil && r.Date.After(*f.ToDate) {
		return false
	}
	return true
}

// PageBounds returns the [start, end) slice of a total-row listing selected by Offset and Limit.
// An offset that is negative or past the end selects an empty page at total.
func (f ExchangeRateFilter) PageBounds(total int) (start, end int) {
	if f.Offset < 0 || f.Offset >= total {
		return total, total
	}
	start = f.Offset
	end = total
	if f.Limit > 0 && f.Limit < total-start {
		end = start + f.Limit
	}
	return start, end
}
