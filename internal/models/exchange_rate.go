package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is the persisted form of one currency's rates for a day.
// RateDate is midnight UTC of the calendar day.
type ExchangeRate struct {
	ExchangeRateID string          `json:"exchangeRateID" db:"exchange_rate_id"`
	RateDate       time.Time       `json:"rateDate" db:"rate_date"`
	CurrencyCode   string          `json:"currencyCode" db:"currency_code"`
	CurrencyName   string          `json:"currencyName" db:"currency_name"`
	BuyRate        decimal.Decimal `json:"buyRate" db:"buy_rate"`
	MiddleRate     decimal.Decimal `json:"middleRate" db:"middle_rate"`
	SellRate       decimal.Decimal `json:"sellRate" db:"sell_rate"`
	AuditFields
}
