package mapping

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/SscSPs/exchange_rates_app/internal/core/domain"
	"github.com/SscSPs/exchange_rates_app/internal/models"
)

// DateToTime returns midnight UTC of d.
func DateToTime(d civil.Date) time.Time {
	return d.In(time.UTC)
}

// TimeToDate returns the calendar day of t as seen in UTC.
func TimeToDate(t time.Time) civil.Date {
	return civil.DateOf(t.UTC())
}

// ToModelExchangeRate converts a domain ExchangeRate to a model ExchangeRate
func ToModelExchangeRate(d domain.ExchangeRate) models.ExchangeRate {
	return models.ExchangeRate{
		ExchangeRateID: d.ExchangeRateID,
		RateDate:       DateToTime(d.Date),
		CurrencyCode:   d.CurrencyCode,
		CurrencyName:   d.CurrencyName,
		BuyRate:        d.BuyRate,
		MiddleRate:     d.MiddleRate,
		SellRate:       d.SellRate,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainExchangeRate converts a model ExchangeRate to a domain ExchangeRate
func ToDomainExchangeRate(m models.ExchangeRate) domain.ExchangeRate {
	return domain.ExchangeRate{
		ExchangeRateID: m.ExchangeRateID,
		Date:           TimeToDate(m.RateDate),
		CurrencyCode:   m.CurrencyCode,
		CurrencyName:   m.CurrencyName,
		BuyRate:        m.BuyRate,
		MiddleRate:     m.MiddleRate,
		SellRate:       m.SellRate,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}
