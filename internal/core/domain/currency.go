package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency represents a supported currency in the domain.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // Primary Key (e.g., "USD")
	Symbol       string `json:"symbol"`       // e.g., "$"
	Name         string `json:"name"`         // e.g., "US Dollar"
	MinorUnits   int32  `json:"minorUnits"`   // 2 for USD, 0 for JPY, 3 for KWD
	AuditFields
}

// Round rounds amount half-to-even to the currency's minor units.
func (c Currency) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.RoundBank(c.MinorUnits)
}

// IsExact reports whether amount carries no precision below the minor unit.
func (c Currency) IsExact(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(c.MinorUnits))
}

// ExchangeRate states that one unit of CurrencyCode is worth RateToBase units
// of the base currency from EffectiveDate onwards.
type ExchangeRate struct {
	ExchangeRateID string          `json:"exchangeRateID"`
	CurrencyCode   string          `json:"currencyCode"`
	RateToBase     decimal.Decimal `json:"rateToBase"`
	EffectiveDate  time.Time       `json:"effectiveDate"`
	AuditFields
}
