package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxAccrualRequest invokes a corporate tax accrual for a period.
// Rate defaults to the configured corporate tax rate.
type TaxAccrualRequest struct {
	PeriodStart time.Time        `json:"periodStart" binding:"required"`
	PeriodEnd   time.Time        `json:"periodEnd" binding:"required"`
	Rate        *decimal.Decimal `json:"rate"`
}
