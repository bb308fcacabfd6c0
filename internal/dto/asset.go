package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateAssetRequest registers a draft fixed asset.
type CreateAssetRequest struct {
	Name             string          `json:"name" binding:"required"`
	CurrencyCode     string          `json:"currencyCode" binding:"required,len=3,uppercase"`
	Cost             decimal.Decimal `json:"cost" binding:"gt=0"`
	SalvageValue     decimal.Decimal `json:"salvageValue" binding:"gte=0"`
	UsefulLifeMonths int             `json:"usefulLifeMonths" binding:"required,min=1"`
	AcquisitionDate  time.Time       `json:"acquisitionDate" binding:"required"`
}

// CapitalizeAssetRequest posts the capitalization entry. FundingRole is
// BANK (paid) or AP (on credit).
type CapitalizeAssetRequest struct {
	Date        *time.Time `json:"date"`
	FundingRole string     `json:"fundingRole" binding:"omitempty,oneof=BANK AP"`
}

// DisposeAssetRequest posts the disposal entry.
type DisposeAssetRequest struct {
	Date     time.Time       `json:"date" binding:"required"`
	Proceeds decimal.Decimal `json:"proceeds" binding:"gte=0"`
}

// DepreciateAssetRequest posts one month of depreciation.
type DepreciateAssetRequest struct {
	Period string `json:"period" binding:"required"` // YYYY-MM
}
