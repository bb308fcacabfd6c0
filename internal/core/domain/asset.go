package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AssetStatus is the fixed asset lifecycle.
type AssetStatus string

const (
	AssetDraft    AssetStatus = "DRAFT"
	AssetActive   AssetStatus = "ACTIVE"
	AssetDisposed AssetStatus = "DISPOSED"
)

// FixedAsset is a capitalizable asset depreciated straight-line by month.
// The Base fields are fixed at capitalization and drive all later postings.
type FixedAsset struct {
	AssetID                 string           `json:"assetID"`
	Name                    string           `json:"name"`
	CurrencyCode            string           `json:"currencyCode"`
	Cost                    decimal.Decimal  `json:"cost"`
	SalvageValue            decimal.Decimal  `json:"salvageValue"`
	UsefulLifeMonths        int              `json:"usefulLifeMonths"`
	AcquisitionDate         time.Time        `json:"acquisitionDate"`
	Status                  AssetStatus      `json:"status"`
	BaseCost                decimal.Decimal  `json:"baseCost"`
	BaseSalvage             decimal.Decimal  `json:"baseSalvage"`
	AccumulatedDepreciation decimal.Decimal  `json:"accumulatedDepreciation"`
	DepreciatedMonths       int              `json:"depreciatedMonths"`
	LastDepreciatedPeriod   string           `json:"lastDepreciatedPeriod,omitempty"`
	CapitalizationEntryID   *string          `json:"capitalizationEntryID,omitempty"`
	DisposalEntryID         *string          `json:"disposalEntryID,omitempty"`
	DisposalProceeds        *decimal.Decimal `json:"disposalProceeds,omitempty"`
	AuditFields
}

// NetBookValue is base cost less accumulated depreciation.
func (a FixedAsset) NetBookValue() decimal.Decimal {
	return a.BaseCost.Sub(a.AccumulatedDepreciation)
}

// DepreciationCharge returns the straight-line charge for the next month,
// rounded to places. The final month absorbs the rounding remainder so the
// accumulated total never passes the depreciable base.
func (a FixedAsset) DepreciationCharge(places int32) decimal.Decimal {
	depreciable := a.BaseCost.Sub(a.BaseSalvage)
	remaining := depreciable.Sub(a.AccumulatedDepreciation)
	if !remaining.IsPositive() || a.UsefulLifeMonths <= 0 {
		return decimal.Zero
	}
	if a.DepreciatedMonths >= a.UsefulLifeMonths-1 {
		return remaining
	}
	monthly := depreciable.Div(decimal.NewFromInt(int64(a.UsefulLifeMonths))).RoundBank(places)
	if monthly.GreaterThan(remaining) {
		return remaining
	}
	return monthly
}

// ParsePeriod parses a "YYYY-MM" depreciation period into its first day.
func ParsePeriod(period string) (time.Time, error) {
	t, err := time.Parse("2006-01", period)
	if err != nil {
		return time.Time{}, fmt.Errorf("period %q must be formatted YYYY-MM: %w", period, err)
	}
	return t, nil
}

// PeriodEnd returns the last day of the month that starts at periodStart.
func PeriodEnd(periodStart time.Time) time.Time {
	return periodStart.AddDate(0, 1, -1)
}

// AssetPostingResult pairs the updated asset with its posting.
type AssetPostingResult struct {
	Asset *FixedAsset `json:"asset"`
	PostingResult
}
