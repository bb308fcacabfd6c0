package dto

import "github.com/shopspring/decimal"

// UpdateSettingsRequest edits the engine settings. Absent fields are unchanged.
// The base currency is fixed once the ledger has been seeded.
type UpdateSettingsRequest struct {
	AssetCapitalizationThreshold *decimal.Decimal `json:"assetCapitalizationThreshold"`
	CorporateTaxRate             *decimal.Decimal `json:"corporateTaxRate"`
	AgingBoundaries              []int            `json:"agingBoundaries"`
}
