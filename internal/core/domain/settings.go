package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EngineSettings is the single configuration record consulted by the engine.
type EngineSettings struct {
	BaseCurrency                 string          `json:"baseCurrency"`
	AssetCapitalizationThreshold decimal.Decimal `json:"assetCapitalizationThreshold"`
	CorporateTaxRate             decimal.Decimal `json:"corporateTaxRate"`
	AgingBoundaries              AgingBoundaries `json:"agingBoundaries"`
	UpdatedAt                    time.Time       `json:"updatedAt"`
	UpdatedBy                    string          `json:"updatedBy"`
}

// Validate checks the settings for internal consistency.
func (s EngineSettings) Validate() error {
	if len(s.BaseCurrency) != 3 {
		return fmt.Errorf("base currency %q must be a 3-letter code", s.BaseCurrency)
	}
	if s.AssetCapitalizationThreshold.IsNegative() {
		return fmt.Errorf("asset capitalization threshold cannot be negative")
	}
	if s.CorporateTaxRate.IsNegative() || s.CorporateTaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("corporate tax rate must be between 0 and 1")
	}
	return s.AgingBoundaries.Validate()
}

// DefaultAgingBoundaries yields current, 1-30, 31-60, 61-90 and 90+.
var DefaultAgingBoundaries = AgingBoundaries{0, 30, 60, 90}
