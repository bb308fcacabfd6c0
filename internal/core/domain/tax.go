package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxFilingStatus is the corporate tax filing lifecycle.
type TaxFilingStatus string

const (
	TaxDraft    TaxFilingStatus = "DRAFT"
	TaxAccrued  TaxFilingStatus = "ACCRUED"
	TaxFiled    TaxFilingStatus = "FILED"
	TaxPaid     TaxFilingStatus = "PAID"
	TaxReversed TaxFilingStatus = "REVERSED"
)

var taxTransitions = map[TaxFilingStatus][]TaxFilingStatus{
	TaxDraft:   {TaxAccrued},
	TaxAccrued: {TaxFiled},
	TaxFiled:   {TaxPaid, TaxReversed},
}

// CanTransitionTo reports whether the filing may move from s to next.
func (s TaxFilingStatus) CanTransitionTo(next TaxFilingStatus) bool {
	for _, allowed := range taxTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TaxFiling records a corporate tax accrual for one period.
type TaxFiling struct {
	FilingID        string          `json:"filingID"`
	PeriodStart     time.Time       `json:"periodStart"`
	PeriodEnd       time.Time       `json:"periodEnd"`
	TaxRate         decimal.Decimal `json:"taxRate"`
	Income          decimal.Decimal `json:"income"`
	Expense         decimal.Decimal `json:"expense"`
	TaxableIncome   decimal.Decimal `json:"taxableIncome"`
	TaxAmount       decimal.Decimal `json:"taxAmount"`
	Status          TaxFilingStatus `json:"status"`
	JournalEntryID  *string         `json:"journalEntryID,omitempty"`
	ReversalEntryID *string         `json:"reversalEntryID,omitempty"`
	AuditFields
}

// TaxBreakdown aggregates income and expense activity for a period.
type TaxBreakdown struct {
	PeriodStart time.Time       `json:"periodStart"`
	PeriodEnd   time.Time       `json:"periodEnd"`
	Income      decimal.Decimal `json:"income"`
	Expense     decimal.Decimal `json:"expense"`
	Profit      decimal.Decimal `json:"profit"`
	Lines       []PeriodLine    `json:"lines"`
}
