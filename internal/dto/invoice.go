package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest defines a draft AR or AP invoice. Amount is the
// tax-exclusive subtotal, or the gross when TaxInclusive is set.
type CreateInvoiceRequest struct {
	Number         string          `json:"number" binding:"required"`
	CounterpartyID string          `json:"counterpartyID" binding:"required"`
	CurrencyCode   string          `json:"currencyCode" binding:"required,len=3,uppercase"`
	IssueDate      time.Time       `json:"issueDate" binding:"required"`
	DueDate        time.Time       `json:"dueDate" binding:"required"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount" binding:"gt=0"`
	TaxRate        decimal.Decimal `json:"taxRate" binding:"gte=0"`
	TaxInclusive   bool            `json:"taxInclusive"`
}

// UpdateInvoiceRequest edits a draft invoice. Absent fields are unchanged.
type UpdateInvoiceRequest struct {
	Number         *string          `json:"number"`
	CounterpartyID *string          `json:"counterpartyID"`
	CurrencyCode   *string          `json:"currencyCode" binding:"omitempty,len=3,uppercase"`
	IssueDate      *time.Time       `json:"issueDate"`
	DueDate        *time.Time       `json:"dueDate"`
	Description    *string          `json:"description"`
	Amount         *decimal.Decimal `json:"amount"`
	TaxRate        *decimal.Decimal `json:"taxRate"`
	TaxInclusive   *bool            `json:"taxInclusive"`
}
