package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllocationRequest applies Amount (invoice currency) to one invoice.
type AllocationRequest struct {
	InvoiceID string          `json:"invoiceID" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"gt=0"`
}

// CreatePaymentRequest defines a draft payment and its allocations.
type CreatePaymentRequest struct {
	CounterpartyID  string              `json:"counterpartyID" binding:"required"`
	PaymentDate     time.Time           `json:"paymentDate" binding:"required"`
	Amount          decimal.Decimal     `json:"amount" binding:"gt=0"`
	CurrencyCode    string              `json:"currencyCode" binding:"required,len=3,uppercase"`
	BankAccountCode string              `json:"bankAccountCode"` // defaults to the BANK role
	Reference       string              `json:"reference"`
	Allocations     []AllocationRequest `json:"allocations" binding:"dive"`
	PostImmediately bool                `json:"postImmediately"`
}

// UpdatePaymentRequest edits a draft payment. Allocations, when present,
// replace the existing set.
type UpdatePaymentRequest struct {
	PaymentDate     *time.Time           `json:"paymentDate"`
	Amount          *decimal.Decimal     `json:"amount"`
	CurrencyCode    *string              `json:"currencyCode" binding:"omitempty,len=3,uppercase"`
	BankAccountCode *string              `json:"bankAccountCode"`
	Reference       *string              `json:"reference"`
	Allocations     *[]AllocationRequest `json:"allocations"`
}
