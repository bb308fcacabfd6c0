package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the payment lifecycle. Posted payments are frozen.
type PaymentStatus string

const (
	PaymentDraft  PaymentStatus = "DRAFT"
	PaymentPosted PaymentStatus = "POSTED"
)

// Payment is a receipt (AR) or disbursement (AP) in its own currency.
type Payment struct {
	PaymentID       string              `json:"paymentID"`
	Kind            InvoiceKind         `json:"kind"`
	CounterpartyID  string              `json:"counterpartyID"`
	PaymentDate     time.Time           `json:"paymentDate"`
	Amount          decimal.Decimal     `json:"amount"`
	CurrencyCode    string              `json:"currencyCode"`
	BankAccountCode string              `json:"bankAccountCode,omitempty"`
	Reference       string              `json:"reference,omitempty"`
	Status          PaymentStatus       `json:"status"`
	Allocations     []PaymentAllocation `json:"allocations"`
	Unallocated     decimal.Decimal     `json:"unallocated"`
	JournalEntryID  *string             `json:"journalEntryID,omitempty"`
	AuditFields
}

// IsPosted reports whether the payment has been posted to the ledger.
func (p Payment) IsPosted() bool {
	return p.Status == PaymentPosted
}

// PaymentAllocation applies part of a payment to one invoice. Amount is in
// the invoice currency; SettledAmount is the same value in the payment
// currency. The base fields are filled when the payment is posted.
type PaymentAllocation struct {
	AllocationID   string          `json:"allocationID"`
	PaymentID      string          `json:"paymentID"`
	InvoiceID      string          `json:"invoiceID"`
	LineNo         int             `json:"lineNo"`
	Amount         decimal.Decimal `json:"amount"`
	SettledAmount  decimal.Decimal `json:"settledAmount"`
	PostingBase    decimal.Decimal `json:"postingBase"`
	SettlementBase decimal.Decimal `json:"settlementBase"`
	FXDifference   decimal.Decimal `json:"fxDifference"`
}

// PaymentPostingResult is returned when a payment is allocated and posted.
type PaymentPostingResult struct {
	Payment  *Payment  `json:"payment"`
	Invoices []Invoice `json:"invoices"`
	PostingResult
}
