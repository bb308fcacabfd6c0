package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceKind distinguishes receivables from payables.
type InvoiceKind string

const (
	KindAR InvoiceKind = "AR"
	KindAP InvoiceKind = "AP"
)

// IsValid reports whether k is AR or AP.
func (k InvoiceKind) IsValid() bool {
	return k == KindAR || k == KindAP
}

// ControlRole is the AR or AP control account role for the kind.
func (k InvoiceKind) ControlRole() AccountRole {
	if k == KindAP {
		return RoleAP
	}
	return RoleAR
}

// InvoiceSource is the posting source kind for invoices of this kind.
func (k InvoiceKind) InvoiceSource() SourceKind {
	if k == KindAP {
		return SourceAPInvoice
	}
	return SourceARInvoice
}

// PaymentSource is the posting source kind for payments of this kind.
func (k InvoiceKind) PaymentSource() SourceKind {
	if k == KindAP {
		return SourceAPPayment
	}
	return SourceARPayment
}

// InvoiceStatus tracks an invoice through posting and settlement.
type InvoiceStatus string

const (
	InvoiceDraft         InvoiceStatus = "DRAFT"
	InvoicePosted        InvoiceStatus = "POSTED"
	InvoicePartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceClosed        InvoiceStatus = "CLOSED"
)

// Invoice is an AR or AP document. Amounts are in the invoice currency.
// Subtotal is tax-exclusive; Total = Subtotal + TaxAmount.
type Invoice struct {
	InvoiceID      string           `json:"invoiceID"`
	Kind           InvoiceKind      `json:"kind"`
	Number         string           `json:"number"`
	CounterpartyID string           `json:"counterpartyID"`
	CurrencyCode   string           `json:"currencyCode"`
	IssueDate      time.Time        `json:"issueDate"`
	DueDate        time.Time        `json:"dueDate"`
	Description    string           `json:"description"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	TaxRate        decimal.Decimal  `json:"taxRate"`
	TaxAmount      decimal.Decimal  `json:"taxAmount"`
	Total          decimal.Decimal  `json:"total"`
	TaxInclusive   bool             `json:"taxInclusive"`
	Outstanding    decimal.Decimal  `json:"outstanding"`
	Status         InvoiceStatus    `json:"status"`
	Posted         bool             `json:"posted"`
	PostingRate    *decimal.Decimal `json:"postingRate,omitempty"`
	BaseTotal      *decimal.Decimal `json:"baseTotal,omitempty"`
	JournalEntryID *string          `json:"journalEntryID,omitempty"`
	AuditFields
}

// IsOpen reports whether the invoice can still take allocations.
func (i Invoice) IsOpen() bool {
	return i.Posted && i.Outstanding.IsPositive()
}

// RateAtPosting returns the base rate the invoice was posted at.
// Base-currency invoices are posted at one.
func (i Invoice) RateAtPosting() decimal.Decimal {
	if i.PostingRate == nil {
		return decimal.NewFromInt(1)
	}
	return *i.PostingRate
}
