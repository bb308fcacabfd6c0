package apperrors

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Class groups engine errors by who has to act on them.
type Class string

const (
	ClassValidation    Class = "validation"
	ClassBusiness      Class = "business"
	ClassConflict      Class = "conflict"
	ClassConfiguration Class = "configuration"
)

// EngineError is implemented by every posting engine failure.
type EngineError interface {
	error
	Code() string
	Class() Class
}

// ImbalancedEntryError reports a journal entry whose sides disagree.
type ImbalancedEntryError struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

func (e *ImbalancedEntryError) Error() string {
	return fmt.Sprintf("journal entry is not balanced: debits %s, credits %s", e.Debits.String(), e.Credits.String())
}
func (e *ImbalancedEntryError) Code() string { return "IMBALANCED_ENTRY" }
func (e *ImbalancedEntryError) Class() Class { return ClassBusiness }

// UnknownAccountError reports a role or account code that cannot be used for posting.
type UnknownAccountError struct {
	Role        string
	AccountCode string
	Reason      string
}

func (e *UnknownAccountError) Error() string {
	switch {
	case e.Role != "" && e.AccountCode != "":
		return fmt.Sprintf("account %s for role %s cannot be used: %s", e.AccountCode, e.Role, e.Reason)
	case e.Role != "":
		return fmt.Sprintf("account role %s cannot be resolved: %s", e.Role, e.Reason)
	default:
		return fmt.Sprintf("account %s cannot be used: %s", e.AccountCode, e.Reason)
	}
}
func (e *UnknownAccountError) Code() string { return "UNKNOWN_ACCOUNT" }
func (e *UnknownAccountError) Class() Class { return ClassConfiguration }

// AlreadyPostedError signals that the source document already has its entry.
// The ledger turns it into a replayed success.
type AlreadyPostedError struct {
	SourceKind string
	SourceID   string
	EntryID    string
}

func (e *AlreadyPostedError) Error() string {
	return fmt.Sprintf("%s %s already posted as entry %s", e.SourceKind, e.SourceID, e.EntryID)
}
func (e *AlreadyPostedError) Code() string { return "ALREADY_POSTED" }
func (e *AlreadyPostedError) Class() Class { return ClassConflict }

// PostedDocumentMutatedError reports a re-post whose content differs from the posted version.
type PostedDocumentMutatedError struct {
	SourceKind string
	SourceID   string
	EntryID    string
}

func (e *PostedDocumentMutatedError) Error() string {
	if e.EntryID == "" {
		return fmt.Sprintf("%s %s is posted and can no longer change", e.SourceKind, e.SourceID)
	}
	return fmt.Sprintf("%s %s changed after it was posted as entry %s", e.SourceKind, e.SourceID, e.EntryID)
}
func (e *PostedDocumentMutatedError) Code() string { return "POSTED_DOCUMENT_MUTATED" }
func (e *PostedDocumentMutatedError) Class() Class { return ClassConflict }

// OverAllocationError reports an allocation above what the invoice or payment can absorb.
type OverAllocationError struct {
	InvoiceID string
	PaymentID string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *OverAllocationError) Error() string {
	if e.InvoiceID != "" {
		return fmt.Sprintf("allocation of %s exceeds outstanding %s on invoice %s", e.Requested.String(), e.Available.String(), e.InvoiceID)
	}
	return fmt.Sprintf("allocations of %s exceed payment %s total %s", e.Requested.String(), e.PaymentID, e.Available.String())
}
func (e *OverAllocationError) Code() string { return "OVER_ALLOCATION" }
func (e *OverAllocationError) Class() Class { return ClassBusiness }

// PostedPaymentImmutableError reports an edit attempted on a posted payment.
type PostedPaymentImmutableError struct {
	PaymentID string
}

func (e *PostedPaymentImmutableError) Error() string {
	return fmt.Sprintf("payment %s is posted and cannot be edited", e.PaymentID)
}
func (e *PostedPaymentImmutableError) Code() string { return "POSTED_PAYMENT_IMMUTABLE" }
func (e *PostedPaymentImmutableError) Class() Class { return ClassConflict }

// NoRateAvailableError reports a missing exchange rate.
type NoRateAvailableError struct {
	Currency string
	AsOf     time.Time
}

func (e *NoRateAvailableError) Error() string {
	return fmt.Sprintf("no exchange rate for %s effective on or before %s", e.Currency, e.AsOf.Format(time.DateOnly))
}
func (e *NoRateAvailableError) Code() string { return "NO_RATE_AVAILABLE" }
func (e *NoRateAvailableError) Class() Class { return ClassConfiguration }

// InvalidPeriodError reports a period whose end precedes its start.
type InvalidPeriodError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("invalid period: end %s is before start %s", e.End.Format(time.DateOnly), e.Start.Format(time.DateOnly))
}
func (e *InvalidPeriodError) Code() string { return "INVALID_PERIOD" }
func (e *InvalidPeriodError) Class() Class { return ClassValidation }

// InvalidStateTransitionError reports a lifecycle move that is not allowed.
type InvalidStateTransitionError struct {
	Entity string
	ID     string
	From   string
	To     string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("%s %s cannot move from %s to %s", e.Entity, e.ID, e.From, e.To)
}
func (e *InvalidStateTransitionError) Code() string { return "INVALID_STATE_TRANSITION" }
func (e *InvalidStateTransitionError) Class() Class { return ClassConflict }

// DocumentNotApprovedError reports a posting attempted before approval.
type DocumentNotApprovedError struct {
	DocumentKind string
	DocumentID   string
	Status       string
}

func (e *DocumentNotApprovedError) Error() string {
	return fmt.Sprintf("%s %s is not approved (status %s)", e.DocumentKind, e.DocumentID, e.Status)
}
func (e *DocumentNotApprovedError) Code() string { return "DOCUMENT_NOT_APPROVED" }
func (e *DocumentNotApprovedError) Class() Class { return ClassConflict }

var (
	_ EngineError = (*ImbalancedEntryError)(nil)
	_ EngineError = (*UnknownAccountError)(nil)
	_ EngineError = (*AlreadyPostedError)(nil)
	_ EngineError = (*PostedDocumentMutatedError)(nil)
	_ EngineError = (*OverAllocationError)(nil)
	_ EngineError = (*PostedPaymentImmutableError)(nil)
	_ EngineError = (*NoRateAvailableError)(nil)
	_ EngineError = (*InvalidPeriodError)(nil)
	_ EngineError = (*InvalidStateTransitionError)(nil)
	_ EngineError = (*DocumentNotApprovedError)(nil)
)
