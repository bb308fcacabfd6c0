package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry.
type EntryStatus string

const (
	Posted   EntryStatus = "POSTED"
	Reversed EntryStatus = "REVERSED"
)

// SourceKind names the kind of business document an entry was posted from.
type SourceKind string

const (
	SourceManual              SourceKind = "MANUAL"
	SourceARInvoice           SourceKind = "INVOICE_AR"
	SourceAPInvoice           SourceKind = "INVOICE_AP"
	SourceARPayment           SourceKind = "PAYMENT_AR"
	SourceAPPayment           SourceKind = "PAYMENT_AP"
	SourceTaxAccrual          SourceKind = "TAX_ACCRUAL"
	SourceAssetCapitalization SourceKind = "ASSET_CAPITALIZATION"
	SourceAssetDepreciation   SourceKind = "ASSET_DEPRECIATION"
	SourceAssetDisposal       SourceKind = "ASSET_DISPOSAL"
	SourceReversal            SourceKind = "REVERSAL"
)

// SourceRef identifies the document behind an entry.
type SourceRef struct {
	Kind SourceKind `json:"kind"`
	ID   string     `json:"id"`
}

// JournalEntry is a balanced set of lines in the base currency.
// Lines are immutable once posted; corrections are new reversing entries.
type JournalEntry struct {
	EntryID          string        `json:"entryID"`
	EntryDate        time.Time     `json:"entryDate"`
	CurrencyCode     string        `json:"currencyCode"`
	Memo             string        `json:"memo"`
	Status           EntryStatus   `json:"status"`
	Source           SourceRef     `json:"source"`
	OriginalEntryID  *string       `json:"originalEntryID,omitempty"`
	ReversingEntryID *string       `json:"reversingEntryID,omitempty"`
	Lines            []JournalLine `json:"lines"`
	AuditFields
}

// Totals returns the debit and credit sums of the entry.
func (e JournalEntry) Totals() (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	return debits, credits
}

// IsBalanced reports whether debits equal credits exactly.
func (e JournalEntry) IsBalanced() bool {
	d, c := e.Totals()
	return d.Equal(c)
}

// JournalLine is one side of a journal entry. Exactly one of Debit and Credit
// is non-zero.
type JournalLine struct {
	LineID           string            `json:"lineID"`
	EntryID          string            `json:"entryID"`
	LineNo           int               `json:"lineNo"`
	AccountCode      string            `json:"accountCode"`
	Role             AccountRole       `json:"role,omitempty"`
	Debit            decimal.Decimal   `json:"debit"`
	Credit           decimal.Decimal   `json:"credit"`
	OriginalAmount   *decimal.Decimal  `json:"originalAmount,omitempty"`
	OriginalCurrency *string           `json:"originalCurrency,omitempty"`
	Memo             string            `json:"memo,omitempty"`
	Dimensions       map[string]string `json:"dimensions,omitempty"`
}

// IsDebit reports whether the line sits on the debit side.
func (l JournalLine) IsDebit() bool {
	return l.Debit.IsPositive()
}

// Amount returns the non-zero side of the line.
func (l JournalLine) Amount() decimal.Decimal {
	if l.IsDebit() {
		return l.Debit
	}
	return l.Credit
}

// IsMultiCurrency reports whether the line records a foreign original amount.
func (l JournalLine) IsMultiCurrency() bool {
	return l.OriginalAmount != nil && l.OriginalCurrency != nil
}

// Swapped returns a copy of the line with its sides exchanged.
func (l JournalLine) Swapped() JournalLine {
	out := l
	out.Debit, out.Credit = l.Credit, l.Debit
	return out
}

// PostingResult is returned by every posting path. Replayed is true when the
// document had already been posted and the existing entry is returned.
type PostingResult struct {
	Entry    *JournalEntry `json:"entry"`
	Replayed bool          `json:"replayed"`
}

// PeriodLine is a posted line joined with its account and entry date.
type PeriodLine struct {
	EntryID     string          `json:"entryID"`
	EntryDate   time.Time       `json:"entryDate"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Memo        string          `json:"memo,omitempty"`
}
