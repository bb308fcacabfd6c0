package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/mitchellh/hashstructure/v2"
	"github.com/shopspring/decimal"
)

// Fingerprints hash only the attributes whose change would require a new
// posting. Decimals are hashed via their canonical string so 10 and 10.00
// produce the same value.

type invoiceFingerprint struct {
	Kind         string
	Counterparty string
	Currency     string
	IssueDate    string
	Subtotal     string
	Tax          string
	Total        string
}

type allocationFingerprint struct {
	InvoiceID string
	Amount    string
}

type paymentFingerprint struct {
	Kind         string
	Counterparty string
	Currency     string
	Date         string
	Amount       string
	BankAccount  string
	Allocations  []allocationFingerprint
}

type taxFingerprint struct {
	Start   string
	End     string
	Rate    string
	Taxable string
}

type capitalizationFingerprint struct {
	AssetID  string
	Currency string
	Cost     string
	Salvage  string
	Date     string
	Funding  string
}

type depreciationFingerprint struct {
	AssetID string
	Period  string
	Cost    string
	Salvage string
	Life    int
}

type disposalFingerprint struct {
	AssetID  string
	Date     string
	Proceeds string
}

type reversalFingerprint struct {
	OriginalEntryID string
}

func hashFingerprint(v any) (string, error) {
	h, err := hashstructure.Hash(v, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint posting: %w", err)
	}
	return fmt.Sprintf("%016x", h), nil
}

func day(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

func num(d decimal.Decimal) string {
	return d.String()
}

func fingerprintInvoice(inv domain.Invoice) (string, error) {
	return hashFingerprint(invoiceFingerprint{
		Kind:         string(inv.Kind),
		Counterparty: inv.CounterpartyID,
		Currency:     inv.CurrencyCode,
		IssueDate:    day(inv.IssueDate),
		Subtotal:     num(inv.Subtotal),
		Tax:          num(inv.TaxAmount),
		Total:        num(inv.Total),
	})
}

func fingerprintPayment(p domain.Payment) (string, error) {
	allocs := make([]allocationFingerprint, len(p.Allocations))
	for i, a := range p.Allocations {
		allocs[i] = allocationFingerprint{InvoiceID: a.InvoiceID, Amount: num(a.Amount)}
	}
	sort.Slice(allocs, func(i, j int) bool { return allocs[i].InvoiceID < allocs[j].InvoiceID })

	return hashFingerprint(paymentFingerprint{
		Kind:         string(p.Kind),
		Counterparty: p.CounterpartyID,
		Currency:     p.CurrencyCode,
		Date:         day(p.PaymentDate),
		Amount:       num(p.Amount),
		BankAccount:  p.BankAccountCode,
		Allocations:  allocs,
	})
}

func fingerprintTaxAccrual(f domain.TaxFiling) (string, error) {
	return hashFingerprint(taxFingerprint{
		Start:   day(f.PeriodStart),
		End:     day(f.PeriodEnd),
		Rate:    num(f.TaxRate),
		Taxable: num(f.TaxableIncome),
	})
}

func fingerprintCapitalization(a domain.FixedAsset, date time.Time, funding domain.AccountRole) (string, error) {
	return hashFingerprint(capitalizationFingerprint{
		AssetID:  a.AssetID,
		Currency: a.CurrencyCode,
		Cost:     num(a.Cost),
		Salvage:  num(a.SalvageValue),
		Date:     day(date),
		Funding:  string(funding),
	})
}

// The charge itself is left out: it is derived from the asset and the period.
func fingerprintDepreciation(a domain.FixedAsset, period string) (string, error) {
	return hashFingerprint(depreciationFingerprint{
		AssetID: a.AssetID,
		Period:  period,
		Cost:    num(a.BaseCost),
		Salvage: num(a.BaseSalvage),
		Life:    a.UsefulLifeMonths,
	})
}

func fingerprintDisposal(a domain.FixedAsset, date time.Time, proceeds decimal.Decimal) (string, error) {
	return hashFingerprint(disposalFingerprint{
		AssetID:  a.AssetID,
		Date:     day(date),
		Proceeds: num(proceeds),
	})
}

func fingerprintReversal(originalEntryID string) (string, error) {
	return hashFingerprint(reversalFingerprint{OriginalEntryID: originalEntryID})
}
