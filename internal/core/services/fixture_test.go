package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/core/services"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/SscSPs/gl_engine/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUser     = "user-1"
	baseCurrency = "AED"
)

// engine is a fully wired ledger over the in-memory store, seeded with the
// default chart of accounts and a USD currency.
type engine struct {
	ctx   context.Context
	store *memory.Store
	svc   *portssvc.ServiceContainer
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, services.SeedLedger(ctx, store, baseCurrency))

	e := &engine{
		ctx:   ctx,
		store: store,
		svc:   services.NewServiceContainer(store, nil, services.NewRateCache(nil, time.Hour, nil)),
	}
	_, err := e.svc.Currency.CreateCurrency(ctx, dto.CreateCurrencyRequest{CurrencyCode: "USD", Symbol: "$", Name: "US Dollar"}, testUser)
	require.NoError(t, err)
	return e
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func (e *engine) rate(t *testing.T, currency, rate string, effective time.Time) {
	t.Helper()
	_, err := e.svc.ExchangeRate.CreateExchangeRate(e.ctx, dto.CreateExchangeRateRequest{
		CurrencyCode:  currency,
		RateToBase:    d(rate),
		EffectiveDate: effective,
	}, testUser)
	require.NoError(t, err)
}

type invoiceSpec struct {
	kind         domain.InvoiceKind
	number       string
	counterparty string
	currency     string
	amount       string
	taxRate      string
	issue        time.Time
	due          time.Time
}

func (e *engine) draftInvoice(t *testing.T, spec invoiceSpec) *domain.Invoice {
	t.Helper()
	if spec.currency == "" {
		spec.currency = baseCurrency
	}
	if spec.taxRate == "" {
		spec.taxRate = "0"
	}
	if spec.counterparty == "" {
		spec.counterparty = "cust-1"
	}
	if spec.number == "" {
		spec.number = "INV-" + spec.amount
	}
	if spec.due.IsZero() {
		spec.due = spec.issue.AddDate(0, 0, 30)
	}
	inv, err := e.svc.Invoice.CreateInvoice(e.ctx, spec.kind, dto.CreateInvoiceRequest{
		Number:         spec.number,
		CounterpartyID: spec.counterparty,
		CurrencyCode:   spec.currency,
		IssueDate:      spec.issue,
		DueDate:        spec.due,
		Amount:         d(spec.amount),
		TaxRate:        d(spec.taxRate),
	}, testUser)
	require.NoError(t, err)
	return inv
}

func (e *engine) postedInvoice(t *testing.T, spec invoiceSpec) *domain.Invoice {
	t.Helper()
	inv := e.draftInvoice(t, spec)
	_, err := e.svc.Ledger.PostInvoice(e.ctx, spec.kind, inv.InvoiceID, testUser)
	require.NoError(t, err)
	return e.invoice(t, spec.kind, inv.InvoiceID)
}

func (e *engine) invoice(t *testing.T, kind domain.InvoiceKind, id string) *domain.Invoice {
	t.Helper()
	inv, err := e.svc.Invoice.GetInvoice(e.ctx, kind, id)
	require.NoError(t, err)
	return inv
}

func (e *engine) entry(t *testing.T, id string) *domain.JournalEntry {
	t.Helper()
	entry, err := e.svc.Ledger.GetEntry(e.ctx, id)
	require.NoError(t, err)
	return entry
}

func (e *engine) entryCount(t *testing.T) int {
	t.Helper()
	page, err := e.svc.Ledger.ListEntries(e.ctx, dto.ListJournalEntriesParams{Limit: 100})
	require.NoError(t, err)
	return len(page.Entries)
}

// side is a compact view of one journal line for assertions.
type side struct {
	Account string
	Debit   string
	Credit  string
}

func sides(entry *domain.JournalEntry) []side {
	out := make([]side, len(entry.Lines))
	for i, l := range entry.Lines {
		out[i] = side{Account: l.AccountCode, Debit: l.Debit.StringFixed(2), Credit: l.Credit.StringFixed(2)}
	}
	return out
}

func dr(account, amount string) side { return side{Account: account, Debit: amount, Credit: "0.00"} }
func cr(account, amount string) side { return side{Account: account, Debit: "0.00", Credit: amount} }

func assertBalanced(t *testing.T, entry *domain.JournalEntry) {
	t.Helper()
	debits, credits := entry.Totals()
	assert.True(t, debits.Equal(credits), "entry %s: debits %s credits %s", entry.EntryID, debits, credits)
}
