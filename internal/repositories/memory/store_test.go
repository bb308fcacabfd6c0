package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func entry(id string, date time.Time) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:   id,
		EntryDate: date,
		Status:    domain.Posted,
		Lines: []domain.JournalLine{
			{AccountCode: "4000", Credit: decimal.NewFromInt(10), Debit: decimal.Zero, Dimensions: map[string]string{"k": "v"}},
			{AccountCode: "5000", Debit: decimal.NewFromInt(10), Credit: decimal.Zero},
		},
	}
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		require.NoError(t, repos.JournalRepo.SaveEntry(ctx, entry("e1", day(2024, 1, 1))))
		_, err := repos.JournalRepo.FindEntryByID(ctx, "e1")
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Repositories().JournalRepo.FindEntryByID(ctx, "e1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestWithinTx_CommitIsInvisibleUntilDone(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	err := store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		if err := repos.JournalRepo.SaveEntry(ctx, entry("e1", day(2024, 1, 1))); err != nil {
			return err
		}
		_, err := store.Repositories().JournalRepo.FindEntryByID(ctx, "e1")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		return nil
	})
	require.NoError(t, err)

	got, err := store.Repositories().JournalRepo.FindEntryByID(ctx, "e1")
	require.NoError(t, err)
	assert.Len(t, got.Lines, 2)
}

func TestJournal_ReturnedEntriesAreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.Repositories().JournalRepo
	require.NoError(t, repo.SaveEntry(ctx, entry("e1", day(2024, 1, 1))))

	got, err := repo.FindEntryByID(ctx, "e1")
	require.NoError(t, err)
	got.Lines[0].Dimensions["k"] = "changed"
	got.Lines[0].Credit = decimal.NewFromInt(99)

	again, err := repo.FindEntryByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "v", again.Lines[0].Dimensions["k"])
	assert.True(t, again.Lines[0].Credit.Equal(decimal.NewFromInt(10)))
}

func TestJournal_ListEntriesPaginatesNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.Repositories().JournalRepo
	require.NoError(t, repo.SaveEntry(ctx, entry("a", day(2024, 1, 1))))
	require.NoError(t, repo.SaveEntry(ctx, entry("b", day(2024, 1, 2))))
	require.NoError(t, repo.SaveEntry(ctx, entry("c", day(2024, 1, 2))))

	first, next, err := repo.ListEntries(ctx, 2, nil)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "c", first[0].EntryID)
	assert.Equal(t, "b", first[1].EntryID)
	assert.Nil(t, first[0].Lines)
	require.NotNil(t, next)

	second, next, err := repo.ListEntries(ctx, 2, next)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "a", second[0].EntryID)
	assert.Nil(t, next)

	bad := "!!"
	_, _, err = repo.ListEntries(ctx, 2, &bad)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestJournal_FindPeriodLinesJoinsIncomeAndExpenseAccounts(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repos := store.Repositories()
	require.NoError(t, repos.AccountRepo.SaveAccount(ctx, domain.Account{Code: "4000", Name: "Revenue", AccountType: domain.Income, IsActive: true}))
	require.NoError(t, repos.AccountRepo.SaveAccount(ctx, domain.Account{Code: "5000", Name: "Expense", AccountType: domain.Expense, IsActive: true}))
	require.NoError(t, repos.JournalRepo.SaveEntry(ctx, entry("in", day(2024, 1, 31))))
	require.NoError(t, repos.JournalRepo.SaveEntry(ctx, entry("out", day(2024, 2, 1))))

	lines, err := repos.JournalRepo.FindPeriodLines(ctx, day(2024, 1, 1), day(2024, 1, 31))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.Equal(t, "in", l.EntryID)
	}
}

func TestPostingKey_ReserveAndComplete(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.Repositories().PostingKeyRepo

	rec := domain.PostingRecord{SourceKind: domain.SourceARInvoice, SourceID: "inv-1", Fingerprint: "fp", ReservationToken: "tok"}
	ok, err := repo.Reserve(ctx, rec)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Reserve(ctx, rec)
	require.NoError(t, err)
	assert.False(t, ok)

	err = repo.Complete(ctx, domain.SourceARInvoice, "inv-1", "other", "fp", "e1", time.Now())
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	require.NoError(t, repo.Complete(ctx, domain.SourceARInvoice, "inv-1", "tok", "fp", "e1", time.Now()))
	got, err := repo.FindForUpdate(ctx, domain.SourceARInvoice, "inv-1")
	require.NoError(t, err)
	assert.True(t, got.IsCompleted())
	assert.Equal(t, "e1", *got.JournalEntryID)
}

func TestExchangeRate_FindLatestRate(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Repositories().ExchangeRateRepo
	require.NoError(t, repo.SaveExchangeRate(ctx, domain.ExchangeRate{ExchangeRateID: "1", CurrencyCode: "USD", RateToBase: decimal.RequireFromString("3.67"), EffectiveDate: day(2024, 1, 1)}))
	require.NoError(t, repo.SaveExchangeRate(ctx, domain.ExchangeRate{ExchangeRateID: "2", CurrencyCode: "USD", RateToBase: decimal.RequireFromString("3.70"), EffectiveDate: day(2024, 2, 1)}))

	got, err := repo.FindLatestRate(ctx, "USD", day(2024, 1, 31))
	require.NoError(t, err)
	assert.Equal(t, "3.67", got.RateToBase.String())

	got, err = repo.FindLatestRate(ctx, "USD", day(2024, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, "3.7", got.RateToBase.String())

	_, err = repo.FindLatestRate(ctx, "USD", day(2023, 12, 31))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = repo.SaveExchangeRate(ctx, domain.ExchangeRate{ExchangeRateID: "3", CurrencyCode: "USD", RateToBase: decimal.NewFromInt(4), EffectiveDate: day(2024, 2, 1)})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestTaxFiling_ActiveFilingIgnoresReversed(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Repositories().TaxFilingRepo
	start, end := day(2024, 1, 1), day(2024, 3, 31)
	require.NoError(t, repo.SaveFiling(ctx, domain.TaxFiling{FilingID: "f1", PeriodStart: start, PeriodEnd: end, Status: domain.TaxReversed}))

	_, err := repo.FindActiveFilingForPeriod(ctx, start, end)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, repo.SaveFiling(ctx, domain.TaxFiling{FilingID: "f2", PeriodStart: start, PeriodEnd: end, Status: domain.TaxAccrued}))
	got, err := repo.FindActiveFilingForPeriod(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, "f2", got.FilingID)
}

func TestInvoice_ListOpenInvoicesFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Repositories().InvoiceRepo
	open := domain.Invoice{InvoiceID: "i1", Kind: domain.KindAR, CounterpartyID: "c1", Posted: true, Outstanding: decimal.NewFromInt(5), DueDate: day(2024, 1, 10)}
	closed := domain.Invoice{InvoiceID: "i2", Kind: domain.KindAR, CounterpartyID: "c1", Posted: true, Outstanding: decimal.Zero}
	draft := domain.Invoice{InvoiceID: "i3", Kind: domain.KindAR, CounterpartyID: "c1", Outstanding: decimal.Zero}
	other := domain.Invoice{InvoiceID: "i4", Kind: domain.KindAR, CounterpartyID: "c2", Posted: true, Outstanding: decimal.NewFromInt(1)}
	payable := domain.Invoice{InvoiceID: "i5", Kind: domain.KindAP, CounterpartyID: "c1", Posted: true, Outstanding: decimal.NewFromInt(1)}
	for _, inv := range []domain.Invoice{open, closed, draft, other, payable} {
		require.NoError(t, repo.SaveInvoice(ctx, inv))
	}

	got, err := repo.ListOpenInvoices(ctx, portsrepo.InvoiceFilter{Kind: domain.KindAR, CounterpartyID: "c1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "i1", got[0].InvoiceID)

	all, err := repo.ListOpenInvoices(ctx, portsrepo.InvoiceFilter{Kind: domain.KindAR})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	locked, err := repo.FindInvoicesForUpdate(ctx, domain.KindAR, []string{"i1", "i5", "missing"})
	require.NoError(t, err)
	assert.Len(t, locked, 1)
	assert.Contains(t, locked, "i1")
}
