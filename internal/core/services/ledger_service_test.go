package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/core/services"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/SscSPs/gl_engine/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	e *engine
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.e = newEngine(s.T())
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func manualLines(lines ...side) []dto.JournalLineRequest {
	out := make([]dto.JournalLineRequest, len(lines))
	for i, l := range lines {
		out[i] = dto.JournalLineRequest{AccountCode: l.Account, Debit: d(l.Debit), Credit: d(l.Credit)}
	}
	return out
}

func (s *LedgerServiceTestSuite) manual(memo string, lines ...side) (*domain.PostingResult, error) {
	return s.e.svc.Ledger.PostManualEntry(s.e.ctx, dto.CreateJournalEntryRequest{
		EntryDate: date(2024, 3, 1),
		Memo:      memo,
		Lines:     manualLines(lines...),
	}, testUser)
}

func (s *LedgerServiceTestSuite) TestPostInvoice_AR_RoundsTaxSplit() {
	require := s.Require()
	inv := s.e.draftInvoice(s.T(), invoiceSpec{kind: domain.KindAR, amount: "33.33", taxRate: "0.05", issue: date(2024, 3, 10)})
	require.Equal("35.00", inv.Total.StringFixed(2))

	result, err := s.e.svc.Ledger.PostInvoice(s.e.ctx, domain.KindAR, inv.InvoiceID, testUser)
	require.NoError(err)
	require.False(result.Replayed)

	entry := result.Entry
	s.Equal(baseCurrency, entry.CurrencyCode)
	s.Equal(domain.SourceRef{Kind: domain.SourceARInvoice, ID: inv.InvoiceID}, entry.Source)
	s.Equal([]side{dr("1100", "35.00"), cr("4000", "33.33"), cr("2100", "1.67")}, sides(entry))
	assertBalanced(s.T(), entry)
	for _, l := range entry.Lines {
		s.Equal(inv.InvoiceID, l.Dimensions["invoice"])
	}

	posted := s.e.invoice(s.T(), domain.KindAR, inv.InvoiceID)
	s.True(posted.Posted)
	s.Equal(domain.InvoicePosted, posted.Status)
	s.True(posted.Outstanding.Equal(d("35.00")))
	s.True(posted.BaseTotal.Equal(d("35.00")))
	s.Equal(entry.EntryID, *posted.JournalEntryID)
}

func (s *LedgerServiceTestSuite) TestPostInvoice_AP() {
	inv := s.e.draftInvoice(s.T(), invoiceSpec{kind: domain.KindAP, counterparty: "vendor-1", amount: "200", taxRate: "0.05", issue: date(2024, 3, 10)})

	result, err := s.e.svc.Ledger.PostInvoice(s.e.ctx, domain.KindAP, inv.InvoiceID, testUser)
	s.Require().NoError(err)
	s.Equal([]side{dr("5000", "200.00"), dr("1200", "10.00"), cr("2000", "210.00")}, sides(result.Entry))
}

func (s *LedgerServiceTestSuite) TestPostInvoice_ConcurrentRetriesPostOnce() {
	inv := s.e.draftInvoice(s.T(), invoiceSpec{kind: domain.KindAR, amount: "100", issue: date(2024, 3, 10)})

	const workers = 10
	results := make([]*domain.PostingResult, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.e.svc.Ledger.PostInvoice(s.e.ctx, domain.KindAR, inv.InvoiceID, testUser)
		}(i)
	}
	wg.Wait()

	entryIDs := map[string]bool{}
	fresh := 0
	for i := range results {
		s.Require().NoError(errs[i])
		entryIDs[results[i].Entry.EntryID] = true
		if !results[i].Replayed {
			fresh++
		}
	}
	s.Len(entryIDs, 1)
	s.Equal(1, fresh)
	s.Equal(1, s.e.entryCount(s.T()))
}

func (s *LedgerServiceTestSuite) TestPostInvoice_IsIdempotent() {
	require := s.Require()
	inv := s.e.draftInvoice(s.T(), invoiceSpec{kind: domain.KindAR, amount: "100", issue: date(2024, 3, 10)})

	first, err := s.e.svc.Ledger.PostInvoice(s.e.ctx, domain.KindAR, inv.InvoiceID, testUser)
	require.NoError(err)
	second, err := s.e.svc.Ledger.PostInvoice(s.e.ctx, domain.KindAR, inv.InvoiceID, testUser)
	require.NoError(err)

	s.True(second.Replayed)
	s.Equal(first.Entry.EntryID, second.Entry.EntryID)
	s.Equal(1, s.e.entryCount(s.T()))
}

func (s *LedgerServiceTestSuite) TestPostInvoice_ForeignCurrency() {
	s.e.rate(s.T(), "USD", "3.6725", date(2024, 1, 1))
	inv := s.e.draftInvoice(s.T(), invoiceSpec{kind: domain.KindAR, currency: "USD", amount: "100", taxRate: "0.05", issue: date(2024, 3, 10)})

	result, err := s.e.svc.Ledger.PostInvoice(s.e.ctx, domain.KindAR, inv.InvoiceID, testUser)
	s.Require().NoError(err)

	// total 105 USD -> 385.61, tax 5 USD -> 18.36, net takes the remainder
	s.Equal([]side{dr("1100", "385.61"), cr("4000", "367.25"), cr("2100", "18.36")}, sides(result.Entry))
	control := result.Entry.Lines[0]
	s.Require().True(control.IsMultiCurrency())
	s.Equal("USD", *control.OriginalCurrency)
	s.True(control.OriginalAmount.Equal(d("105")))

	posted := s.e.invoice(s.T(), domain.KindAR, inv.InvoiceID)
	s.True(posted.PostingRate.Equal(d("3.6725")))
	s.True(posted.BaseTotal.Equal(d("385.61")))
}

func (s *LedgerServiceTestSuite) TestPostInvoice_MissingRateRollsBack() {
	inv := s.e.draftInvoice(s.T(), invoiceSpec{kind: domain.KindAR, currency: "USD", amount: "100", issue: date(2024, 3, 10)})

	_, err := s.e.svc.Ledger.PostInvoice(s.e.ctx, domain.KindAR, inv.InvoiceID, testUser)
	var noRate *apperrors.NoRateAvailableError
	s.Require().True(errors.As(err, &noRate))
	s.Equal("USD", noRate.Currency)
	s.False(s.e.invoice(s.T(), domain.KindAR, inv.InvoiceID).Posted)
	s.Equal(0, s.e.entryCount(s.T()))

	// the failed attempt left no reservation behind
	s.e.rate(s.T(), "USD", "3.67", date(2024, 1, 1))
	result, err := s.e.svc.Ledger.PostInvoice(s.e.ctx, domain.KindAR, inv.InvoiceID, testUser)
	s.Require().NoError(err)
	s.False(result.Replayed)
}

func (s *LedgerServiceTestSuite) TestPostInvoice_ApprovalGate() {
	require := s.Require()
	inv := s.e.draftInvoice(s.T(), invoiceSpec{kind: domain.KindAR, amount: "100", issue: date(2024, 3, 10)})
	_, err := s.e.svc.Approval.RecordDecision(s.e.ctx, dto.RecordApprovalRequest{
		DocumentKind: domain.SourceARInvoice, DocumentID: inv.InvoiceID, Status: domain.ApprovalPending,
	}, testUser)
	require.NoError(err)

	_, err = s.e.svc.Ledger.PostInvoice(s.e.ctx, domain.KindAR, inv.InvoiceID, testUser)
	var notApproved *apperrors.DocumentNotApprovedError
	require.True(errors.As(err, &notApproved))
	s.Equal(string(domain.ApprovalPending), notApproved.Status)

	_, err = s.e.svc.Approval.RecordDecision(s.e.ctx, dto.RecordApprovalRequest{
		DocumentKind: domain.SourceARInvoice, DocumentID: inv.InvoiceID, Status: domain.ApprovalApproved,
	}, testUser)
	require.NoError(err)
	_, err = s.e.svc.Ledger.PostInvoice(s.e.ctx, domain.KindAR, inv.InvoiceID, testUser)
	require.NoError(err)
}

func (s *LedgerServiceTestSuite) TestPostInvoice_NotFound() {
	_, err := s.e.svc.Ledger.PostInvoice(s.e.ctx, domain.KindAR, "missing", testUser)
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.e.svc.Ledger.PostInvoice(s.e.ctx, domain.InvoiceKind("XX"), "missing", testUser)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestPostInvoice_UsesConfiguredRoleAccount() {
	require := s.Require()
	_, err := s.e.svc.ChartOfAccounts.CreateAccount(s.e.ctx, dto.CreateAccountRequest{Code: "4001", Name: "Other revenue", AccountType: domain.Income}, testUser)
	require.NoError(err)
	_, err = s.e.svc.ChartOfAccounts.AssignRole(s.e.ctx, domain.RoleRevenue, "4001", testUser)
	require.NoError(err)
	inactive := false
	_, err = s.e.svc.ChartOfAccounts.UpdateAccount(s.e.ctx, "4000", dto.UpdateAccountRequest{IsActive: &inactive}, testUser)
	require.NoError(err)

	inv := s.e.draftInvoice(s.T(), invoiceSpec{kind: domain.KindAR, amount: "100", issue: date(2024, 3, 10)})
	result, err := s.e.svc.Ledger.PostInvoice(s.e.ctx, domain.KindAR, inv.InvoiceID, testUser)
	require.NoError(err)
	s.Equal("4001", result.Entry.Lines[1].AccountCode)
}

func (s *LedgerServiceTestSuite) TestPostManualEntry() {
	result, err := s.manual("Owner funding", dr("1000", "500.00"), cr("5000", "500.00"))
	s.Require().NoError(err)

	entry := s.e.entry(s.T(), result.Entry.EntryID)
	s.Equal(domain.SourceManual, entry.Source.Kind)
	s.Equal(entry.EntryID, entry.Source.ID)
	s.Equal(domain.Posted, entry.Status)
	s.Equal(date(2024, 3, 1), entry.EntryDate)
	s.Equal([]side{dr("1000", "500.00"), cr("5000", "500.00")}, sides(entry))
	s.Equal(1, entry.Lines[0].LineNo)
	s.Equal(2, entry.Lines[1].LineNo)
}

func (s *LedgerServiceTestSuite) TestPostManualEntry_Imbalanced() {
	_, err := s.manual("Broken", dr("1000", "100.00"), cr("4000", "90.00"))

	var imbalanced *apperrors.ImbalancedEntryError
	s.Require().True(errors.As(err, &imbalanced))
	s.True(imbalanced.Debits.Equal(d("100")))
	s.True(imbalanced.Credits.Equal(d("90")))
	s.Equal(0, s.e.entryCount(s.T()))
}

func (s *LedgerServiceTestSuite) TestPostManualEntry_LineShape() {
	_, err := s.manual("Zero", dr("1000", "0.00"), dr("1000", "10.00"), cr("4000", "10.00"))
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.manual("Single", dr("1000", "10.00"))
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.manual("Fractions", dr("1000", "10.001"), cr("4000", "10.001"))
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.manual("", dr("1000", "10.00"), cr("4000", "10.00"))
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestPostManualEntry_Accounts() {
	_, err := s.manual("Unknown", dr("9999", "10.00"), cr("4000", "10.00"))
	var unknown *apperrors.UnknownAccountError
	s.Require().True(errors.As(err, &unknown))
	s.Equal("9999", unknown.AccountCode)
	s.Equal("account does not exist", unknown.Reason)

	_, err = s.e.svc.ChartOfAccounts.CreateAccount(s.e.ctx, dto.CreateAccountRequest{Code: "6000", Name: "Travel", AccountType: domain.Expense}, testUser)
	s.Require().NoError(err)
	inactive := false
	_, err = s.e.svc.ChartOfAccounts.UpdateAccount(s.e.ctx, "6000", dto.UpdateAccountRequest{IsActive: &inactive}, testUser)
	s.Require().NoError(err)

	_, err = s.manual("Inactive", dr("6000", "10.00"), cr("1000", "10.00"))
	s.Require().True(errors.As(err, &unknown))
	s.Equal("account is inactive", unknown.Reason)
}

func (s *LedgerServiceTestSuite) TestPostManualEntry_BaseCurrencyOnly() {
	_, err := s.e.svc.Ledger.PostManualEntry(s.e.ctx, dto.CreateJournalEntryRequest{
		EntryDate:    date(2024, 3, 1),
		Memo:         "Foreign",
		CurrencyCode: "USD",
		Lines:        manualLines(dr("1000", "10.00"), cr("4000", "10.00")),
	}, testUser)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestReverseEntry() {
	require := s.Require()
	original, err := s.manual("Accrual", dr("5000", "75.00"), cr("2000", "75.00"))
	require.NoError(err)

	reversal, err := s.e.svc.Ledger.ReverseEntry(s.e.ctx, original.Entry.EntryID, testUser)
	require.NoError(err)
	s.False(reversal.Replayed)
	s.Equal(domain.SourceRef{Kind: domain.SourceReversal, ID: original.Entry.EntryID}, reversal.Entry.Source)
	s.Equal(original.Entry.EntryID, *reversal.Entry.OriginalEntryID)
	s.Equal([]side{cr("5000", "75.00"), dr("2000", "75.00")}, sides(reversal.Entry))
	s.Equal("Reversal of Accrual", reversal.Entry.Memo)

	updated := s.e.entry(s.T(), original.Entry.EntryID)
	s.Equal(domain.Reversed, updated.Status)
	s.Equal(reversal.Entry.EntryID, *updated.ReversingEntryID)
	s.Equal(sides(original.Entry), sides(updated))

	again, err := s.e.svc.Ledger.ReverseEntry(s.e.ctx, original.Entry.EntryID, testUser)
	require.NoError(err)
	s.True(again.Replayed)
	s.Equal(reversal.Entry.EntryID, again.Entry.EntryID)

	_, err = s.e.svc.Ledger.ReverseEntry(s.e.ctx, reversal.Entry.EntryID, testUser)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Equal(2, s.e.entryCount(s.T()))
}

func (s *LedgerServiceTestSuite) TestListEntries_Pages() {
	require := s.Require()
	for i := 0; i < 3; i++ {
		_, err := s.manual("Entry", dr("1000", "1.00"), cr("4000", "1.00"))
		require.NoError(err)
	}

	first, err := s.e.svc.Ledger.ListEntries(s.e.ctx, dto.ListJournalEntriesParams{Limit: 2})
	require.NoError(err)
	s.Len(first.Entries, 2)
	require.NotNil(first.NextToken)

	second, err := s.e.svc.Ledger.ListEntries(s.e.ctx, dto.ListJournalEntriesParams{Limit: 2, NextToken: first.NextToken})
	require.NoError(err)
	s.Len(second.Entries, 1)
	s.Nil(second.NextToken)

	seen := map[string]bool{}
	for _, e := range append(first.Entries, second.Entries...) {
		seen[e.EntryID] = true
	}
	s.Len(seen, 3)
}

func (s *LedgerServiceTestSuite) TestGetEntry_NotFound() {
	_, err := s.e.svc.Ledger.GetEntry(s.e.ctx, "missing")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerServiceTestSuite) TestUpdateInvoice_PostedIsFrozen() {
	require := s.Require()
	inv := s.e.draftInvoice(s.T(), invoiceSpec{kind: domain.KindAR, amount: "100", taxRate: "0.05", issue: date(2024, 3, 10)})

	amount := d("200")
	edited, err := s.e.svc.Invoice.UpdateInvoice(s.e.ctx, domain.KindAR, inv.InvoiceID, dto.UpdateInvoiceRequest{Amount: &amount}, testUser)
	require.NoError(err)
	s.True(edited.Total.Equal(d("210")))

	_, err = s.e.svc.Ledger.PostInvoice(s.e.ctx, domain.KindAR, inv.InvoiceID, testUser)
	require.NoError(err)

	amount = decimal.NewFromInt(300)
	_, err = s.e.svc.Invoice.UpdateInvoice(s.e.ctx, domain.KindAR, inv.InvoiceID, dto.UpdateInvoiceRequest{Amount: &amount}, testUser)
	var mutated *apperrors.PostedDocumentMutatedError
	require.True(errors.As(err, &mutated))
	s.Equal(inv.InvoiceID, mutated.SourceID)
}

// commitCountingRecorder tallies committed postings.
type commitCountingRecorder struct {
	mu        sync.Mutex
	committed int
}

func (r *commitCountingRecorder) PostingCommitted(string, bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed++
}
func (r *commitCountingRecorder) PostingRejected(string, string) {}
func (r *commitCountingRecorder) RateLookup(string)              {}

func (r *commitCountingRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.committed
}

func TestPostInTx_CountsOnlyCommittedPostings(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, services.SeedLedger(ctx, store, baseCurrency))
	rec := &commitCountingRecorder{}
	svc := services.NewServiceContainer(store, rec, services.NewRateCache(nil, time.Hour, nil))

	posting := portssvc.DocumentPosting{
		Source: domain.SourceRef{Kind: domain.SourceManual},
		UserID: testUser,
		Build: func(context.Context) (*domain.JournalEntry, error) {
			return &domain.JournalEntry{
				EntryDate: date(2024, 3, 1),
				Memo:      "cash sale",
				Lines: []domain.JournalLine{
					{AccountCode: "1000", Debit: d("50"), Credit: decimal.Zero},
					{AccountCode: "4000", Debit: decimal.Zero, Credit: d("50")},
				},
			}, nil
		},
	}

	errLater := errors.New("later step failed")
	err := store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		_, err := svc.Ledger.PostInTx(ctx, repos, posting)
		require.NoError(t, err)
		return errLater
	})
	require.ErrorIs(t, err, errLater)
	assert.Equal(t, 0, rec.count())

	page, err := svc.Ledger.ListEntries(ctx, dto.ListJournalEntriesParams{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Entries)

	err = store.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		_, err := svc.Ledger.PostInTx(ctx, repos, posting)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.count())
}
