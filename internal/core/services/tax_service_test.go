package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type TaxServiceTestSuite struct {
	suite.Suite
	e *engine
}

func (s *TaxServiceTestSuite) SetupTest() {
	s.e = newEngine(s.T())
	// January: 10000 revenue, 4000 expense.
	s.post(date(2024, 1, 15), "January sales", dr("1000", "10000.00"), cr("4000", "10000.00"))
	s.post(date(2024, 1, 20), "January costs", dr("5000", "4000.00"), cr("1000", "4000.00"))
	// outside the period
	s.post(date(2024, 2, 1), "February sales", dr("1000", "999.00"), cr("4000", "999.00"))
}

func (s *TaxServiceTestSuite) post(on time.Time, memo string, lines ...side) {
	_, err := s.e.svc.Ledger.PostManualEntry(s.e.ctx, dto.CreateJournalEntryRequest{
		EntryDate: on,
		Memo:      memo,
		Lines:     manualLines(lines...),
	}, testUser)
	s.Require().NoError(err)
}

func january() dto.TaxAccrualRequest {
	return dto.TaxAccrualRequest{PeriodStart: date(2024, 1, 1), PeriodEnd: date(2024, 1, 31)}
}

func (s *TaxServiceTestSuite) accrue(req dto.TaxAccrualRequest) (*domain.TaxFiling, error) {
	return s.e.svc.Tax.Accrue(s.e.ctx, req, testUser)
}

func (s *TaxServiceTestSuite) TestAccrue_PostsTaxOnProfit() {
	require := s.Require()

	filing, err := s.accrue(january())
	require.NoError(err)

	s.Equal(domain.TaxAccrued, filing.Status)
	s.Equal("10000.00", filing.Income.StringFixed(2))
	s.Equal("4000.00", filing.Expense.StringFixed(2))
	s.Equal("6000.00", filing.TaxableIncome.StringFixed(2))
	s.Equal("540.00", filing.TaxAmount.StringFixed(2))
	s.True(filing.TaxRate.Equal(d("0.09")))
	require.NotNil(filing.JournalEntryID)

	entry := s.e.entry(s.T(), *filing.JournalEntryID)
	s.Equal(domain.SourceRef{Kind: domain.SourceTaxAccrual, ID: filing.FilingID}, entry.Source)
	s.Equal(date(2024, 1, 31), entry.EntryDate)
	s.Equal([]side{dr("5900", "540.00"), cr("2200", "540.00")}, sides(entry))
}

func (s *TaxServiceTestSuite) TestAccrue_RepeatReturnsSameFiling() {
	require := s.Require()
	first, err := s.accrue(january())
	require.NoError(err)
	entries := s.e.entryCount(s.T())

	// the accrual's own expense does not feed back into taxable income
	second, err := s.accrue(january())
	require.NoError(err)
	s.Equal(first.FilingID, second.FilingID)
	s.Equal(*first.JournalEntryID, *second.JournalEntryID)
	s.Equal(entries, s.e.entryCount(s.T()))
}

func (s *TaxServiceTestSuite) TestAccrue_ConflictingRecompute() {
	require := s.Require()
	_, err := s.accrue(january())
	require.NoError(err)

	rate := d("0.15")
	req := january()
	req.Rate = &rate
	_, err = s.accrue(req)
	var transition *apperrors.InvalidStateTransitionError
	require.True(errors.As(err, &transition))
	s.Equal(string(domain.TaxAccrued), transition.From)

	// late activity changes the taxable income
	s.post(date(2024, 1, 25), "Late sale", dr("1000", "100.00"), cr("4000", "100.00"))
	_, err = s.accrue(january())
	require.True(errors.As(err, &transition))
}

func (s *TaxServiceTestSuite) TestLifecycle_FileAndPay() {
	require := s.Require()
	filing, err := s.accrue(january())
	require.NoError(err)

	filed, err := s.e.svc.Tax.File(s.e.ctx, filing.FilingID, testUser)
	require.NoError(err)
	s.Equal(domain.TaxFiled, filed.Status)

	_, err = s.e.svc.Tax.File(s.e.ctx, filing.FilingID, testUser)
	var transition *apperrors.InvalidStateTransitionError
	require.True(errors.As(err, &transition))
	s.Equal(string(domain.TaxFiled), transition.From)
	s.Equal(string(domain.TaxFiled), transition.To)

	paid, err := s.e.svc.Tax.MarkPaid(s.e.ctx, filing.FilingID, testUser)
	require.NoError(err)
	s.Equal(domain.TaxPaid, paid.Status)

	_, err = s.e.svc.Tax.Reverse(s.e.ctx, filing.FilingID, testUser)
	require.True(errors.As(err, &transition))

	stored, err := s.e.svc.Tax.GetFiling(s.e.ctx, filing.FilingID)
	require.NoError(err)
	s.Equal(domain.TaxPaid, stored.Status)
}

func (s *TaxServiceTestSuite) TestMarkPaid_RequiresFiled() {
	filing, err := s.accrue(january())
	s.Require().NoError(err)

	_, err = s.e.svc.Tax.MarkPaid(s.e.ctx, filing.FilingID, testUser)
	var transition *apperrors.InvalidStateTransitionError
	s.True(errors.As(err, &transition))
}

func (s *TaxServiceTestSuite) TestReverse_OffsetsAccrualAndAllowsReaccrual() {
	require := s.Require()
	filing, err := s.accrue(january())
	require.NoError(err)
	_, err = s.e.svc.Tax.File(s.e.ctx, filing.FilingID, testUser)
	require.NoError(err)

	reversed, err := s.e.svc.Tax.Reverse(s.e.ctx, filing.FilingID, testUser)
	require.NoError(err)
	s.Equal(domain.TaxReversed, reversed.Status)
	require.NotNil(reversed.ReversalEntryID)

	reversal := s.e.entry(s.T(), *reversed.ReversalEntryID)
	s.Equal([]side{cr("5900", "540.00"), dr("2200", "540.00")}, sides(reversal))
	s.Equal(filing.JournalEntryID, reversal.OriginalEntryID)
	s.Equal(domain.Reversed, s.e.entry(s.T(), *filing.JournalEntryID).Status)

	again, err := s.accrue(january())
	require.NoError(err)
	s.NotEqual(filing.FilingID, again.FilingID)
	s.Equal("540.00", again.TaxAmount.StringFixed(2))
}

func (s *TaxServiceTestSuite) TestAccrue_LossPostsNothing() {
	require := s.Require()
	s.post(date(2024, 3, 10), "March costs", dr("5000", "700.00"), cr("1000", "700.00"))
	entries := s.e.entryCount(s.T())

	filing, err := s.accrue(dto.TaxAccrualRequest{PeriodStart: date(2024, 3, 1), PeriodEnd: date(2024, 3, 31)})
	require.NoError(err)
	s.Equal(domain.TaxAccrued, filing.Status)
	s.True(filing.TaxAmount.IsZero())
	s.Equal("-700.00", filing.TaxableIncome.StringFixed(2))
	s.Nil(filing.JournalEntryID)
	s.Equal(entries, s.e.entryCount(s.T()))

	_, err = s.e.svc.Tax.File(s.e.ctx, filing.FilingID, testUser)
	require.NoError(err)
	reversed, err := s.e.svc.Tax.Reverse(s.e.ctx, filing.FilingID, testUser)
	require.NoError(err)
	s.Nil(reversed.ReversalEntryID)
}

func (s *TaxServiceTestSuite) TestAccrue_InvalidInput() {
	_, err := s.accrue(dto.TaxAccrualRequest{PeriodStart: date(2024, 2, 1), PeriodEnd: date(2024, 1, 31)})
	var period *apperrors.InvalidPeriodError
	s.True(errors.As(err, &period))

	rate := d("1.5")
	req := january()
	req.Rate = &rate
	_, err = s.accrue(req)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.e.svc.Tax.File(s.e.ctx, "missing", testUser)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *TaxServiceTestSuite) TestBreakdown() {
	require := s.Require()
	_, err := s.accrue(january())
	require.NoError(err)

	b, err := s.e.svc.Tax.Breakdown(s.e.ctx, date(2024, 1, 1), date(2024, 1, 31))
	require.NoError(err)
	s.Equal("10000.00", b.Income.StringFixed(2))
	s.Equal("4540.00", b.Expense.StringFixed(2))
	s.Equal("5460.00", b.Profit.StringFixed(2))
	s.Len(b.Lines, 3)

	_, err = s.e.svc.Tax.Breakdown(s.e.ctx, date(2024, 2, 1), date(2024, 1, 1))
	var period *apperrors.InvalidPeriodError
	s.True(errors.As(err, &period))
}

func TestTaxServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaxServiceTestSuite))
}

func TestAccrue_UsesConfiguredRate(t *testing.T) {
	e := newEngine(t)
	_, err := e.svc.Ledger.PostManualEntry(e.ctx, dto.CreateJournalEntryRequest{
		EntryDate: date(2024, 5, 5),
		Memo:      "May sales",
		Lines:     manualLines(dr("1000", "1000.00"), cr("4000", "1000.00")),
	}, testUser)
	require.NoError(t, err)

	rate := d("0.2")
	_, err = e.svc.Settings.Update(e.ctx, dto.UpdateSettingsRequest{CorporateTaxRate: &rate}, testUser)
	require.NoError(t, err)

	filing, err := e.svc.Tax.Accrue(e.ctx, dto.TaxAccrualRequest{PeriodStart: date(2024, 5, 1), PeriodEnd: date(2024, 5, 31)}, testUser)
	require.NoError(t, err)
	assert.Equal(t, "200.00", filing.TaxAmount.StringFixed(2))
}
