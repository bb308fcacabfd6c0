package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type taxService struct {
	BaseService
	uow      portsrepo.UnitOfWork
	ledger   portssvc.LedgerSvcFacade
	accounts portssvc.ChartOfAccountsSvcFacade
	settings portssvc.SettingsSvcFacade
}

// NewTaxService creates the corporate tax accrual engine.
func NewTaxService(uow portsrepo.UnitOfWork, ledger portssvc.LedgerSvcFacade, accounts portssvc.ChartOfAccountsSvcFacade, settings portssvc.SettingsSvcFacade) portssvc.TaxSvcFacade {
	return &taxService{uow: uow, ledger: ledger, accounts: accounts, settings: settings}
}

var _ portssvc.TaxSvcFacade = (*taxService)(nil)

func checkPeriod(start, end time.Time) (time.Time, time.Time, error) {
	start, end = dateOnly(start), dateOnly(end)
	if end.Before(start) {
		return start, end, &apperrors.InvalidPeriodError{Start: start, End: end}
	}
	return start, end, nil
}

// periodTotals sums income as credit minus debit and expense as debit minus
// credit. Lines on excludeCode are left out of the expense.
func periodTotals(lines []domain.PeriodLine, excludeCode string) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	for _, l := range lines {
		switch l.AccountType {
		case domain.Income:
			income = income.Add(l.Credit.Sub(l.Debit))
		case domain.Expense:
			if l.AccountCode == excludeCode {
				continue
			}
			expense = expense.Add(l.Debit.Sub(l.Credit))
		}
	}
	return income, expense
}

func (s *taxService) Accrue(ctx context.Context, req dto.TaxAccrualRequest, userID string) (*domain.TaxFiling, error) {
	start, end, err := checkPeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	rate := settings.CorporateTaxRate
	if req.Rate != nil {
		rate = *req.Rate
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, apperrors.NewValidationError("tax rate must be between 0 and 1")
	}

	var filing *domain.TaxFiling
	err = s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		roles, err := s.accounts.ResolveAll(ctx, repos, domain.RoleTaxCorpExpense, domain.RoleTaxCorpPayable)
		if err != nil {
			return err
		}
		base, err := minorUnitsOf(ctx, repos, settings.BaseCurrency)
		if err != nil {
			return err
		}
		lines, err := repos.JournalRepo.FindPeriodLines(ctx, start, end)
		if err != nil {
			return err
		}

		income, expense := periodTotals(lines, roles[domain.RoleTaxCorpExpense].Code)
		taxable := income.Sub(expense)
		tax := decimal.Zero
		if taxable.IsPositive() {
			tax = base.Round(taxable.Mul(rate))
		}

		existing, err := repos.TaxFilingRepo.FindActiveFilingForPeriod(ctx, start, end)
		switch {
		case err == nil:
			if existing.Status == domain.TaxAccrued && existing.TaxRate.Equal(rate) && existing.TaxableIncome.Equal(taxable) {
				filing = existing
				return nil
			}
			return &apperrors.InvalidStateTransitionError{Entity: "tax filing", ID: existing.FilingID, From: string(existing.Status), To: string(domain.TaxAccrued)}
		case !isNotFound(err):
			return err
		}

		now := time.Now().UTC()
		f := domain.TaxFiling{
			FilingID:      uuid.NewString(),
			PeriodStart:   start,
			PeriodEnd:     end,
			TaxRate:       rate,
			Income:        income,
			Expense:       expense,
			TaxableIncome: taxable,
			TaxAmount:     tax,
			Status:        domain.TaxDraft,
			AuditFields:   newAuditFields(userID, now),
		}
		if err := repos.TaxFilingRepo.SaveFiling(ctx, f); err != nil {
			return err
		}

		if tax.IsPositive() {
			fingerprint, err := fingerprintTaxAccrual(f)
			if err != nil {
				return err
			}
			posting, err := s.ledger.PostInTx(ctx, repos, portssvc.DocumentPosting{
				Source:      domain.SourceRef{Kind: domain.SourceTaxAccrual, ID: f.FilingID},
				Fingerprint: fingerprint,
				UserID:      userID,
				Build: func(context.Context) (*domain.JournalEntry, error) {
					memo := "Corporate tax accrual " + day(start) + " to " + day(end)
					var ls lineSet
					ls.debit(roles[domain.RoleTaxCorpExpense], domain.RoleTaxCorpExpense, tax, memo)
					ls.credit(roles[domain.RoleTaxCorpPayable], domain.RoleTaxCorpPayable, tax, memo)
					return &domain.JournalEntry{EntryDate: end, Memo: memo, Lines: ls.lines}, nil
				},
			})
			if err != nil {
				return err
			}
			f.JournalEntryID = &posting.Entry.EntryID
		}

		f.Status = domain.TaxAccrued
		touch(&f.AuditFields, userID, now)
		if err := repos.TaxFilingRepo.UpdateFiling(ctx, f); err != nil {
			return err
		}
		filing = &f
		return nil
	})
	if err != nil {
		s.LogRejection(ctx, err, "Failed to accrue corporate tax",
			slog.String("period_start", day(start)),
			slog.String("period_end", day(end)))
		return nil, err
	}

	s.LogInfo(ctx, "Corporate tax accrued",
		slog.String("filing_id", filing.FilingID),
		slog.String("taxable_income", filing.TaxableIncome.String()),
		slog.String("tax_amount", filing.TaxAmount.String()))
	return filing, nil
}

func (s *taxService) File(ctx context.Context, filingID string, userID string) (*domain.TaxFiling, error) {
	return s.transition(ctx, filingID, domain.TaxFiled, userID)
}

func (s *taxService) MarkPaid(ctx context.Context, filingID string, userID string) (*domain.TaxFiling, error) {
	return s.transition(ctx, filingID, domain.TaxPaid, userID)
}

func (s *taxService) Reverse(ctx context.Context, filingID string, userID string) (*domain.TaxFiling, error) {
	return s.transition(ctx, filingID, domain.TaxReversed, userID)
}

// transition moves a filing to next, reversing its accrual entry when next
// is REVERSED.
func (s *taxService) transition(ctx context.Context, filingID string, next domain.TaxFilingStatus, userID string) (*domain.TaxFiling, error) {
	var filing *domain.TaxFiling
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		var err error
		filing, err = repos.TaxFilingRepo.FindFilingForUpdate(ctx, filingID)
		if err != nil {
			return err
		}
		if !filing.Status.CanTransitionTo(next) {
			return &apperrors.InvalidStateTransitionError{Entity: "tax filing", ID: filingID, From: string(filing.Status), To: string(next)}
		}

		now := time.Now().UTC()
		if next == domain.TaxReversed && filing.JournalEntryID != nil {
			reversal, err := s.ledger.ReverseInTx(ctx, repos, *filing.JournalEntryID, now, userID)
			if err != nil {
				return err
			}
			filing.ReversalEntryID = &reversal.Entry.EntryID
		}

		filing.Status = next
		touch(&filing.AuditFields, userID, now)
		return repos.TaxFilingRepo.UpdateFiling(ctx, *filing)
	})
	if err != nil {
		s.LogRejection(ctx, err, "Failed to change tax filing status",
			slog.String("filing_id", filingID),
			slog.String("to", string(next)))
		return nil, err
	}

	s.LogInfo(ctx, "Tax filing status changed", slog.String("filing_id", filingID), slog.String("status", string(next)))
	return filing, nil
}

func (s *taxService) GetFiling(ctx context.Context, filingID string) (*domain.TaxFiling, error) {
	return s.uow.Repositories().TaxFilingRepo.FindFilingByID(ctx, filingID)
}

func (s *taxService) Breakdown(ctx context.Context, start, end time.Time) (*domain.TaxBreakdown, error) {
	start, end, err := checkPeriod(start, end)
	if err != nil {
		return nil, err
	}
	lines, err := s.uow.Repositories().JournalRepo.FindPeriodLines(ctx, start, end)
	if err != nil {
		return nil, err
	}

	income, expense := periodTotals(lines, "")
	return &domain.TaxBreakdown{
		PeriodStart: start,
		PeriodEnd:   end,
		Income:      income,
		Expense:     expense,
		Profit:      income.Sub(expense),
		Lines:       lines,
	}, nil
}
