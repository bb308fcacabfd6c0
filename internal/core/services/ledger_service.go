package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/SscSPs/gl_engine/internal/platform/metrics"
	"github.com/SscSPs/gl_engine/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultEntryPageSize = 20
	maxEntryPageSize     = 100
)

// ledgerService is the posting core. Every entry is recorded in the base
// currency; foreign document amounts travel on the lines as annotations.
type ledgerService struct {
	BaseService
	uow       portsrepo.UnitOfWork
	guard     portssvc.PostingGuard
	accounts  portssvc.ChartOfAccountsSvcFacade
	rates     portssvc.ExchangeRateSvcFacade
	settings  portssvc.SettingsSvcFacade
	approvals portssvc.ApprovalSvcFacade
}

// LedgerDeps are the collaborators of the ledger service.
type LedgerDeps struct {
	UnitOfWork portsrepo.UnitOfWork
	Guard      portssvc.PostingGuard
	Accounts   portssvc.ChartOfAccountsSvcFacade
	Rates      portssvc.ExchangeRateSvcFacade
	Settings   portssvc.SettingsSvcFacade
	Approvals  portssvc.ApprovalSvcFacade
	Metrics    metrics.Recorder
}

// NewLedgerService creates the ledger posting core.
func NewLedgerService(deps LedgerDeps) portssvc.LedgerSvcFacade {
	return &ledgerService{
		BaseService: BaseService{Metrics: deps.Metrics},
		uow:         deps.UnitOfWork,
		guard:       deps.Guard,
		accounts:    deps.Accounts,
		rates:       deps.Rates,
		settings:    deps.Settings,
		approvals:   deps.Approvals,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func (s *ledgerService) PostInTx(ctx context.Context, repos portsrepo.RepositoryProvider, posting portssvc.DocumentPosting) (*domain.PostingResult, error) {
	start := time.Now()
	kind := string(posting.Source.Kind)

	result, err := s.postInTx(ctx, repos, posting)
	if err != nil {
		var engineErr apperrors.EngineError
		if errors.As(err, &engineErr) {
			s.recorder().PostingRejected(kind, engineErr.Code())
		}
		return nil, err
	}

	entryID, replayed := result.Entry.EntryID, result.Replayed
	repos.Hooks.AfterCommit(func() {
		s.recorder().PostingCommitted(kind, replayed, time.Since(start))
		s.LogInfo(ctx, "Posting committed",
			slog.String("source_kind", kind),
			slog.String("source_id", posting.Source.ID),
			slog.String("entry_id", entryID),
			slog.Bool("replayed", replayed))
	})
	return result, nil
}

func (s *ledgerService) postInTx(ctx context.Context, repos portsrepo.RepositoryProvider, posting portssvc.DocumentPosting) (*domain.PostingResult, error) {
	if posting.Build == nil {
		return nil, fmt.Errorf("%w: posting for %s has no entry builder", apperrors.ErrInternal, posting.Source.Kind)
	}

	var reservation *domain.Reservation
	if posting.Source.Kind != domain.SourceManual {
		res, err := s.guard.CheckAndReserve(ctx, repos, posting.Source, posting.Fingerprint)
		var already *apperrors.AlreadyPostedError
		if errors.As(err, &already) {
			entry, err := repos.JournalRepo.FindEntryByID(ctx, already.EntryID)
			if err != nil {
				return nil, fmt.Errorf("failed to load previously posted entry %s: %w", already.EntryID, err)
			}
			return &domain.PostingResult{Entry: entry, Replayed: true}, nil
		}
		if err != nil {
			return nil, err
		}
		reservation = res
	}

	entry, err := posting.Build(ctx)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	if entry.CurrencyCode == "" {
		entry.CurrencyCode = settings.BaseCurrency
	}
	if entry.CurrencyCode != settings.BaseCurrency {
		return nil, apperrors.NewValidationError("entries are recorded in the base currency %s, got %s", settings.BaseCurrency, entry.CurrencyCode)
	}
	currency, err := minorUnitsOf(ctx, repos, entry.CurrencyCode)
	if err != nil {
		return nil, err
	}

	if err := accounting.ValidateEntryLines(entry.Lines, currency.MinorUnits); err != nil {
		return nil, err
	}
	if err := s.ensureAccountsPostable(ctx, repos, entry.Lines); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if entry.EntryID == "" {
		entry.EntryID = uuid.NewString()
	}
	entry.EntryDate = dateOnly(entry.EntryDate)
	entry.Status = domain.Posted
	entry.Source = posting.Source
	if entry.Source.Kind == domain.SourceManual {
		entry.Source.ID = entry.EntryID
	}
	entry.AuditFields = newAuditFields(posting.UserID, now)
	for i := range entry.Lines {
		entry.Lines[i].LineID = uuid.NewString()
		entry.Lines[i].EntryID = entry.EntryID
		entry.Lines[i].LineNo = i + 1
	}

	if err := repos.JournalRepo.SaveEntry(ctx, *entry); err != nil {
		s.LogError(ctx, err, "Failed to save journal entry", slog.String("entry_id", entry.EntryID))
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}
	if reservation != nil {
		if err := s.guard.Complete(ctx, repos, reservation, entry.EntryID); err != nil {
			return nil, err
		}
	}

	return &domain.PostingResult{Entry: entry}, nil
}

// ensureAccountsPostable checks every referenced account exists and is active.
func (s *ledgerService) ensureAccountsPostable(ctx context.Context, repos portsrepo.RepositoryProvider, lines []domain.JournalLine) error {
	codes := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		if !seen[l.AccountCode] {
			seen[l.AccountCode] = true
			codes = append(codes, l.AccountCode)
		}
	}

	accounts, err := repos.AccountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}
	for _, code := range codes {
		account, ok := accounts[code]
		if !ok {
			return &apperrors.UnknownAccountError{AccountCode: code, Reason: "account does not exist"}
		}
		if !account.IsActive {
			return &apperrors.UnknownAccountError{AccountCode: code, Reason: "account is inactive"}
		}
	}
	return nil
}

func (s *ledgerService) PostInvoice(ctx context.Context, kind domain.InvoiceKind, invoiceID string, userID string) (*domain.PostingResult, error) {
	if !kind.IsValid() {
		return nil, apperrors.NewValidationError("invalid invoice kind '%s'", kind)
	}

	var result *domain.PostingResult
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		inv, err := repos.InvoiceRepo.FindInvoiceForUpdate(ctx, kind, invoiceID)
		if err != nil {
			return err
		}
		if !inv.Posted {
			if err := s.approvals.EnsureApproved(ctx, repos, kind.InvoiceSource(), invoiceID); err != nil {
				return err
			}
		}

		fingerprint, err := fingerprintInvoice(*inv)
		if err != nil {
			return err
		}

		var rate, baseTotal decimal.Decimal
		result, err = s.PostInTx(ctx, repos, portssvc.DocumentPosting{
			Source:      domain.SourceRef{Kind: kind.InvoiceSource(), ID: invoiceID},
			Fingerprint: fingerprint,
			UserID:      userID,
			Build: func(ctx context.Context) (*domain.JournalEntry, error) {
				entry, r, bt, err := s.buildInvoiceEntry(ctx, repos, *inv)
				rate, baseTotal = r, bt
				return entry, err
			},
		})
		if err != nil || result.Replayed {
			return err
		}

		inv.Posted = true
		inv.Status = domain.InvoicePosted
		inv.Outstanding = inv.Total
		inv.PostingRate = &rate
		inv.BaseTotal = &baseTotal
		inv.JournalEntryID = &result.Entry.EntryID
		touch(&inv.AuditFields, userID, time.Now().UTC())
		return repos.InvoiceRepo.UpdateInvoice(ctx, *inv)
	})
	if err != nil {
		s.LogRejection(ctx, err, "Failed to post invoice",
			slog.String("kind", string(kind)),
			slog.String("invoice_id", invoiceID))
		return nil, err
	}
	return result, nil
}

// buildInvoiceEntry converts the invoice at its issue date rate. The tax
// line is converted on its own and the net line takes the remainder so the
// control line always equals the rounded converted total.
func (s *ledgerService) buildInvoiceEntry(ctx context.Context, repos portsrepo.RepositoryProvider, inv domain.Invoice) (*domain.JournalEntry, decimal.Decimal, decimal.Decimal, error) {
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, decimal.Zero, decimal.Zero, err
	}
	base, err := minorUnitsOf(ctx, repos, settings.BaseCurrency)
	if err != nil {
		return nil, decimal.Zero, decimal.Zero, err
	}
	rate, err := s.rates.RateToBase(ctx, repos, inv.CurrencyCode, inv.IssueDate)
	if err != nil {
		return nil, decimal.Zero, decimal.Zero, err
	}

	baseTotal := accounting.ConvertAtRate(inv.Total, rate, base.MinorUnits)
	baseTax := accounting.ConvertAtRate(inv.TaxAmount, rate, base.MinorUnits)
	baseNet := baseTotal.Sub(baseTax)

	control := inv.Kind.ControlRole()
	income, vat := domain.RoleRevenue, domain.RoleVATOut
	if inv.Kind == domain.KindAP {
		income, vat = domain.RoleExpense, domain.RoleVATIn
	}
	accounts, err := s.accounts.ResolveAll(ctx, repos, control, income, vat)
	if err != nil {
		return nil, decimal.Zero, decimal.Zero, err
	}

	memo := fmt.Sprintf("%s invoice %s", inv.Kind, inv.Number)
	var ls lineSet
	if inv.Kind == domain.KindAR {
		line := ls.debit(accounts[control], control, baseTotal, memo)
		foreign(line, inv.Total, inv.CurrencyCode, settings.BaseCurrency)
		tag(line, "counterparty", inv.CounterpartyID)
		foreign(ls.credit(accounts[income], income, baseNet, memo), inv.Subtotal, inv.CurrencyCode, settings.BaseCurrency)
		foreign(ls.credit(accounts[vat], vat, baseTax, memo), inv.TaxAmount, inv.CurrencyCode, settings.BaseCurrency)
	} else {
		foreign(ls.debit(accounts[income], income, baseNet, memo), inv.Subtotal, inv.CurrencyCode, settings.BaseCurrency)
		foreign(ls.debit(accounts[vat], vat, baseTax, memo), inv.TaxAmount, inv.CurrencyCode, settings.BaseCurrency)
		line := ls.credit(accounts[control], control, baseTotal, memo)
		foreign(line, inv.Total, inv.CurrencyCode, settings.BaseCurrency)
		tag(line, "counterparty", inv.CounterpartyID)
	}
	for i := range ls.lines {
		tag(&ls.lines[i], "invoice", inv.InvoiceID)
	}

	return &domain.JournalEntry{
		EntryDate: inv.IssueDate,
		Memo:      memo,
		Lines:     ls.lines,
	}, rate, baseTotal, nil
}

func (s *ledgerService) PostManualEntry(ctx context.Context, req dto.CreateJournalEntryRequest, userID string) (*domain.PostingResult, error) {
	if strings.TrimSpace(req.Memo) == "" {
		return nil, apperrors.NewValidationError("journal entry memo is required")
	}

	lines := make([]domain.JournalLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = domain.JournalLine{
			AccountCode: l.AccountCode,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Memo:        l.Memo,
			Dimensions:  l.Dimensions,
		}
	}
	entry := &domain.JournalEntry{
		EntryDate:    req.EntryDate,
		CurrencyCode: req.CurrencyCode,
		Memo:         req.Memo,
		Lines:        lines,
	}

	var result *domain.PostingResult
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		var err error
		result, err = s.PostInTx(ctx, repos, portssvc.DocumentPosting{
			Source: domain.SourceRef{Kind: domain.SourceManual},
			UserID: userID,
			Build: func(context.Context) (*domain.JournalEntry, error) {
				return entry, nil
			},
		})
		return err
	})
	if err != nil {
		s.LogRejection(ctx, err, "Failed to post manual journal entry", slog.String("user_id", userID))
		return nil, err
	}
	return result, nil
}

func (s *ledgerService) ReverseEntry(ctx context.Context, entryID string, userID string) (*domain.PostingResult, error) {
	var result *domain.PostingResult
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		var err error
		result, err = s.ReverseInTx(ctx, repos, entryID, time.Now().UTC(), userID)
		return err
	})
	if err != nil {
		s.LogRejection(ctx, err, "Failed to reverse journal entry", slog.String("entry_id", entryID))
		return nil, err
	}
	return result, nil
}

func (s *ledgerService) ReverseInTx(ctx context.Context, repos portsrepo.RepositoryProvider, entryID string, date time.Time, userID string) (*domain.PostingResult, error) {
	original, err := repos.JournalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if original.Source.Kind == domain.SourceReversal {
		return nil, apperrors.NewValidationError("entry %s is itself a reversal", entryID)
	}

	fingerprint, err := fingerprintReversal(entryID)
	if err != nil {
		return nil, err
	}

	result, err := s.PostInTx(ctx, repos, portssvc.DocumentPosting{
		Source:      domain.SourceRef{Kind: domain.SourceReversal, ID: entryID},
		Fingerprint: fingerprint,
		UserID:      userID,
		Build: func(context.Context) (*domain.JournalEntry, error) {
			if original.Status == domain.Reversed {
				return nil, &apperrors.InvalidStateTransitionError{Entity: "journal entry", ID: entryID, From: string(original.Status), To: string(domain.Reversed)}
			}
			lines := make([]domain.JournalLine, len(original.Lines))
			for i, l := range original.Lines {
				swapped := l.Swapped()
				swapped.LineID, swapped.EntryID, swapped.LineNo = "", "", 0
				lines[i] = swapped
			}
			origID := original.EntryID
			return &domain.JournalEntry{
				EntryDate:       date,
				CurrencyCode:    original.CurrencyCode,
				Memo:            "Reversal of " + original.Memo,
				OriginalEntryID: &origID,
				Lines:           lines,
			}, nil
		},
	})
	if err != nil || result.Replayed {
		return result, err
	}

	reversingID := result.Entry.EntryID
	if err := repos.JournalRepo.UpdateEntryStatusAndLinks(ctx, entryID, domain.Reversed, &reversingID, userID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to mark entry %s reversed: %w", entryID, err)
	}
	return result, nil
}

func (s *ledgerService) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.uow.Repositories().JournalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load journal entry", slog.String("entry_id", entryID))
		}
		return nil, err
	}
	return entry, nil
}

func (s *ledgerService) ListEntries(ctx context.Context, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultEntryPageSize
	}
	if limit > maxEntryPageSize {
		limit = maxEntryPageSize
	}

	entries, next, err := s.uow.Repositories().JournalRepo.ListEntries(ctx, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}

	resp := &dto.ListJournalEntriesResponse{
		Entries:   make([]dto.JournalEntryResponse, len(entries)),
		NextToken: next,
	}
	for i := range entries {
		resp.Entries[i] = dto.ToJournalEntryResponse(&entries[i])
	}
	return resp, nil
}
