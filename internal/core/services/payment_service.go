package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type paymentService struct {
	BaseService
	uow      portsrepo.UnitOfWork
	ledger   portssvc.LedgerSvcFacade
	accounts portssvc.ChartOfAccountsSvcFacade
	rates    portssvc.ExchangeRateSvcFacade
	settings portssvc.SettingsSvcFacade
}

// NewPaymentService creates the payment allocation engine.
func NewPaymentService(uow portsrepo.UnitOfWork, ledger portssvc.LedgerSvcFacade, accounts portssvc.ChartOfAccountsSvcFacade, rates portssvc.ExchangeRateSvcFacade, settings portssvc.SettingsSvcFacade) portssvc.PaymentSvcFacade {
	return &paymentService{
		uow:      uow,
		ledger:   ledger,
		accounts: accounts,
		rates:    rates,
		settings: settings,
	}
}

var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

func (s *paymentService) CreatePayment(ctx context.Context, kind domain.InvoiceKind, req dto.CreatePaymentRequest, userID string) (*domain.PaymentPostingResult, error) {
	if !kind.IsValid() {
		return nil, apperrors.NewValidationError("invalid payment kind '%s'", kind)
	}
	if strings.TrimSpace(req.CounterpartyID) == "" {
		return nil, apperrors.NewValidationError("counterparty is required")
	}

	now := time.Now().UTC()
	payment := domain.Payment{
		PaymentID:       uuid.NewString(),
		Kind:            kind,
		CounterpartyID:  req.CounterpartyID,
		PaymentDate:     dateOnly(req.PaymentDate),
		Amount:          req.Amount,
		CurrencyCode:    strings.ToUpper(req.CurrencyCode),
		BankAccountCode: req.BankAccountCode,
		Reference:       req.Reference,
		Status:          domain.PaymentDraft,
		AuditFields:     newAuditFields(userID, now),
	}
	payment.Allocations = newAllocations(payment.PaymentID, req.Allocations)

	var result *domain.PaymentPostingResult
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		if err := s.validateDraft(ctx, repos, payment); err != nil {
			return err
		}
		if err := repos.PaymentRepo.SavePayment(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		if !req.PostImmediately {
			result = &domain.PaymentPostingResult{Payment: &payment}
			return nil
		}
		var err error
		result, err = s.postInTx(ctx, repos, &payment, userID)
		return err
	})
	if err != nil {
		s.LogRejection(ctx, err, "Failed to create payment",
			slog.String("kind", string(kind)),
			slog.String("counterparty_id", req.CounterpartyID))
		return nil, err
	}

	s.LogInfo(ctx, "Payment created",
		slog.String("payment_id", payment.PaymentID),
		slog.String("kind", string(kind)),
		slog.Bool("posted", result.Payment.IsPosted()))
	return result, nil
}

func (s *paymentService) UpdatePayment(ctx context.Context, kind domain.InvoiceKind, paymentID string, req dto.UpdatePaymentRequest, userID string) (*domain.Payment, error) {
	var payment *domain.Payment
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		var err error
		payment, err = repos.PaymentRepo.FindPaymentForUpdate(ctx, kind, paymentID)
		if err != nil {
			return err
		}
		if payment.IsPosted() {
			return &apperrors.PostedPaymentImmutableError{PaymentID: paymentID}
		}

		if req.PaymentDate != nil {
			payment.PaymentDate = dateOnly(*req.PaymentDate)
		}
		if req.Amount != nil {
			payment.Amount = *req.Amount
		}
		if req.CurrencyCode != nil {
			payment.CurrencyCode = strings.ToUpper(*req.CurrencyCode)
		}
		if req.BankAccountCode != nil {
			payment.BankAccountCode = *req.BankAccountCode
		}
		if req.Reference != nil {
			payment.Reference = *req.Reference
		}
		if req.Allocations != nil {
			payment.Allocations = newAllocations(paymentID, *req.Allocations)
		}
		if err := s.validateDraft(ctx, repos, *payment); err != nil {
			return err
		}
		touch(&payment.AuditFields, userID, time.Now().UTC())
		return repos.PaymentRepo.UpdatePayment(ctx, *payment)
	})
	if err != nil {
		s.LogRejection(ctx, err, "Failed to update payment", slog.String("payment_id", paymentID))
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) PostPayment(ctx context.Context, kind domain.InvoiceKind, paymentID string, userID string) (*domain.PaymentPostingResult, error) {
	var result *domain.PaymentPostingResult
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		payment, err := repos.PaymentRepo.FindPaymentForUpdate(ctx, kind, paymentID)
		if err != nil {
			return err
		}
		result, err = s.postInTx(ctx, repos, payment, userID)
		return err
	})
	if err != nil {
		s.LogRejection(ctx, err, "Failed to post payment",
			slog.String("kind", string(kind)),
			slog.String("payment_id", paymentID))
		return nil, err
	}
	return result, nil
}

func (s *paymentService) GetPayment(ctx context.Context, kind domain.InvoiceKind, paymentID string) (*domain.Payment, error) {
	return s.uow.Repositories().PaymentRepo.FindPaymentByID(ctx, kind, paymentID)
}

func newAllocations(paymentID string, reqs []dto.AllocationRequest) []domain.PaymentAllocation {
	allocs := make([]domain.PaymentAllocation, len(reqs))
	for i, a := range reqs {
		allocs[i] = domain.PaymentAllocation{
			AllocationID: uuid.NewString(),
			PaymentID:    paymentID,
			InvoiceID:    a.InvoiceID,
			LineNo:       i + 1,
			Amount:       a.Amount,
		}
	}
	return allocs
}

// validateDraft checks what can be checked without touching invoices.
func (s *paymentService) validateDraft(ctx context.Context, repos portsrepo.RepositoryProvider, p domain.Payment) error {
	if !p.Amount.IsPositive() {
		return apperrors.NewValidationError("payment amount must be positive")
	}
	currency, err := minorUnitsOf(ctx, repos, p.CurrencyCode)
	if err != nil {
		return err
	}
	if !currency.IsExact(p.Amount) {
		return apperrors.NewValidationError("payment amount %s exceeds %d decimal places", p.Amount.String(), currency.MinorUnits)
	}
	seen := make(map[string]bool, len(p.Allocations))
	for _, a := range p.Allocations {
		if a.InvoiceID == "" {
			return apperrors.NewValidationError("allocation %d has no invoice", a.LineNo)
		}
		if seen[a.InvoiceID] {
			return apperrors.NewValidationError("invoice %s is allocated more than once", a.InvoiceID)
		}
		seen[a.InvoiceID] = true
		if !a.Amount.IsPositive() {
			return apperrors.NewValidationError("allocation to invoice %s must be positive", a.InvoiceID)
		}
	}
	return nil
}

// settlement is the computed effect of posting a payment.
type settlement struct {
	allocations []domain.PaymentAllocation
	invoices    map[string]domain.Invoice
	unallocated decimal.Decimal
}

// postInTx allocates and posts payment inside the caller's transaction. A
// payment that is already posted replays its entry through the guard.
func (s *paymentService) postInTx(ctx context.Context, repos portsrepo.RepositoryProvider, payment *domain.Payment, userID string) (*domain.PaymentPostingResult, error) {
	fingerprint, err := fingerprintPayment(*payment)
	if err != nil {
		return nil, err
	}

	var computed settlement
	posting, err := s.ledger.PostInTx(ctx, repos, portssvc.DocumentPosting{
		Source:      domain.SourceRef{Kind: payment.Kind.PaymentSource(), ID: payment.PaymentID},
		Fingerprint: fingerprint,
		UserID:      userID,
		Build: func(ctx context.Context) (*domain.JournalEntry, error) {
			if payment.IsPosted() {
				return nil, &apperrors.PostedPaymentImmutableError{PaymentID: payment.PaymentID}
			}
			entry, st, err := s.buildSettlement(ctx, repos, *payment)
			computed = st
			return entry, err
		},
	})
	if err != nil {
		return nil, err
	}
	if posting.Replayed {
		return &domain.PaymentPostingResult{Payment: payment, PostingResult: *posting}, nil
	}

	now := time.Now().UTC()
	invoices := make([]domain.Invoice, 0, len(computed.allocations))
	for _, a := range computed.allocations {
		inv := computed.invoices[a.InvoiceID]
		inv.Outstanding = inv.Outstanding.Sub(a.Amount)
		if inv.Outstanding.IsZero() {
			inv.Status = domain.InvoiceClosed
		} else {
			inv.Status = domain.InvoicePartiallyPaid
		}
		touch(&inv.AuditFields, userID, now)
		if err := repos.InvoiceRepo.UpdateInvoice(ctx, inv); err != nil {
			return nil, fmt.Errorf("failed to update invoice %s: %w", inv.InvoiceID, err)
		}
		invoices = append(invoices, inv)
	}

	payment.Allocations = computed.allocations
	payment.Unallocated = computed.unallocated
	payment.Status = domain.PaymentPosted
	payment.JournalEntryID = &posting.Entry.EntryID
	touch(&payment.AuditFields, userID, now)
	if err := repos.PaymentRepo.UpdatePayment(ctx, *payment); err != nil {
		return nil, fmt.Errorf("failed to update payment %s: %w", payment.PaymentID, err)
	}

	s.LogInfo(ctx, "Payment allocated",
		slog.String("payment_id", payment.PaymentID),
		slog.Int("allocations", len(invoices)),
		slog.String("unallocated", computed.unallocated.String()))
	return &domain.PaymentPostingResult{Payment: payment, Invoices: invoices, PostingResult: *posting}, nil
}

// buildSettlement validates the allocations against locked invoices and
// builds the settlement entry.
//
// Each allocation relieves the control account at the invoice's book value
// and is settled at the payment date rate; the net difference goes to one FX
// line. Book value relief telescopes so a fully settled invoice clears its
// BaseTotal exactly.
func (s *paymentService) buildSettlement(ctx context.Context, repos portsrepo.RepositoryProvider, p domain.Payment) (*domain.JournalEntry, settlement, error) {
	var st settlement

	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, st, err
	}
	base, err := minorUnitsOf(ctx, repos, settings.BaseCurrency)
	if err != nil {
		return nil, st, err
	}
	payCurrency, err := minorUnitsOf(ctx, repos, p.CurrencyCode)
	if err != nil {
		return nil, st, err
	}
	payRate, err := s.rates.RateToBase(ctx, repos, p.CurrencyCode, p.PaymentDate)
	if err != nil {
		return nil, st, err
	}

	ids := make([]string, len(p.Allocations))
	for i, a := range p.Allocations {
		ids[i] = a.InvoiceID
	}
	sort.Strings(ids)
	invoices, err := repos.InvoiceRepo.FindInvoicesForUpdate(ctx, p.Kind, ids)
	if err != nil {
		return nil, st, fmt.Errorf("failed to lock invoices: %w", err)
	}

	allocs := make([]domain.PaymentAllocation, len(p.Allocations))
	totalSettled := decimal.Zero
	settlementTotal := decimal.Zero
	for i, a := range p.Allocations {
		inv, ok := invoices[a.InvoiceID]
		if !ok {
			return nil, st, apperrors.NewNotFoundError("invoice", a.InvoiceID)
		}
		if err := checkAllocatable(p, inv, a); err != nil {
			return nil, st, err
		}
		invCurrency, err := minorUnitsOf(ctx, repos, inv.CurrencyCode)
		if err != nil {
			return nil, st, err
		}
		if !invCurrency.IsExact(a.Amount) {
			return nil, st, apperrors.NewValidationError("allocation to invoice %s exceeds %d decimal places", inv.InvoiceID, invCurrency.MinorUnits)
		}

		settleRate := payRate
		settled := a.Amount
		if inv.CurrencyCode != p.CurrencyCode {
			settleRate, err = s.rates.RateToBase(ctx, repos, inv.CurrencyCode, p.PaymentDate)
			if err != nil {
				return nil, st, err
			}
			settled = payCurrency.Round(a.Amount.Mul(settleRate).Div(payRate))
		}

		a.SettledAmount = settled
		a.PostingBase = bookValue(inv, inv.Outstanding, base).Sub(bookValue(inv, inv.Outstanding.Sub(a.Amount), base))
		a.SettlementBase = base.Round(a.Amount.Mul(settleRate))
		allocs[i] = a

		totalSettled = totalSettled.Add(settled)
		settlementTotal = settlementTotal.Add(a.SettlementBase)
	}

	if totalSettled.GreaterThan(p.Amount) {
		return nil, st, &apperrors.OverAllocationError{PaymentID: p.PaymentID, Requested: totalSettled, Available: p.Amount}
	}

	unallocated := p.Amount.Sub(totalSettled)
	bankBase := base.Round(p.Amount.Mul(payRate))
	// The remainder is valued at the payment rate on its own. Rounding
	// residue between the bank line and the parts lands on the last
	// allocation and so in realised FX.
	unallocatedBase := base.Round(unallocated.Mul(payRate))
	if len(allocs) > 0 {
		last := &allocs[len(allocs)-1]
		residue := bankBase.Sub(settlementTotal).Sub(unallocatedBase)
		last.SettlementBase = last.SettlementBase.Add(residue)
	} else {
		unallocatedBase = bankBase
	}

	fx := decimal.Zero
	for i := range allocs {
		allocs[i].FXDifference = allocs[i].SettlementBase.Sub(allocs[i].PostingBase)
		fx = fx.Add(allocs[i].FXDifference)
	}

	entry, err := s.settlementEntry(ctx, repos, p, settings.BaseCurrency, allocs, invoices, bankBase, unallocated, unallocatedBase, fx)
	if err != nil {
		return nil, st, err
	}

	st = settlement{allocations: allocs, invoices: invoices, unallocated: unallocated}
	return entry, st, nil
}

func checkAllocatable(p domain.Payment, inv domain.Invoice, a domain.PaymentAllocation) error {
	if !inv.Posted {
		return apperrors.NewValidationError("invoice %s is not posted", inv.InvoiceID)
	}
	if inv.Kind != p.Kind {
		return apperrors.NewValidationError("invoice %s is %s, payment is %s", inv.InvoiceID, inv.Kind, p.Kind)
	}
	if inv.CounterpartyID != p.CounterpartyID {
		return apperrors.NewValidationError("invoice %s belongs to a different counterparty", inv.InvoiceID)
	}
	if !inv.IsOpen() || a.Amount.GreaterThan(inv.Outstanding) {
		return &apperrors.OverAllocationError{InvoiceID: inv.InvoiceID, Requested: a.Amount, Available: inv.Outstanding}
	}
	return nil
}

// bookValue is the base amount an outstanding balance is carried at.
func bookValue(inv domain.Invoice, outstanding decimal.Decimal, base domain.Currency) decimal.Decimal {
	if outstanding.Equal(inv.Total) && inv.BaseTotal != nil {
		return *inv.BaseTotal
	}
	return base.Round(outstanding.Mul(inv.RateAtPosting()))
}

func (s *paymentService) settlementEntry(
	ctx context.Context,
	repos portsrepo.RepositoryProvider,
	p domain.Payment,
	baseCurrency string,
	allocs []domain.PaymentAllocation,
	invoices map[string]domain.Invoice,
	bankBase, unallocated, unallocatedBase, fx decimal.Decimal,
) (*domain.JournalEntry, error) {
	control := p.Kind.ControlRole()
	roles, err := s.accounts.ResolveAll(ctx, repos, control, domain.RoleFXGain, domain.RoleFXLoss)
	if err != nil {
		return nil, err
	}
	bank := domain.Account{Code: p.BankAccountCode}
	if bank.Code == "" {
		resolved, err := s.accounts.Resolve(ctx, repos, domain.RoleBank)
		if err != nil {
			return nil, err
		}
		bank = *resolved
	}

	isAR := p.Kind == domain.KindAR
	memo := fmt.Sprintf("%s payment %s", p.Kind, p.PaymentID)
	if p.Reference != "" {
		memo = fmt.Sprintf("%s payment %s", p.Kind, p.Reference)
	}

	var ls lineSet
	var line *domain.JournalLine
	if isAR {
		line = ls.debit(bank, domain.RoleBank, bankBase, memo)
	} else {
		line = ls.credit(bank, domain.RoleBank, bankBase, memo)
	}
	foreign(line, p.Amount, p.CurrencyCode, baseCurrency)

	for _, a := range allocs {
		inv := invoices[a.InvoiceID]
		invMemo := fmt.Sprintf("Settlement of invoice %s", inv.Number)
		if isAR {
			line = ls.credit(roles[control], control, a.PostingBase, invMemo)
		} else {
			line = ls.debit(roles[control], control, a.PostingBase, invMemo)
		}
		foreign(line, a.Amount, inv.CurrencyCode, baseCurrency)
		tag(line, "invoice", inv.InvoiceID)
		tag(line, "counterparty", p.CounterpartyID)
	}

	if unallocated.IsPositive() {
		if isAR {
			line = ls.credit(roles[control], control, unallocatedBase, "Unallocated receipt")
		} else {
			line = ls.debit(roles[control], control, unallocatedBase, "Unallocated disbursement")
		}
		foreign(line, unallocated, p.CurrencyCode, baseCurrency)
		tag(line, "allocation", "on_account")
		tag(line, "counterparty", p.CounterpartyID)
	}

	// A receipt worth more than its book value is a gain; a disbursement
	// worth more is a loss.
	gainSide := fx
	if !isAR {
		gainSide = fx.Neg()
	}
	switch {
	case gainSide.IsPositive():
		ls.credit(roles[domain.RoleFXGain], domain.RoleFXGain, gainSide, "Realised FX gain")
	case gainSide.IsNegative():
		ls.debit(roles[domain.RoleFXLoss], domain.RoleFXLoss, gainSide.Neg(), "Realised FX loss")
	}

	return &domain.JournalEntry{
		EntryDate: p.PaymentDate,
		Memo:      memo,
		Lines:     ls.lines,
	}, nil
}
