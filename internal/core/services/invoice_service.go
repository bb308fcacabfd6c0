package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/SscSPs/gl_engine/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type invoiceService struct {
	BaseService
	uow portsrepo.UnitOfWork
}

// NewInvoiceService creates the invoice register.
func NewInvoiceService(uow portsrepo.UnitOfWork) portssvc.InvoiceSvcFacade {
	return &invoiceService{uow: uow}
}

var _ portssvc.InvoiceSvcFacade = (*invoiceService)(nil)

// invoiceTerms is the editable part of an invoice before the tax split.
type invoiceTerms struct {
	Number         string
	CounterpartyID string
	CurrencyCode   string
	IssueDate      time.Time
	DueDate        time.Time
	Description    string
	Amount         decimal.Decimal
	TaxRate        decimal.Decimal
	TaxInclusive   bool
}

func (t invoiceTerms) validate() error {
	if strings.TrimSpace(t.Number) == "" {
		return apperrors.NewValidationError("invoice number is required")
	}
	if strings.TrimSpace(t.CounterpartyID) == "" {
		return apperrors.NewValidationError("counterparty is required")
	}
	if !t.Amount.IsPositive() {
		return apperrors.NewValidationError("invoice amount must be positive")
	}
	if t.TaxRate.IsNegative() || t.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return apperrors.NewValidationError("tax rate must be between 0 and 1")
	}
	if t.DueDate.Before(dateOnly(t.IssueDate)) {
		return apperrors.NewValidationError("due date cannot precede issue date")
	}
	return nil
}

// apply recomputes the amounts of inv from terms in the invoice currency.
func (t invoiceTerms) apply(inv *domain.Invoice, currency domain.Currency) {
	net, tax, total := accounting.SplitTax(t.Amount, t.TaxRate, t.TaxInclusive, currency.MinorUnits)
	inv.Number = t.Number
	inv.CounterpartyID = t.CounterpartyID
	inv.CurrencyCode = currency.CurrencyCode
	inv.IssueDate = dateOnly(t.IssueDate)
	inv.DueDate = dateOnly(t.DueDate)
	inv.Description = t.Description
	inv.TaxRate = t.TaxRate
	inv.TaxInclusive = t.TaxInclusive
	inv.Subtotal = net
	inv.TaxAmount = tax
	inv.Total = total
	inv.Outstanding = decimal.Zero
}

func (s *invoiceService) CreateInvoice(ctx context.Context, kind domain.InvoiceKind, req dto.CreateInvoiceRequest, userID string) (*domain.Invoice, error) {
	if !kind.IsValid() {
		return nil, apperrors.NewValidationError("invalid invoice kind '%s'", kind)
	}
	terms := invoiceTerms{
		Number:         req.Number,
		CounterpartyID: req.CounterpartyID,
		CurrencyCode:   strings.ToUpper(req.CurrencyCode),
		IssueDate:      req.IssueDate,
		DueDate:        req.DueDate,
		Description:    req.Description,
		Amount:         req.Amount,
		TaxRate:        req.TaxRate,
		TaxInclusive:   req.TaxInclusive,
	}
	if err := terms.validate(); err != nil {
		return nil, err
	}

	repos := s.uow.Repositories()
	currency, err := minorUnitsOf(ctx, repos, terms.CurrencyCode)
	if err != nil {
		return nil, err
	}

	inv := domain.Invoice{
		InvoiceID:   uuid.NewString(),
		Kind:        kind,
		Status:      domain.InvoiceDraft,
		AuditFields: newAuditFields(userID, time.Now().UTC()),
	}
	terms.apply(&inv, currency)

	if err := repos.InvoiceRepo.SaveInvoice(ctx, inv); err != nil {
		s.LogError(ctx, err, "Failed to save invoice", slog.String("kind", string(kind)), slog.String("number", inv.Number))
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.LogInfo(ctx, "Invoice created",
		slog.String("invoice_id", inv.InvoiceID),
		slog.String("kind", string(kind)),
		slog.String("total", inv.Total.String()),
		slog.String("currency", inv.CurrencyCode))
	return &inv, nil
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, kind domain.InvoiceKind, invoiceID string, req dto.UpdateInvoiceRequest, userID string) (*domain.Invoice, error) {
	var inv *domain.Invoice
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		var err error
		inv, err = repos.InvoiceRepo.FindInvoiceForUpdate(ctx, kind, invoiceID)
		if err != nil {
			return err
		}
		if inv.Posted {
			entryID := ""
			if inv.JournalEntryID != nil {
				entryID = *inv.JournalEntryID
			}
			return &apperrors.PostedDocumentMutatedError{SourceKind: string(kind.InvoiceSource()), SourceID: invoiceID, EntryID: entryID}
		}

		terms := invoiceTerms{
			Number:         inv.Number,
			CounterpartyID: inv.CounterpartyID,
			CurrencyCode:   inv.CurrencyCode,
			IssueDate:      inv.IssueDate,
			DueDate:        inv.DueDate,
			Description:    inv.Description,
			Amount:         inv.Subtotal,
			TaxRate:        inv.TaxRate,
			TaxInclusive:   inv.TaxInclusive,
		}
		if inv.TaxInclusive {
			terms.Amount = inv.Total
		}
		if req.Number != nil {
			terms.Number = *req.Number
		}
		if req.CounterpartyID != nil {
			terms.CounterpartyID = *req.CounterpartyID
		}
		if req.CurrencyCode != nil {
			terms.CurrencyCode = strings.ToUpper(*req.CurrencyCode)
		}
		if req.IssueDate != nil {
			terms.IssueDate = *req.IssueDate
		}
		if req.DueDate != nil {
			terms.DueDate = *req.DueDate
		}
		if req.Description != nil {
			terms.Description = *req.Description
		}
		if req.TaxInclusive != nil {
			terms.TaxInclusive = *req.TaxInclusive
		}
		if req.Amount != nil {
			terms.Amount = *req.Amount
		}
		if req.TaxRate != nil {
			terms.TaxRate = *req.TaxRate
		}
		if err := terms.validate(); err != nil {
			return err
		}

		currency, err := minorUnitsOf(ctx, repos, terms.CurrencyCode)
		if err != nil {
			return err
		}
		terms.apply(inv, currency)
		touch(&inv.AuditFields, userID, time.Now().UTC())
		return repos.InvoiceRepo.UpdateInvoice(ctx, *inv)
	})
	if err != nil {
		s.LogRejection(ctx, err, "Failed to update invoice", slog.String("invoice_id", invoiceID))
		return nil, err
	}
	return inv, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, kind domain.InvoiceKind, invoiceID string) (*domain.Invoice, error) {
	return s.uow.Repositories().InvoiceRepo.FindInvoiceByID(ctx, kind, invoiceID)
}

func (s *invoiceService) ListOpenInvoices(ctx context.Context, kind domain.InvoiceKind, counterpartyID string) ([]domain.Invoice, error) {
	if !kind.IsValid() {
		return nil, apperrors.NewValidationError("invalid invoice kind '%s'", kind)
	}
	invoices, err := s.uow.Repositories().InvoiceRepo.ListOpenInvoices(ctx, portsrepo.InvoiceFilter{Kind: kind, CounterpartyID: counterpartyID})
	if err != nil {
		return nil, fmt.Errorf("failed to list open invoices: %w", err)
	}
	return invoices, nil
}
