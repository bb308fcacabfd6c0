package services

import (
	"context"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/SscSPs/gl_engine/internal/dto"
)

// InvoiceSvcFacade manages the AR and AP invoice registers.
type InvoiceSvcFacade interface {
	// CreateInvoice registers a draft invoice and derives its tax split.
	CreateInvoice(ctx context.Context, kind domain.InvoiceKind, req dto.CreateInvoiceRequest, userID string) (*domain.Invoice, error)

	// UpdateInvoice edits a draft invoice. Posted invoices fail with *apperrors.PostedDocumentMutatedError.
	UpdateInvoice(ctx context.Context, kind domain.InvoiceKind, invoiceID string, req dto.UpdateInvoiceRequest, userID string) (*domain.Invoice, error)

	// GetInvoice retrieves an invoice.
	GetInvoice(ctx context.Context, kind domain.InvoiceKind, invoiceID string) (*domain.Invoice, error)

	// ListOpenInvoices lists posted invoices that still have an outstanding balance.
	ListOpenInvoices(ctx context.Context, kind domain.InvoiceKind, counterpartyID string) ([]domain.Invoice, error)
}
