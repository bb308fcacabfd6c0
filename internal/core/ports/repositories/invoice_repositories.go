package repositories

import (
	"context"

	"github.com/SscSPs/gl_engine/internal/core/domain"
)

// InvoiceFilter narrows open invoice lookups.
type InvoiceFilter struct {
	Kind           domain.InvoiceKind
	CounterpartyID string
}

// InvoiceReader defines read operations for invoice data
type InvoiceReader interface {
	// FindInvoiceByID retrieves an invoice of the given kind.
	FindInvoiceByID(ctx context.Context, kind domain.InvoiceKind, invoiceID string) (*domain.Invoice, error)

	// ListOpenInvoices returns posted invoices with an outstanding balance.
	ListOpenInvoices(ctx context.Context, filter InvoiceFilter) ([]domain.Invoice, error)
}

// InvoiceWriter defines write operations for invoice data
type InvoiceWriter interface {
	// SaveInvoice persists a new invoice.
	SaveInvoice(ctx context.Context, invoice domain.Invoice) error

	// UpdateInvoice overwrites the mutable fields of an invoice.
	UpdateInvoice(ctx context.Context, invoice domain.Invoice) error
}

// InvoiceLocker takes row locks on invoices inside a unit of work.
type InvoiceLocker interface {
	// FindInvoiceForUpdate reads and locks one invoice.
	FindInvoiceForUpdate(ctx context.Context, kind domain.InvoiceKind, invoiceID string) (*domain.Invoice, error)

	// FindInvoicesForUpdate locks invoices in ascending id order and returns them keyed by id.
	FindInvoicesForUpdate(ctx context.Context, kind domain.InvoiceKind, invoiceIDs []string) (map[string]domain.Invoice, error)
}

// InvoiceRepositoryFacade combines all invoice-related repository interfaces
type InvoiceRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
	InvoiceLocker
}
