package repositories

import (
	"context"

	"github.com/SscSPs/gl_engine/internal/core/domain"
)

// PaymentReader defines read operations for payment data
type PaymentReader interface {
	// FindPaymentByID retrieves a payment with its allocations.
	FindPaymentByID(ctx context.Context, kind domain.InvoiceKind, paymentID string) (*domain.Payment, error)
}

// PaymentWriter defines write operations for payment data
type PaymentWriter interface {
	// SavePayment persists a new payment and its allocations.
	SavePayment(ctx context.Context, payment domain.Payment) error

	// UpdatePayment overwrites the payment header and replaces its allocations.
	UpdatePayment(ctx context.Context, payment domain.Payment) error
}

// PaymentLocker takes row locks on payments inside a unit of work.
type PaymentLocker interface {
	// FindPaymentForUpdate reads and locks a payment with its allocations.
	FindPaymentForUpdate(ctx context.Context, kind domain.InvoiceKind, paymentID string) (*domain.Payment, error)
}

// PaymentRepositoryFacade combines all payment-related repository interfaces
type PaymentRepositoryFacade interface {
	PaymentReader
	PaymentWriter
	PaymentLocker
}
