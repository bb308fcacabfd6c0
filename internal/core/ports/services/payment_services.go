package services

import (
	"context"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/SscSPs/gl_engine/internal/dto"
)

// PaymentSvcFacade is the payment allocation engine.
type PaymentSvcFacade interface {
	// CreatePayment creates a draft payment, posting it at once when requested.
	CreatePayment(ctx context.Context, kind domain.InvoiceKind, req dto.CreatePaymentRequest, userID string) (*domain.PaymentPostingResult, error)

	// UpdatePayment edits a draft payment. Posted payments fail with *apperrors.PostedPaymentImmutableError.
	UpdatePayment(ctx context.Context, kind domain.InvoiceKind, paymentID string, req dto.UpdatePaymentRequest, userID string) (*domain.Payment, error)

	// PostPayment allocates the payment across its invoices and posts the settlement entry.
	PostPayment(ctx context.Context, kind domain.InvoiceKind, paymentID string, userID string) (*domain.PaymentPostingResult, error)

	// GetPayment retrieves a payment with its allocations.
	GetPayment(ctx context.Context, kind domain.InvoiceKind, paymentID string) (*domain.Payment, error)
}

// AgingSvcFacade is the aging calculator.
type AgingSvcFacade interface {
	// Age buckets the open balances selected by query. Empty boundaries use the configured default.
	Age(ctx context.Context, query domain.AgingQuery) (*domain.AgingReport, error)
}
