package services

import (
	"context"
	"time"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/SscSPs/gl_engine/internal/dto"
)

// TaxSvcFacade is the corporate tax accrual engine.
type TaxSvcFacade interface {
	// Accrue computes the tax for a period, posts the accrual and returns the ACCRUED filing.
	Accrue(ctx context.Context, req dto.TaxAccrualRequest, userID string) (*domain.TaxFiling, error)

	// File moves an ACCRUED filing to FILED.
	File(ctx context.Context, filingID string, userID string) (*domain.TaxFiling, error)

	// MarkPaid records external payment confirmation of a FILED filing.
	MarkPaid(ctx context.Context, filingID string, userID string) (*domain.TaxFiling, error)

	// Reverse reverses a FILED filing's accrual entry.
	Reverse(ctx context.Context, filingID string, userID string) (*domain.TaxFiling, error)

	// GetFiling retrieves a filing.
	GetFiling(ctx context.Context, filingID string) (*domain.TaxFiling, error)

	// Breakdown aggregates income and expense activity for [start, end].
	Breakdown(ctx context.Context, start, end time.Time) (*domain.TaxBreakdown, error)
}
