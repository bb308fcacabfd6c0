package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/gl_engine/internal/core/domain"
)

// TaxFilingRepositoryFacade persists corporate tax filings.
type TaxFilingRepositoryFacade interface {
	// FindFilingByID retrieves a filing.
	FindFilingByID(ctx context.Context, filingID string) (*domain.TaxFiling, error)

	// FindFilingForUpdate reads and locks a filing.
	FindFilingForUpdate(ctx context.Context, filingID string) (*domain.TaxFiling, error)

	// FindActiveFilingForPeriod returns the non-reversed filing covering exactly [start, end].
	FindActiveFilingForPeriod(ctx context.Context, start, end time.Time) (*domain.TaxFiling, error)

	// SaveFiling persists a new filing.
	SaveFiling(ctx context.Context, filing domain.TaxFiling) error

	// UpdateFiling overwrites status and entry links of a filing.
	UpdateFiling(ctx context.Context, filing domain.TaxFiling) error
}
