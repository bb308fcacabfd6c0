package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxTaxFilingRepository struct {
	BaseRepository
}

var _ portsrepo.TaxFilingRepositoryFacade = (*PgxTaxFilingRepository)(nil)

const taxFilingColumns = `
	filing_id, period_start, period_end, tax_rate, income, expense, taxable_income, tax_amount,
	status, journal_entry_id, reversal_entry_id,
	created_at, created_by, last_updated_at, last_updated_by`

func scanTaxFiling(row pgx.Row) (domain.TaxFiling, error) {
	var f domain.TaxFiling
	err := row.Scan(
		&f.FilingID,
		&f.PeriodStart,
		&f.PeriodEnd,
		&f.TaxRate,
		&f.Income,
		&f.Expense,
		&f.TaxableIncome,
		&f.TaxAmount,
		&f.Status,
		&f.JournalEntryID,
		&f.ReversalEntryID,
		&f.CreatedAt,
		&f.CreatedBy,
		&f.LastUpdatedAt,
		&f.LastUpdatedBy,
	)
	return f, err
}

// SaveFiling inserts a filing. The partial unique index on the period
// rejects a second filing that is not reversed.
func (r *PgxTaxFilingRepository) SaveFiling(ctx context.Context, f domain.TaxFiling) error {
	query := `
		INSERT INTO tax_filings (` + taxFilingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.db.Exec(ctx, query,
		f.FilingID, f.PeriodStart, f.PeriodEnd, f.TaxRate, f.Income, f.Expense, f.TaxableIncome, f.TaxAmount,
		f.Status, f.JournalEntryID, f.ReversalEntryID,
		f.CreatedAt, f.CreatedBy, f.LastUpdatedAt, f.LastUpdatedBy,
	)
	if err != nil {
		return saveErr(err, "tax filing", f.FilingID)
	}
	return nil
}

func (r *PgxTaxFilingRepository) UpdateFiling(ctx context.Context, f domain.TaxFiling) error {
	query := `
		UPDATE tax_filings
		SET status = $2, journal_entry_id = $3, reversal_entry_id = $4, last_updated_at = $5, last_updated_by = $6
		WHERE filing_id = $1;
	`
	tag, err := r.db.Exec(ctx, query, f.FilingID, f.Status, f.JournalEntryID, f.ReversalEntryID, f.LastUpdatedAt, f.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update tax filing %s: %w", f.FilingID, err)
	}
	return expectOne(tag, "tax filing", f.FilingID)
}

func (r *PgxTaxFilingRepository) FindFilingByID(ctx context.Context, filingID string) (*domain.TaxFiling, error) {
	query := `SELECT ` + taxFilingColumns + ` FROM tax_filings WHERE filing_id = $1;`
	f, err := scanTaxFiling(r.db.QueryRow(ctx, query, filingID))
	if err != nil {
		return nil, notFound(err, "tax filing", filingID)
	}
	return &f, nil
}

func (r *PgxTaxFilingRepository) FindFilingForUpdate(ctx context.Context, filingID string) (*domain.TaxFiling, error) {
	query := `SELECT ` + taxFilingColumns + ` FROM tax_filings WHERE filing_id = $1 FOR UPDATE;`
	f, err := scanTaxFiling(r.db.QueryRow(ctx, query, filingID))
	if err != nil {
		return nil, notFound(err, "tax filing", filingID)
	}
	return &f, nil
}

// FindActiveFilingForPeriod locks the filing of the exact period that has not
// been reversed.
func (r *PgxTaxFilingRepository) FindActiveFilingForPeriod(ctx context.Context, start, end time.Time) (*domain.TaxFiling, error) {
	query := `
		SELECT ` + taxFilingColumns + `
		FROM tax_filings
		WHERE period_start = $1 AND period_end = $2 AND status <> 'REVERSED'
		FOR UPDATE;
	`
	f, err := scanTaxFiling(r.db.QueryRow(ctx, query, start, end))
	if err != nil {
		return nil, notFound(err, "tax filing", start.Format(time.DateOnly))
	}
	return &f, nil
}
