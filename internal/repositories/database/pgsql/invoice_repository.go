package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxInvoiceRepository struct {
	BaseRepository
}

var _ portsrepo.InvoiceRepositoryFacade = (*PgxInvoiceRepository)(nil)

const invoiceColumns = `
	invoice_id, kind, number, counterparty_id, currency_code, issue_date, due_date, description,
	subtotal, tax_rate, tax_amount, total, tax_inclusive, outstanding, status, posted,
	posting_rate, base_total, journal_entry_id,
	created_at, created_by, last_updated_at, last_updated_by`

func scanInvoice(row pgx.Row) (domain.Invoice, error) {
	var inv domain.Invoice
	err := row.Scan(
		&inv.InvoiceID,
		&inv.Kind,
		&inv.Number,
		&inv.CounterpartyID,
		&inv.CurrencyCode,
		&inv.IssueDate,
		&inv.DueDate,
		&inv.Description,
		&inv.Subtotal,
		&inv.TaxRate,
		&inv.TaxAmount,
		&inv.Total,
		&inv.TaxInclusive,
		&inv.Outstanding,
		&inv.Status,
		&inv.Posted,
		&inv.PostingRate,
		&inv.BaseTotal,
		&inv.JournalEntryID,
		&inv.CreatedAt,
		&inv.CreatedBy,
		&inv.LastUpdatedAt,
		&inv.LastUpdatedBy,
	)
	return inv, err
}

func collectInvoices(rows pgx.Rows) ([]domain.Invoice, error) {
	defer rows.Close()
	var out []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice row: %w", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice rows: %w", err)
	}
	return out, nil
}

func (r *PgxInvoiceRepository) SaveInvoice(ctx context.Context, inv domain.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23);
	`
	_, err := r.db.Exec(ctx, query,
		inv.InvoiceID, inv.Kind, inv.Number, inv.CounterpartyID, inv.CurrencyCode,
		inv.IssueDate, inv.DueDate, inv.Description,
		inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.Total, inv.TaxInclusive,
		inv.Outstanding, inv.Status, inv.Posted,
		inv.PostingRate, inv.BaseTotal, inv.JournalEntryID,
		inv.CreatedAt, inv.CreatedBy, inv.LastUpdatedAt, inv.LastUpdatedBy,
	)
	if err != nil {
		return saveErr(err, "invoice", inv.InvoiceID)
	}
	return nil
}

func (r *PgxInvoiceRepository) UpdateInvoice(ctx context.Context, inv domain.Invoice) error {
	query := `
		UPDATE invoices
		SET number = $3, counterparty_id = $4, currency_code = $5, issue_date = $6, due_date = $7,
		    description = $8, subtotal = $9, tax_rate = $10, tax_amount = $11, total = $12,
		    tax_inclusive = $13, outstanding = $14, status = $15, posted = $16,
		    posting_rate = $17, base_total = $18, journal_entry_id = $19,
		    last_updated_at = $20, last_updated_by = $21
		WHERE kind = $1 AND invoice_id = $2;
	`
	tag, err := r.db.Exec(ctx, query,
		inv.Kind, inv.InvoiceID,
		inv.Number, inv.CounterpartyID, inv.CurrencyCode, inv.IssueDate, inv.DueDate,
		inv.Description, inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.Total,
		inv.TaxInclusive, inv.Outstanding, inv.Status, inv.Posted,
		inv.PostingRate, inv.BaseTotal, inv.JournalEntryID,
		inv.LastUpdatedAt, inv.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice %s: %w", inv.InvoiceID, err)
	}
	return expectOne(tag, "invoice", inv.InvoiceID)
}

func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, kind domain.InvoiceKind, invoiceID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE kind = $1 AND invoice_id = $2;`
	inv, err := scanInvoice(r.db.QueryRow(ctx, query, kind, invoiceID))
	if err != nil {
		return nil, notFound(err, "invoice", invoiceID)
	}
	return &inv, nil
}

func (r *PgxInvoiceRepository) FindInvoiceForUpdate(ctx context.Context, kind domain.InvoiceKind, invoiceID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE kind = $1 AND invoice_id = $2 FOR UPDATE;`
	inv, err := scanInvoice(r.db.QueryRow(ctx, query, kind, invoiceID))
	if err != nil {
		return nil, notFound(err, "invoice", invoiceID)
	}
	return &inv, nil
}

// FindInvoicesForUpdate locks the invoices in id order so that two payments
// touching overlapping invoices cannot deadlock.
func (r *PgxInvoiceRepository) FindInvoicesForUpdate(ctx context.Context, kind domain.InvoiceKind, invoiceIDs []string) (map[string]domain.Invoice, error) {
	out := make(map[string]domain.Invoice, len(invoiceIDs))
	if len(invoiceIDs) == 0 {
		return out, nil
	}
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE kind = $1 AND invoice_id = ANY($2)
		ORDER BY invoice_id
		FOR UPDATE;
	`
	rows, err := r.db.Query(ctx, query, kind, invoiceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock invoices: %w", err)
	}
	invoices, err := collectInvoices(rows)
	if err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		out[inv.InvoiceID] = inv
	}
	return out, nil
}

// ListOpenInvoices returns posted invoices with an outstanding balance,
// earliest due first.
func (r *PgxInvoiceRepository) ListOpenInvoices(ctx context.Context, filter portsrepo.InvoiceFilter) ([]domain.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE kind = $1 AND posted AND outstanding > 0
		  AND ($2 = '' OR counterparty_id = $2)
		ORDER BY due_date, invoice_id;
	`
	rows, err := r.db.Query(ctx, query, filter.Kind, filter.CounterpartyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open invoices: %w", err)
	}
	return collectInvoices(rows)
}
