package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxPaymentRepository struct {
	BaseRepository
}

var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

const paymentColumns = `
	payment_id, kind, counterparty_id, payment_date, amount, currency_code, bank_account_code,
	reference, status, unallocated, journal_entry_id,
	created_at, created_by, last_updated_at, last_updated_by`

const allocationInsert = `
	INSERT INTO payment_allocations (
		allocation_id, payment_id, invoice_id, line_no, amount, settled_amount,
		posting_base, settlement_base, fx_difference
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`

func (r *PgxPaymentRepository) SavePayment(ctx context.Context, p domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	batch := &pgx.Batch{}
	batch.Queue(query,
		p.PaymentID, p.Kind, p.CounterpartyID, p.PaymentDate, p.Amount, p.CurrencyCode,
		p.BankAccountCode, p.Reference, p.Status, p.Unallocated, p.JournalEntryID,
		p.CreatedAt, p.CreatedBy, p.LastUpdatedAt, p.LastUpdatedBy,
	)
	queueAllocations(batch, p)

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return saveErr(err, "payment", p.PaymentID)
	}
	return nil
}

// UpdatePayment rewrites the header and replaces the allocation set.
func (r *PgxPaymentRepository) UpdatePayment(ctx context.Context, p domain.Payment) error {
	query := `
		UPDATE payments
		SET counterparty_id = $3, payment_date = $4, amount = $5, currency_code = $6,
		    bank_account_code = $7, reference = $8, status = $9, unallocated = $10,
		    journal_entry_id = $11, last_updated_at = $12, last_updated_by = $13
		WHERE kind = $1 AND payment_id = $2;
	`
	tag, err := r.db.Exec(ctx, query,
		p.Kind, p.PaymentID,
		p.CounterpartyID, p.PaymentDate, p.Amount, p.CurrencyCode,
		p.BankAccountCode, p.Reference, p.Status, p.Unallocated,
		p.JournalEntryID, p.LastUpdatedAt, p.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment %s: %w", p.PaymentID, err)
	}
	if err := expectOne(tag, "payment", p.PaymentID); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM payment_allocations WHERE payment_id = $1;`, p.PaymentID)
	queueAllocations(batch, p)
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to replace allocations of payment %s: %w", p.PaymentID, err)
	}
	return nil
}

func queueAllocations(batch *pgx.Batch, p domain.Payment) {
	for _, a := range p.Allocations {
		batch.Queue(allocationInsert,
			a.AllocationID, p.PaymentID, a.InvoiceID, a.LineNo, a.Amount, a.SettledAmount,
			a.PostingBase, a.SettlementBase, a.FXDifference,
		)
	}
}

func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, kind domain.InvoiceKind, paymentID string) (*domain.Payment, error) {
	return r.find(ctx, kind, paymentID, "")
}

func (r *PgxPaymentRepository) FindPaymentForUpdate(ctx context.Context, kind domain.InvoiceKind, paymentID string) (*domain.Payment, error) {
	return r.find(ctx, kind, paymentID, "FOR UPDATE")
}

func (r *PgxPaymentRepository) find(ctx context.Context, kind domain.InvoiceKind, paymentID, lock string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE kind = $1 AND payment_id = $2 ` + lock + `;`
	var p domain.Payment
	err := r.db.QueryRow(ctx, query, kind, paymentID).Scan(
		&p.PaymentID,
		&p.Kind,
		&p.CounterpartyID,
		&p.PaymentDate,
		&p.Amount,
		&p.CurrencyCode,
		&p.BankAccountCode,
		&p.Reference,
		&p.Status,
		&p.Unallocated,
		&p.JournalEntryID,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		return nil, notFound(err, "payment", paymentID)
	}

	allocations, err := r.findAllocations(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	p.Allocations = allocations
	return &p, nil
}

func (r *PgxPaymentRepository) findAllocations(ctx context.Context, paymentID string) ([]domain.PaymentAllocation, error) {
	query := `
		SELECT allocation_id, payment_id, invoice_id, line_no, amount, settled_amount,
		       posting_base, settlement_base, fx_difference
		FROM payment_allocations
		WHERE payment_id = $1
		ORDER BY line_no;
	`
	rows, err := r.db.Query(ctx, query, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations of payment %s: %w", paymentID, err)
	}
	defer rows.Close()

	var out []domain.PaymentAllocation
	for rows.Next() {
		var a domain.PaymentAllocation
		if err := rows.Scan(&a.AllocationID, &a.PaymentID, &a.InvoiceID, &a.LineNo, &a.Amount, &a.SettledAmount,
			&a.PostingBase, &a.SettlementBase, &a.FXDifference); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
