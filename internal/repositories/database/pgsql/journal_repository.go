package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	"github.com/SscSPs/gl_engine/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
)

type PgxJournalRepository struct {
	BaseRepository
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

const journalEntryColumns = `
	entry_id, entry_date, currency_code, memo, status, source_kind, source_id,
	original_entry_id, reversing_entry_id,
	created_at, created_by, last_updated_at, last_updated_by`

func scanEntry(row pgx.Row) (domain.JournalEntry, error) {
	var e domain.JournalEntry
	err := row.Scan(
		&e.EntryID,
		&e.EntryDate,
		&e.CurrencyCode,
		&e.Memo,
		&e.Status,
		&e.Source.Kind,
		&e.Source.ID,
		&e.OriginalEntryID,
		&e.ReversingEntryID,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	return e, err
}

// SaveEntry inserts the entry header and queues its lines in one batch.
// Lines are never updated afterwards; the schema rejects it.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	headerQuery := `
		INSERT INTO journal_entries (` + journalEntryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	lineQuery := `
		INSERT INTO journal_lines (
			line_id, entry_id, line_no, account_code, role, debit, credit,
			original_amount, original_currency, memo, dimensions
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`

	batch := &pgx.Batch{}
	batch.Queue(headerQuery,
		entry.EntryID,
		entry.EntryDate,
		entry.CurrencyCode,
		entry.Memo,
		entry.Status,
		entry.Source.Kind,
		entry.Source.ID,
		entry.OriginalEntryID,
		entry.ReversingEntryID,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	for _, l := range entry.Lines {
		var role *string
		if l.Role != "" {
			s := string(l.Role)
			role = &s
		}
		batch.Queue(lineQuery,
			l.LineID,
			entry.EntryID,
			l.LineNo,
			l.AccountCode,
			role,
			l.Debit,
			l.Credit,
			l.OriginalAmount,
			l.OriginalCurrency,
			l.Memo,
			dimensionsOrEmpty(l.Dimensions),
		)
	}

	// Close reports the first failing statement of the batch.
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return saveErr(err, "journal entry", entry.EntryID)
	}
	return nil
}

func dimensionsOrEmpty(d map[string]string) map[string]string {
	if d == nil {
		return map[string]string{}
	}
	return d
}

// FindEntryByID retrieves an entry together with its lines.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalEntryColumns + ` FROM journal_entries WHERE entry_id = $1;`
	entry, err := scanEntry(r.db.QueryRow(ctx, query, entryID))
	if err != nil {
		return nil, notFound(err, "journal entry", entryID)
	}

	lines, err := r.findLines(ctx, entryID)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines
	return &entry, nil
}

func (r *PgxJournalRepository) findLines(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `
		SELECT line_id, entry_id, line_no, account_code, COALESCE(role, ''), debit, credit,
		       original_amount, original_currency, memo, COALESCE(dimensions, '{}'::jsonb)
		FROM journal_lines
		WHERE entry_id = $1
		ORDER BY line_no;
	`
	rows, err := r.db.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines of entry %s: %w", entryID, err)
	}
	defer rows.Close()

	var lines []domain.JournalLine
	for rows.Next() {
		var l domain.JournalLine
		if err := rows.Scan(
			&l.LineID,
			&l.EntryID,
			&l.LineNo,
			&l.AccountCode,
			&l.Role,
			&l.Debit,
			&l.Credit,
			&l.OriginalAmount,
			&l.OriginalCurrency,
			&l.Memo,
			&l.Dimensions,
		); err != nil {
			return nil, fmt.Errorf("failed to scan journal line: %w", err)
		}
		if len(l.Dimensions) == 0 {
			l.Dimensions = nil
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal lines: %w", err)
	}
	return lines, nil
}

// ListEntries returns entry headers newest first, keyset-paginated on
// (entry_date, entry_id).
func (r *PgxJournalRepository) ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	args := []any{limit + 1}
	where := ""
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		where = `WHERE (entry_date, entry_id) < ($2, $3)`
		args = append(args, cursor.EntryDate, cursor.EntryID)
	}

	query := `
		SELECT ` + journalEntryColumns + `
		FROM journal_entries
		` + where + `
		ORDER BY entry_date DESC, entry_id DESC
		LIMIT $1;
	`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating journal entries: %w", err)
	}

	var next *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		token := pagination.EncodeToken(pagination.Cursor{EntryDate: last.EntryDate, EntryID: last.EntryID})
		next = &token
	}
	return entries, next, nil
}

// FindPeriodLines returns income and expense lines of entries dated within
// [start, end], reversed entries and their reversals included.
func (r *PgxJournalRepository) FindPeriodLines(ctx context.Context, start, end time.Time) ([]domain.PeriodLine, error) {
	query := `
		SELECT e.entry_id, e.entry_date, a.code, a.name, a.account_type, l.debit, l.credit, l.memo
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		JOIN accounts a ON a.code = l.account_code
		WHERE e.entry_date BETWEEN $1 AND $2
		  AND a.account_type IN ('INCOME', 'EXPENSE')
		ORDER BY e.entry_date, e.entry_id, l.line_no;
	`
	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query period lines: %w", err)
	}
	defer rows.Close()

	var out []domain.PeriodLine
	for rows.Next() {
		var pl domain.PeriodLine
		if err := rows.Scan(&pl.EntryID, &pl.EntryDate, &pl.AccountCode, &pl.AccountName, &pl.AccountType, &pl.Debit, &pl.Credit, &pl.Memo); err != nil {
			return nil, fmt.Errorf("failed to scan period line: %w", err)
		}
		out = append(out, pl)
	}
	return out, rows.Err()
}

// UpdateEntryStatusAndLinks changes the header only.
func (r *PgxJournalRepository) UpdateEntryStatusAndLinks(ctx context.Context, entryID string, status domain.EntryStatus, reversingEntryID *string, updatedByUserID string, updatedAt time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = $2, reversing_entry_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE entry_id = $1;
	`
	tag, err := r.db.Exec(ctx, query, entryID, status, reversingEntryID, updatedAt, updatedByUserID)
	if err != nil {
		return fmt.Errorf("failed to update journal entry %s: %w", entryID, err)
	}
	return expectOne(tag, "journal entry", entryID)
}
