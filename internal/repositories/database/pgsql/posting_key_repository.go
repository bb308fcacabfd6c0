package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
)

// PgxPostingKeyRepository stores one row per posted source document. The
// primary key on (source_kind, source_id) is what makes postings idempotent
// across processes.
type PgxPostingKeyRepository struct {
	BaseRepository
}

var _ portsrepo.PostingKeyRepository = (*PgxPostingKeyRepository)(nil)

// FindForUpdate reads and row-locks the record for a source.
func (r *PgxPostingKeyRepository) FindForUpdate(ctx context.Context, kind domain.SourceKind, sourceID string) (*domain.PostingRecord, error) {
	query := `
		SELECT source_kind, source_id, fingerprint, journal_entry_id, reservation_token, reserved_at, completed_at
		FROM posting_keys
		WHERE source_kind = $1 AND source_id = $2
		FOR UPDATE;
	`
	var rec domain.PostingRecord
	err := r.db.QueryRow(ctx, query, kind, sourceID).Scan(
		&rec.SourceKind,
		&rec.SourceID,
		&rec.Fingerprint,
		&rec.JournalEntryID,
		&rec.ReservationToken,
		&rec.ReservedAt,
		&rec.CompletedAt,
	)
	if err != nil {
		return nil, notFound(err, "posting key", sourceID)
	}
	return &rec, nil
}

// Reserve inserts the record unless one exists. A concurrent reservation of
// the same source blocks on the key until the other transaction ends, then
// reports false.
func (r *PgxPostingKeyRepository) Reserve(ctx context.Context, record domain.PostingRecord) (bool, error) {
	query := `
		INSERT INTO posting_keys (source_kind, source_id, fingerprint, reservation_token, reserved_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source_kind, source_id) DO NOTHING;
	`
	tag, err := r.db.Exec(ctx, query,
		record.SourceKind,
		record.SourceID,
		record.Fingerprint,
		record.ReservationToken,
		record.ReservedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to reserve posting key %s %s: %w", record.SourceKind, record.SourceID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// Complete binds the reservation to its entry. It only succeeds for the
// holder of the reservation token.
func (r *PgxPostingKeyRepository) Complete(ctx context.Context, kind domain.SourceKind, sourceID, token, fingerprint, entryID string, completedAt time.Time) error {
	query := `
		UPDATE posting_keys
		SET fingerprint = $4, journal_entry_id = $5, completed_at = $6
		WHERE source_kind = $1 AND source_id = $2 AND reservation_token = $3 AND journal_entry_id IS NULL;
	`
	tag, err := r.db.Exec(ctx, query, kind, sourceID, token, fingerprint, entryID, completedAt)
	if err != nil {
		return fmt.Errorf("failed to complete posting key %s %s: %w", kind, sourceID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: reservation for %s %s is no longer held", apperrors.ErrConflict, kind, sourceID)
	}
	return nil
}
