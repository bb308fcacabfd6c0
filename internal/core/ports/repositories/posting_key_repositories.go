package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/gl_engine/internal/core/domain"
)

// PostingKeyRepository persists idempotency records. All calls are expected
// to run inside a unit of work.
type PostingKeyRepository interface {
	// FindForUpdate reads and locks the record for a source document.
	// It returns apperrors.ErrNotFound when the document has never been reserved.
	FindForUpdate(ctx context.Context, kind domain.SourceKind, sourceID string) (*domain.PostingRecord, error)

	// Reserve inserts a new record. It reports false when a record already exists.
	Reserve(ctx context.Context, record domain.PostingRecord) (bool, error)

	// Complete binds the reservation identified by token to an entry.
	Complete(ctx context.Context, kind domain.SourceKind, sourceID, token, fingerprint, entryID string, completedAt time.Time) error
}
