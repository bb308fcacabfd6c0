package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/google/uuid"
)

// postingGuard implements check-and-reserve on posting_keys. It must run
// inside the same unit of work as the entry it protects so that the
// reservation and the entry commit or roll back together.
type postingGuard struct {
	BaseService
}

// NewPostingGuard creates the idempotency guard.
func NewPostingGuard() portssvc.PostingGuard {
	return &postingGuard{}
}

var _ portssvc.PostingGuard = (*postingGuard)(nil)

func (g *postingGuard) CheckAndReserve(ctx context.Context, repos portsrepo.RepositoryProvider, source domain.SourceRef, fingerprint string) (*domain.Reservation, error) {
	if source.ID == "" || fingerprint == "" {
		return nil, apperrors.NewValidationError("posting source and fingerprint are required")
	}

	record, err := repos.PostingKeyRepo.FindForUpdate(ctx, source.Kind, source.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		token := uuid.NewString()
		inserted, err := repos.PostingKeyRepo.Reserve(ctx, domain.PostingRecord{
			SourceKind:       source.Kind,
			SourceID:         source.ID,
			Fingerprint:      fingerprint,
			ReservationToken: token,
			ReservedAt:       time.Now().UTC(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to reserve posting key: %w", err)
		}
		if inserted {
			return &domain.Reservation{Source: source, Fingerprint: fingerprint, Token: token}, nil
		}
		// A concurrent request inserted first; its row is committed once Reserve returns.
		record, err = repos.PostingKeyRepo.FindForUpdate(ctx, source.Kind, source.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to re-read posting key: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read posting key: %w", err)
	}

	if record.IsCompleted() {
		if record.Fingerprint == fingerprint {
			g.LogDebug(ctx, "Posting already performed",
				slog.String("source_kind", string(source.Kind)),
				slog.String("source_id", source.ID),
				slog.String("entry_id", *record.JournalEntryID))
			return nil, &apperrors.AlreadyPostedError{SourceKind: string(source.Kind), SourceID: source.ID, EntryID: *record.JournalEntryID}
		}
		return nil, &apperrors.PostedDocumentMutatedError{SourceKind: string(source.Kind), SourceID: source.ID, EntryID: *record.JournalEntryID}
	}

	// An uncompleted reservation left by a failed Complete; take it over.
	return &domain.Reservation{Source: source, Fingerprint: fingerprint, Token: record.ReservationToken}, nil
}

func (g *postingGuard) Complete(ctx context.Context, repos portsrepo.RepositoryProvider, reservation *domain.Reservation, entryID string) error {
	if reservation == nil {
		return fmt.Errorf("%w: no reservation to complete", apperrors.ErrInternal)
	}
	err := repos.PostingKeyRepo.Complete(ctx, reservation.Source.Kind, reservation.Source.ID, reservation.Token, reservation.Fingerprint, entryID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to complete posting key: %w", err)
	}
	return nil
}
