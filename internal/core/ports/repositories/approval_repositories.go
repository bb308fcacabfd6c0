package repositories

import (
	"context"

	"github.com/SscSPs/gl_engine/internal/core/domain"
)

// ApprovalRepositoryFacade stores approval decisions received from the workflow.
type ApprovalRepositoryFacade interface {
	// FindApproval returns the decision for a document or apperrors.ErrNotFound.
	FindApproval(ctx context.Context, kind domain.SourceKind, documentID string) (*domain.Approval, error)

	// SaveApproval inserts or replaces the decision for a document.
	SaveApproval(ctx context.Context, approval domain.Approval) error
}
