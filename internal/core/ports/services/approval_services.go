package services

import (
	"context"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	"github.com/SscSPs/gl_engine/internal/dto"
)

// ApprovalSvcFacade records workflow decisions and gates postings on them.
type ApprovalSvcFacade interface {
	// RecordDecision stores a decision after checking the transition is allowed.
	RecordDecision(ctx context.Context, req dto.RecordApprovalRequest, userID string) (*domain.Approval, error)

	// GetApproval returns the decision for a document. Missing records read as SKIPPED.
	GetApproval(ctx context.Context, kind domain.SourceKind, documentID string) (*domain.Approval, error)

	// EnsureApproved fails with *apperrors.DocumentNotApprovedError unless the document may be posted.
	EnsureApproved(ctx context.Context, repos portsrepo.RepositoryProvider, kind domain.SourceKind, documentID string) error
}
