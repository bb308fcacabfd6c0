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
	"github.com/SscSPs/gl_engine/internal/dto"
)

// approvalService stores decisions made by the external workflow and
// answers the single question the ledger asks of it.
type approvalService struct {
	BaseService
	uow portsrepo.UnitOfWork
}

// NewApprovalService creates the approval gate.
func NewApprovalService(uow portsrepo.UnitOfWork) portssvc.ApprovalSvcFacade {
	return &approvalService{uow: uow}
}

var _ portssvc.ApprovalSvcFacade = (*approvalService)(nil)

func (s *approvalService) RecordDecision(ctx context.Context, req dto.RecordApprovalRequest, userID string) (*domain.Approval, error) {
	if !req.Status.IsValid() {
		return nil, apperrors.NewValidationError("unknown approval status '%s'", req.Status)
	}

	var approval domain.Approval
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		if err := documentExists(ctx, repos, req.DocumentKind, req.DocumentID); err != nil {
			return err
		}

		now := time.Now().UTC()
		existing, err := repos.ApprovalRepo.FindApproval(ctx, req.DocumentKind, req.DocumentID)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			approval = domain.Approval{
				DocumentKind: req.DocumentKind,
				DocumentID:   req.DocumentID,
				Status:       req.Status,
				Comment:      req.Comment,
				AuditFields:  newAuditFields(userID, now),
			}
		case err != nil:
			return err
		case existing.Status == req.Status:
			approval = *existing
			return nil
		case !existing.Status.CanTransitionTo(req.Status):
			return &apperrors.InvalidStateTransitionError{
				Entity: "approval",
				ID:     fmt.Sprintf("%s/%s", req.DocumentKind, req.DocumentID),
				From:   string(existing.Status),
				To:     string(req.Status),
			}
		default:
			approval = *existing
			approval.Status = req.Status
			approval.Comment = req.Comment
			touch(&approval.AuditFields, userID, now)
		}
		return repos.ApprovalRepo.SaveApproval(ctx, approval)
	})
	if err != nil {
		s.LogRejection(ctx, err, "Failed to record approval decision",
			slog.String("document_kind", string(req.DocumentKind)),
			slog.String("document_id", req.DocumentID))
		return nil, err
	}

	s.LogInfo(ctx, "Approval decision recorded",
		slog.String("document_kind", string(req.DocumentKind)),
		slog.String("document_id", req.DocumentID),
		slog.String("status", string(approval.Status)))
	return &approval, nil
}

func (s *approvalService) GetApproval(ctx context.Context, kind domain.SourceKind, documentID string) (*domain.Approval, error) {
	approval, err := s.uow.Repositories().ApprovalRepo.FindApproval(ctx, kind, documentID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return &domain.Approval{DocumentKind: kind, DocumentID: documentID, Status: domain.ApprovalSkipped}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load approval: %w", err)
	}
	return approval, nil
}

func (s *approvalService) EnsureApproved(ctx context.Context, repos portsrepo.RepositoryProvider, kind domain.SourceKind, documentID string) error {
	approval, err := repos.ApprovalRepo.FindApproval(ctx, kind, documentID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load approval: %w", err)
	}
	if !approval.Status.PermitsPosting() {
		return &apperrors.DocumentNotApprovedError{
			DocumentKind: string(kind),
			DocumentID:   documentID,
			Status:       string(approval.Status),
		}
	}
	return nil
}

func documentExists(ctx context.Context, repos portsrepo.RepositoryProvider, kind domain.SourceKind, id string) error {
	var err error
	switch kind {
	case domain.SourceARInvoice:
		_, err = repos.InvoiceRepo.FindInvoiceByID(ctx, domain.KindAR, id)
	case domain.SourceAPInvoice:
		_, err = repos.InvoiceRepo.FindInvoiceByID(ctx, domain.KindAP, id)
	case domain.SourceAssetCapitalization, domain.SourceAssetDisposal:
		_, err = repos.FixedAssetRepo.FindAssetByID(ctx, id)
	default:
		return apperrors.NewValidationError("documents of kind %s do not take approvals", kind)
	}
	return err
}
