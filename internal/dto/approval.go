package dto

import "github.com/SscSPs/gl_engine/internal/core/domain"

// RecordApprovalRequest records a workflow decision for a document.
type RecordApprovalRequest struct {
	DocumentKind domain.SourceKind     `json:"documentKind" binding:"required,oneof=INVOICE_AR INVOICE_AP ASSET_CAPITALIZATION ASSET_DISPOSAL"`
	DocumentID   string                `json:"documentID" binding:"required"`
	Status       domain.ApprovalStatus `json:"status" binding:"required,oneof=PENDING IN_PROGRESS APPROVED REJECTED CANCELLED SKIPPED"`
	Comment      string                `json:"comment"`
}
