package domain

// ApprovalStatus is the decision state reported by the external workflow.
type ApprovalStatus string

const (
	ApprovalPending    ApprovalStatus = "PENDING"
	ApprovalInProgress ApprovalStatus = "IN_PROGRESS"
	ApprovalApproved   ApprovalStatus = "APPROVED"
	ApprovalRejected   ApprovalStatus = "REJECTED"
	ApprovalCancelled  ApprovalStatus = "CANCELLED"
	ApprovalSkipped    ApprovalStatus = "SKIPPED"
)

var approvalTransitions = map[ApprovalStatus][]ApprovalStatus{
	ApprovalPending:    {ApprovalInProgress, ApprovalApproved, ApprovalRejected, ApprovalCancelled, ApprovalSkipped},
	ApprovalInProgress: {ApprovalApproved, ApprovalRejected, ApprovalCancelled},
	ApprovalRejected:   {ApprovalPending},
	ApprovalCancelled:  {ApprovalPending},
}

// IsValid reports whether s is a known approval status.
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPending, ApprovalInProgress, ApprovalApproved, ApprovalRejected, ApprovalCancelled, ApprovalSkipped:
		return true
	}
	return false
}

// CanTransitionTo reports whether the workflow may move from s to next.
// APPROVED and SKIPPED are terminal.
func (s ApprovalStatus) CanTransitionTo(next ApprovalStatus) bool {
	for _, allowed := range approvalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PermitsPosting reports whether a document in this state may be posted.
func (s ApprovalStatus) PermitsPosting() bool {
	return s == ApprovalApproved || s == ApprovalSkipped
}

// Approval is the latest workflow decision for a document. Documents with no
// approval record are treated as SKIPPED.
type Approval struct {
	DocumentKind SourceKind     `json:"documentKind"`
	DocumentID   string         `json:"documentID"`
	Status       ApprovalStatus `json:"status"`
	Comment      string         `json:"comment,omitempty"`
	AuditFields
}
