package domain

import "time"

// PostingRecord is the idempotency ledger row for one source document.
type PostingRecord struct {
	SourceKind       SourceKind `json:"sourceKind"`
	SourceID         string     `json:"sourceID"`
	Fingerprint      string     `json:"fingerprint"`
	JournalEntryID   *string    `json:"journalEntryID,omitempty"`
	ReservationToken string     `json:"reservationToken"`
	ReservedAt       time.Time  `json:"reservedAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

// IsCompleted reports whether the record has been bound to an entry.
func (r PostingRecord) IsCompleted() bool {
	return r.JournalEntryID != nil && *r.JournalEntryID != ""
}

// Reservation is handed out when a posting may proceed.
type Reservation struct {
	Source      SourceRef
	Fingerprint string
	Token       string
}
