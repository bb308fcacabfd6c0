package services

import (
	"context"
	"time"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	"github.com/SscSPs/gl_engine/internal/dto"
)

// EntryBuilder produces the entry for a document. It is only invoked when
// the idempotency guard lets the posting proceed.
type EntryBuilder func(ctx context.Context) (*domain.JournalEntry, error)

// DocumentPosting is a posting request for a source document.
type DocumentPosting struct {
	Source      domain.SourceRef
	Fingerprint string
	UserID      string
	Build       EntryBuilder
}

// PostingGuard is the idempotency guard.
type PostingGuard interface {
	// CheckAndReserve returns a reservation when the posting may proceed,
	// *apperrors.AlreadyPostedError when an identical posting exists and
	// *apperrors.PostedDocumentMutatedError when the fingerprint differs.
	CheckAndReserve(ctx context.Context, repos portsrepo.RepositoryProvider, source domain.SourceRef, fingerprint string) (*domain.Reservation, error)

	// Complete binds the reservation to the committed entry.
	Complete(ctx context.Context, repos portsrepo.RepositoryProvider, reservation *domain.Reservation, entryID string) error
}

// LedgerReaderSvc defines read operations for journal entries
type LedgerReaderSvc interface {
	// GetEntry retrieves an entry with its lines.
	GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a page of entries.
	ListEntries(ctx context.Context, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error)
}

// LedgerWriterSvc is the ledger posting core.
type LedgerWriterSvc interface {
	// PostInvoice posts an approved draft invoice to the ledger. Re-posting
	// an unchanged invoice returns the original entry with Replayed set.
	PostInvoice(ctx context.Context, kind domain.InvoiceKind, invoiceID string, userID string) (*domain.PostingResult, error)

	// PostManualEntry posts operator-supplied lines in the base currency.
	PostManualEntry(ctx context.Context, req dto.CreateJournalEntryRequest, userID string) (*domain.PostingResult, error)

	// ReverseEntry posts an offsetting entry and marks the original REVERSED.
	ReverseEntry(ctx context.Context, entryID string, userID string) (*domain.PostingResult, error)

	// PostInTx runs a document posting inside the caller's unit of work.
	PostInTx(ctx context.Context, repos portsrepo.RepositoryProvider, posting DocumentPosting) (*domain.PostingResult, error)

	// ReverseInTx reverses an entry inside the caller's unit of work.
	ReverseInTx(ctx context.Context, repos portsrepo.RepositoryProvider, entryID string, date time.Time, userID string) (*domain.PostingResult, error)
}

// LedgerSvcFacade combines all ledger operations.
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
