package dto

import (
	"time"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one operator-supplied line of a manual entry.
type JournalLineRequest struct {
	AccountCode string            `json:"accountCode" binding:"required"`
	Debit       decimal.Decimal   `json:"debit" binding:"gte=0"`
	Credit      decimal.Decimal   `json:"credit" binding:"gte=0"`
	Memo        string            `json:"memo"`
	Dimensions  map[string]string `json:"dimensions"`
}

// CreateJournalEntryRequest defines a manual journal entry.
type CreateJournalEntryRequest struct {
	EntryDate    time.Time            `json:"entryDate" binding:"required"`
	Memo         string               `json:"memo" binding:"required"`
	CurrencyCode string               `json:"currencyCode" binding:"omitempty,len=3,uppercase"` // defaults to the base currency
	Lines        []JournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// ListJournalEntriesParams defines parameters for listing entries.
type ListJournalEntriesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// JournalLineResponse defines the data returned for a line.
type JournalLineResponse struct {
	LineNo           int               `json:"lineNo"`
	AccountCode      string            `json:"accountCode"`
	Role             string            `json:"role,omitempty"`
	Debit            decimal.Decimal   `json:"debit"`
	Credit           decimal.Decimal   `json:"credit"`
	OriginalAmount   *decimal.Decimal  `json:"originalAmount,omitempty"`
	OriginalCurrency *string           `json:"originalCurrency,omitempty"`
	Memo             string            `json:"memo,omitempty"`
	Dimensions       map[string]string `json:"dimensions,omitempty"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID          string                `json:"entryID"`
	EntryDate        time.Time             `json:"entryDate"`
	CurrencyCode     string                `json:"currencyCode"`
	Memo             string                `json:"memo"`
	Status           domain.EntryStatus    `json:"status"`
	SourceKind       domain.SourceKind     `json:"sourceKind"`
	SourceID         string                `json:"sourceID"`
	OriginalEntryID  *string               `json:"originalEntryID,omitempty"`
	ReversingEntryID *string               `json:"reversingEntryID,omitempty"`
	Lines            []JournalLineResponse `json:"lines,omitempty"`
	CreatedAt        time.Time             `json:"createdAt"`
	CreatedBy        string                `json:"createdBy"`
}

// ListJournalEntriesResponse wraps a page of entries.
type ListJournalEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// PostingResponse is the success shape of every posting endpoint, whether
// the entry was created now or replayed.
type PostingResponse struct {
	EntryID  string               `json:"entryID"`
	Replayed bool                 `json:"replayed"`
	Entry    JournalEntryResponse `json:"entry"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to its DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	resp := JournalEntryResponse{
		EntryID:          e.EntryID,
		EntryDate:        e.EntryDate,
		CurrencyCode:     e.CurrencyCode,
		Memo:             e.Memo,
		Status:           e.Status,
		SourceKind:       e.Source.Kind,
		SourceID:         e.Source.ID,
		OriginalEntryID:  e.OriginalEntryID,
		ReversingEntryID: e.ReversingEntryID,
		CreatedAt:        e.CreatedAt,
		CreatedBy:        e.CreatedBy,
	}
	if len(e.Lines) > 0 {
		resp.Lines = make([]JournalLineResponse, len(e.Lines))
		for i, l := range e.Lines {
			resp.Lines[i] = JournalLineResponse{
				LineNo:           l.LineNo,
				AccountCode:      l.AccountCode,
				Role:             string(l.Role),
				Debit:            l.Debit,
				Credit:           l.Credit,
				OriginalAmount:   l.OriginalAmount,
				OriginalCurrency: l.OriginalCurrency,
				Memo:             l.Memo,
				Dimensions:       l.Dimensions,
			}
		}
	}
	return resp
}

// ToPostingResponse converts a domain.PostingResult to its DTO.
func ToPostingResponse(r *domain.PostingResult) PostingResponse {
	return PostingResponse{
		EntryID:  r.Entry.EntryID,
		Replayed: r.Replayed,
		Entry:    ToJournalEntryResponse(r.Entry),
	}
}
