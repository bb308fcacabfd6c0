package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	"github.com/SscSPs/gl_engine/internal/utils/pagination"
)

type journalRepository struct{ v *view }

var _ portsrepo.JournalRepositoryFacade = (*journalRepository)(nil)

func (r *journalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	var out *domain.JournalEntry
	err := r.v.read(func(s *state) error {
		e, ok := s.entries[entryID]
		if !ok {
			return apperrors.NewNotFoundError("journal entry", entryID)
		}
		c := cloneEntry(e)
		out = &c
		return nil
	})
	return out, err
}

func (r *journalRepository) ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	var cursor *pagination.Cursor
	if nextToken != nil && *nextToken != "" {
		c, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		cursor = &c
	}

	var out []domain.JournalEntry
	var next *string
	err := r.v.read(func(s *state) error {
		all := make([]domain.JournalEntry, 0, len(s.entries))
		for _, e := range s.entries {
			if cursor != nil && !cursor.After(e.EntryDate, e.EntryID) {
				continue
			}
			e.Lines = nil
			all = append(all, e)
		}
		sort.Slice(all, func(i, j int) bool {
			if !all[i].EntryDate.Equal(all[j].EntryDate) {
				return all[i].EntryDate.After(all[j].EntryDate)
			}
			return all[i].EntryID > all[j].EntryID
		})
		if len(all) > limit {
			all = all[:limit]
			last := all[len(all)-1]
			token := pagination.EncodeToken(pagination.Cursor{EntryDate: last.EntryDate, EntryID: last.EntryID})
			next = &token
		}
		out = all
		return nil
	})
	return out, next, err
}

func (r *journalRepository) FindPeriodLines(ctx context.Context, start, end time.Time) ([]domain.PeriodLine, error) {
	var out []domain.PeriodLine
	err := r.v.read(func(s *state) error {
		for _, e := range s.entries {
			if e.EntryDate.Before(start) || e.EntryDate.After(end) {
				continue
			}
			for _, l := range e.Lines {
				acc, ok := s.accounts[l.AccountCode]
				if !ok || (acc.AccountType != domain.Income && acc.AccountType != domain.Expense) {
					continue
				}
				out = append(out, domain.PeriodLine{
					EntryID:     e.EntryID,
					EntryDate:   e.EntryDate,
					AccountCode: acc.Code,
					AccountName: acc.Name,
					AccountType: acc.AccountType,
					Debit:       l.Debit,
					Credit:      l.Credit,
					Memo:        l.Memo,
				})
			}
		}
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].EntryDate.Equal(out[j].EntryDate) {
				return out[i].EntryDate.Before(out[j].EntryDate)
			}
			return out[i].EntryID < out[j].EntryID
		})
		return nil
	})
	return out, err
}

func (r *journalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	return r.v.write(func(s *state) error {
		if _, ok := s.entries[entry.EntryID]; ok {
			return apperrors.ErrDuplicate
		}
		s.entries[entry.EntryID] = cloneEntry(entry)
		return nil
	})
}

func (r *journalRepository) UpdateEntryStatusAndLinks(ctx context.Context, entryID string, status domain.EntryStatus, reversingEntryID *string, updatedByUserID string, updatedAt time.Time) error {
	return r.v.write(func(s *state) error {
		e, ok := s.entries[entryID]
		if !ok {
			return apperrors.NewNotFoundError("journal entry", entryID)
		}
		e.Status = status
		e.ReversingEntryID = reversingEntryID
		e.LastUpdatedBy = updatedByUserID
		e.LastUpdatedAt = updatedAt
		s.entries[entryID] = e
		return nil
	})
}

type postingKeyRepository struct{ v *view }

var _ portsrepo.PostingKeyRepository = (*postingKeyRepository)(nil)

func (r *postingKeyRepository) FindForUpdate(ctx context.Context, kind domain.SourceKind, sourceID string) (*domain.PostingRecord, error) {
	var out *domain.PostingRecord
	err := r.v.read(func(s *state) error {
		rec, ok := s.postingKeys[key(string(kind), sourceID)]
		if !ok {
			return apperrors.NewNotFoundError("posting key", sourceID)
		}
		out = &rec
		return nil
	})
	return out, err
}

func (r *postingKeyRepository) Reserve(ctx context.Context, record domain.PostingRecord) (bool, error) {
	inserted := false
	err := r.v.write(func(s *state) error {
		k := key(string(record.SourceKind), record.SourceID)
		if _, ok := s.postingKeys[k]; ok {
			return nil
		}
		s.postingKeys[k] = record
		inserted = true
		return nil
	})
	return inserted, err
}

func (r *postingKeyRepository) Complete(ctx context.Context, kind domain.SourceKind, sourceID, token, fingerprint, entryID string, completedAt time.Time) error {
	return r.v.write(func(s *state) error {
		k := key(string(kind), sourceID)
		rec, ok := s.postingKeys[k]
		if !ok {
			return apperrors.NewNotFoundError("posting key", sourceID)
		}
		if rec.ReservationToken != token || rec.IsCompleted() {
			return fmt.Errorf("%w: reservation for %s %s is no longer held", apperrors.ErrConflict, kind, sourceID)
		}
		id, at := entryID, completedAt
		rec.Fingerprint = fingerprint
		rec.JournalEntryID = &id
		rec.CompletedAt = &at
		s.postingKeys[k] = rec
		return nil
	})
}
