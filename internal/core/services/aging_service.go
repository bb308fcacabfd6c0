package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

type agingService struct {
	BaseService
	uow      portsrepo.UnitOfWork
	settings portssvc.SettingsSvcFacade
}

// NewAgingService creates the aging calculator.
func NewAgingService(uow portsrepo.UnitOfWork, settings portssvc.SettingsSvcFacade) portssvc.AgingSvcFacade {
	return &agingService{uow: uow, settings: settings}
}

var _ portssvc.AgingSvcFacade = (*agingService)(nil)

func (s *agingService) Age(ctx context.Context, query domain.AgingQuery) (*domain.AgingReport, error) {
	if !query.Kind.IsValid() {
		return nil, apperrors.NewValidationError("invalid aging kind '%s'", query.Kind)
	}

	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	boundaries := query.Boundaries
	if len(boundaries) == 0 {
		boundaries = settings.AgingBoundaries
	}
	if err := boundaries.Validate(); err != nil {
		return nil, apperrors.NewValidationError("%s", err.Error())
	}
	asOf := query.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	asOf = dateOnly(asOf)

	repos := s.uow.Repositories()
	base, err := minorUnitsOf(ctx, repos, settings.BaseCurrency)
	if err != nil {
		return nil, err
	}
	invoices, err := repos.InvoiceRepo.ListOpenInvoices(ctx, portsrepo.InvoiceFilter{Kind: query.Kind, CounterpartyID: query.CounterpartyID})
	if err != nil {
		return nil, fmt.Errorf("failed to list open invoices: %w", err)
	}

	labels := boundaries.Labels()
	report := &domain.AgingReport{
		Kind:         query.Kind,
		AsOf:         asOf,
		CurrencyCode: settings.BaseCurrency,
		Boundaries:   boundaries,
		Buckets:      emptyBuckets(labels),
		Total:        decimal.Zero,
	}

	perCounterparty := map[string]*domain.CounterpartyAging{}
	for _, inv := range invoices {
		if !inv.IsOpen() || inv.IssueDate.After(asOf) {
			continue
		}
		amount := bookValue(inv, inv.Outstanding, base)
		idx := boundaries.BucketIndex(domain.DaysOverdue(inv.DueDate, asOf))

		addToBucket(&report.Buckets[idx], amount)
		report.Total = report.Total.Add(amount)

		row, ok := perCounterparty[inv.CounterpartyID]
		if !ok {
			row = &domain.CounterpartyAging{
				CounterpartyID: inv.CounterpartyID,
				Buckets:        emptyBuckets(labels),
				Total:          decimal.Zero,
			}
			perCounterparty[inv.CounterpartyID] = row
		}
		addToBucket(&row.Buckets[idx], amount)
		row.Total = row.Total.Add(amount)
	}

	report.Counterparties = make([]domain.CounterpartyAging, 0, len(perCounterparty))
	for _, row := range perCounterparty {
		report.Counterparties = append(report.Counterparties, *row)
	}
	sort.Slice(report.Counterparties, func(i, j int) bool {
		return report.Counterparties[i].CounterpartyID < report.Counterparties[j].CounterpartyID
	})

	s.LogDebug(ctx, "Aging computed",
		slog.String("kind", string(query.Kind)),
		slog.String("as_of", asOf.Format(time.DateOnly)),
		slog.String("total", report.Total.String()))
	return report, nil
}

func emptyBuckets(labels []string) []domain.AgingBucket {
	buckets := make([]domain.AgingBucket, len(labels))
	for i, l := range labels {
		buckets[i] = domain.AgingBucket{Label: l, Amount: decimal.Zero}
	}
	return buckets
}

func addToBucket(b *domain.AgingBucket, amount decimal.Decimal) {
	b.Amount = b.Amount.Add(amount)
	b.Count++
}
