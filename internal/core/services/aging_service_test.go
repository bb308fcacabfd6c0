package services_test

import (
	"testing"
	"time"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var agingAsOf = date(2024, 6, 30)

// agingBook posts a receivables book with one balance in every default bucket.
func agingBook(t *testing.T) *engine {
	t.Helper()
	e := newEngine(t)
	e.rate(t, "USD", "3.6725", date(2024, 1, 1))

	due := func(daysOverdue int) time.Time { return agingAsOf.AddDate(0, 0, -daysOverdue) }
	post := func(number, counterparty, currency, amount string, dueOn time.Time) *domain.Invoice {
		return e.postedInvoice(t, invoiceSpec{
			kind:         domain.KindAR,
			number:       number,
			counterparty: counterparty,
			currency:     currency,
			amount:       amount,
			issue:        dueOn.AddDate(0, 0, -30),
			due:          dueOn,
		})
	}

	post("A-CUR", "cust-1", baseCurrency, "100", agingAsOf.AddDate(0, 0, 15))
	post("A-10", "cust-1", baseCurrency, "200", due(10))
	post("A-10-USD", "cust-1", "USD", "100", due(10))
	post("A-45", "cust-1", baseCurrency, "300", due(45))
	post("A-75", "cust-2", baseCurrency, "400", due(75))
	partial := post("A-120", "cust-1", baseCurrency, "500", due(120))
	settled := post("A-PAID", "cust-1", baseCurrency, "50", due(20))
	// issued after the report date
	post("A-FUTURE", "cust-1", baseCurrency, "999", agingAsOf.AddDate(0, 0, 35))

	_, err := e.receipt(t, domain.KindAR, baseCurrency, "250", date(2024, 6, 15), true,
		alloc(partial.InvoiceID, "200"), alloc(settled.InvoiceID, "50"))
	require.NoError(t, err)
	return e
}

type bucketView struct {
	Label  string
	Amount string
	Count  int
}

func bucketsOf(buckets []domain.AgingBucket) []bucketView {
	out := make([]bucketView, len(buckets))
	for i, b := range buckets {
		out[i] = bucketView{Label: b.Label, Amount: b.Amount.StringFixed(2), Count: b.Count}
	}
	return out
}

func TestAging_DefaultBoundaries(t *testing.T) {
	e := agingBook(t)

	report, err := e.svc.Aging.Age(e.ctx, domain.AgingQuery{Kind: domain.KindAR, AsOf: agingAsOf})
	require.NoError(t, err)

	assert.Equal(t, domain.AgingBoundaries{0, 30, 60, 90}, report.Boundaries)
	assert.Equal(t, baseCurrency, report.CurrencyCode)
	assert.Equal(t, []bucketView{
		{"current", "100.00", 1},
		{"1-30", "567.25", 2},
		{"31-60", "300.00", 1},
		{"61-90", "400.00", 1},
		{"90+", "300.00", 1},
	}, bucketsOf(report.Buckets))
	assert.Equal(t, "1667.25", report.Total.StringFixed(2))

	sum := report.Buckets[0].Amount
	for _, b := range report.Buckets[1:] {
		sum = sum.Add(b.Amount)
	}
	assert.True(t, sum.Equal(report.Total))

	require.Len(t, report.Counterparties, 2)
	assert.Equal(t, "cust-1", report.Counterparties[0].CounterpartyID)
	assert.Equal(t, "1267.25", report.Counterparties[0].Total.StringFixed(2))
	assert.Equal(t, "cust-2", report.Counterparties[1].CounterpartyID)
	assert.Equal(t, "400.00", report.Counterparties[1].Total.StringFixed(2))
}

func TestAging_CounterpartyFilter(t *testing.T) {
	e := agingBook(t)

	report, err := e.svc.Aging.Age(e.ctx, domain.AgingQuery{Kind: domain.KindAR, CounterpartyID: "cust-2", AsOf: agingAsOf})
	require.NoError(t, err)

	assert.Equal(t, "400.00", report.Total.StringFixed(2))
	assert.Equal(t, 1, report.Buckets[3].Count)
	require.Len(t, report.Counterparties, 1)
	assert.Equal(t, "cust-2", report.Counterparties[0].CounterpartyID)
}

func TestAging_CustomBoundaries(t *testing.T) {
	e := agingBook(t)

	report, err := e.svc.Aging.Age(e.ctx, domain.AgingQuery{Kind: domain.KindAR, AsOf: agingAsOf, Boundaries: domain.AgingBoundaries{0, 30}})
	require.NoError(t, err)

	assert.Equal(t, []bucketView{
		{"current", "100.00", 1},
		{"1-30", "567.25", 2},
		{"30+", "1000.00", 3},
	}, bucketsOf(report.Buckets))
}

func TestAging_PayablesAreSeparate(t *testing.T) {
	e := agingBook(t)

	report, err := e.svc.Aging.Age(e.ctx, domain.AgingQuery{Kind: domain.KindAP, AsOf: agingAsOf})
	require.NoError(t, err)
	assert.True(t, report.Total.IsZero())
	assert.Empty(t, report.Counterparties)
	assert.Len(t, report.Buckets, 5)
}

func TestAging_UsesConfiguredBoundaries(t *testing.T) {
	e := agingBook(t)
	_, err := e.svc.Settings.Update(e.ctx, settingsBoundaries(0, 60), testUser)
	require.NoError(t, err)

	report, err := e.svc.Aging.Age(e.ctx, domain.AgingQuery{Kind: domain.KindAR, AsOf: agingAsOf})
	require.NoError(t, err)
	assert.Equal(t, []string{"current", "1-60", "60+"}, []string{report.Buckets[0].Label, report.Buckets[1].Label, report.Buckets[2].Label})
	assert.Equal(t, "867.25", report.Buckets[1].Amount.StringFixed(2))
}

func TestAging_InvalidQuery(t *testing.T) {
	e := newEngine(t)

	tests := []struct {
		name  string
		query domain.AgingQuery
	}{
		{"decreasing", domain.AgingQuery{Kind: domain.KindAR, Boundaries: domain.AgingBoundaries{30, 10}}},
		{"repeated", domain.AgingQuery{Kind: domain.KindAR, Boundaries: domain.AgingBoundaries{0, 30, 30}}},
		{"negative", domain.AgingQuery{Kind: domain.KindAR, Boundaries: domain.AgingBoundaries{-1, 30}}},
		{"unknown kind", domain.AgingQuery{Kind: "GL"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.Aging.Age(e.ctx, tt.query)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}
