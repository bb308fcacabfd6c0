package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AgingBoundaries are the inclusive upper day limits of each aging bucket.
// [0,30,60,90] yields current, 1-30, 31-60, 61-90 and 90+.
type AgingBoundaries []int

// Validate requires a non-empty, non-negative, strictly increasing list.
func (b AgingBoundaries) Validate() error {
	if len(b) == 0 {
		return fmt.Errorf("aging boundaries cannot be empty")
	}
	for i, v := range b {
		if v < 0 {
			return fmt.Errorf("aging boundary %d cannot be negative", v)
		}
		if i > 0 && v <= b[i-1] {
			return fmt.Errorf("aging boundaries must be strictly increasing, got %d after %d", v, b[i-1])
		}
	}
	return nil
}

// Labels returns one label per bucket, len(b)+1 in total.
func (b AgingBoundaries) Labels() []string {
	labels := make([]string, 0, len(b)+1)
	if b[0] == 0 {
		labels = append(labels, "current")
	} else {
		labels = append(labels, fmt.Sprintf("<=%d", b[0]))
	}
	for i := 1; i < len(b); i++ {
		labels = append(labels, fmt.Sprintf("%d-%d", b[i-1]+1, b[i]))
	}
	return append(labels, fmt.Sprintf("%d+", b[len(b)-1]))
}

// BucketIndex returns the bucket a balance that is days overdue falls into.
// Buckets are (b[i-1], b[i]], so each day count maps to exactly one bucket.
func (b AgingBoundaries) BucketIndex(days int) int {
	for i, upper := range b {
		if days <= upper {
			return i
		}
	}
	return len(b)
}

// DaysOverdue counts calendar days from due to asOf, ignoring time of day.
func DaysOverdue(due, asOf time.Time) int {
	d := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	a := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	return int(a.Sub(d).Hours() / 24)
}

// AgingQuery selects the open balances to age.
type AgingQuery struct {
	Kind           InvoiceKind
	CounterpartyID string
	AsOf           time.Time
	Boundaries     AgingBoundaries
}

// AgingBucket is one day range of an aging report.
type AgingBucket struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// CounterpartyAging is the per-counterparty split of an aging report.
type CounterpartyAging struct {
	CounterpartyID string          `json:"counterpartyID"`
	Buckets        []AgingBucket   `json:"buckets"`
	Total          decimal.Decimal `json:"total"`
}

// AgingReport is derived on demand and never persisted. Amounts are base
// currency at each invoice's posting rate.
type AgingReport struct {
	Kind           InvoiceKind         `json:"kind"`
	AsOf           time.Time           `json:"asOf"`
	CurrencyCode   string              `json:"currencyCode"`
	Boundaries     AgingBoundaries     `json:"boundaries"`
	Buckets        []AgingBucket       `json:"buckets"`
	Counterparties []CounterpartyAging `json:"counterparties"`
	Total          decimal.Decimal     `json:"total"`
}
