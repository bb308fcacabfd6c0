package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxExchangeRateRepository struct {
	BaseRepository
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

const exchangeRateColumns = `exchange_rate_id, currency_code, rate_to_base, effective_date, created_at, created_by, last_updated_at, last_updated_by`

func scanExchangeRate(row pgx.Row) (domain.ExchangeRate, error) {
	var er domain.ExchangeRate
	err := row.Scan(
		&er.ExchangeRateID,
		&er.CurrencyCode,
		&er.RateToBase,
		&er.EffectiveDate,
		&er.CreatedAt,
		&er.CreatedBy,
		&er.LastUpdatedAt,
		&er.LastUpdatedBy,
	)
	return er, err
}

// SaveExchangeRate inserts a rate. A second rate for the same currency and
// effective date violates the unique key and reports ErrDuplicate.
func (r *PgxExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rates (` + exchangeRateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.db.Exec(ctx, query,
		rate.ExchangeRateID,
		rate.CurrencyCode,
		rate.RateToBase,
		rate.EffectiveDate,
		rate.CreatedAt,
		rate.CreatedBy,
		rate.LastUpdatedAt,
		rate.LastUpdatedBy,
	)
	if err != nil {
		return saveErr(err, "exchange rate", fmt.Sprintf("%s@%s", rate.CurrencyCode, rate.EffectiveDate.Format(time.DateOnly)))
	}
	return nil
}

// FindLatestRate returns the rate with the greatest effective date not after asOf.
func (r *PgxExchangeRateRepository) FindLatestRate(ctx context.Context, currencyCode string, asOf time.Time) (*domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE currency_code = $1 AND effective_date <= $2
		ORDER BY effective_date DESC
		LIMIT 1;
	`
	er, err := scanExchangeRate(r.db.QueryRow(ctx, query, currencyCode, asOf))
	if err != nil {
		return nil, notFound(err, "exchange rate", currencyCode)
	}
	return &er, nil
}

// ListRates returns every rate of a currency, newest first.
func (r *PgxExchangeRateRepository) ListRates(ctx context.Context, currencyCode string) ([]domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE currency_code = $1
		ORDER BY effective_date DESC;
	`
	rows, err := r.db.Query(ctx, query, currencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rates for %s: %w", currencyCode, err)
	}
	defer rows.Close()

	rates := []domain.ExchangeRate{}
	for rows.Next() {
		er, err := scanExchangeRate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange rate row: %w", err)
		}
		rates = append(rates, er)
	}
	return rates, rows.Err()
}
