package services

import (
	"context"
	"time"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/shopspring/decimal"
)

// CurrencySvcFacade manages currencies and their rounding.
type CurrencySvcFacade interface {
	// CreateCurrency registers a currency.
	CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, userID string) (*domain.Currency, error)

	// GetCurrency retrieves a currency by code.
	GetCurrency(ctx context.Context, code string) (*domain.Currency, error)

	// ListCurrencies retrieves all currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// ExchangeRateSvcFacade is the currency and rate resolver.
type ExchangeRateSvcFacade interface {
	// CreateExchangeRate records a rate and invalidates cached lookups for the currency.
	CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, userID string) (*domain.ExchangeRate, error)

	// ListExchangeRates returns every rate for a currency, newest first.
	ListExchangeRates(ctx context.Context, currencyCode string) ([]domain.ExchangeRate, error)

	// RateToBase returns the base units per one unit of currency effective on asOf.
	// The base currency is always exactly one. A missing rate fails with *apperrors.NoRateAvailableError.
	RateToBase(ctx context.Context, repos portsrepo.RepositoryProvider, currencyCode string, asOf time.Time) (decimal.Decimal, error)

	// Convert converts amount between currencies at full precision and rounds the
	// result half-to-even to the target currency's minor units. Identity conversion is exact.
	Convert(ctx context.Context, amount decimal.Decimal, from, to string, asOf time.Time) (decimal.Decimal, error)

	// ConvertIn is Convert against a specific repository provider.
	ConvertIn(ctx context.Context, repos portsrepo.RepositoryProvider, amount decimal.Decimal, from, to string, asOf time.Time) (decimal.Decimal, error)
}
