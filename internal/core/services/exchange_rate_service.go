package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/SscSPs/gl_engine/internal/platform/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// exchangeRateService resolves rates to the base currency. Rates are stored
// as base units per one unit of the foreign currency.
type exchangeRateService struct {
	BaseService
	uow      portsrepo.UnitOfWork
	settings portssvc.SettingsSvcFacade
	cache    *RateCache
}

// NewExchangeRateService creates the rate resolver. cache and recorder may be nil.
func NewExchangeRateService(uow portsrepo.UnitOfWork, settings portssvc.SettingsSvcFacade, cache *RateCache, recorder metrics.Recorder) portssvc.ExchangeRateSvcFacade {
	return &exchangeRateService{
		BaseService: BaseService{Metrics: recorder},
		uow:         uow,
		settings:    settings,
		cache:       cache,
	}
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

func (s *exchangeRateService) CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error) {
	code := strings.ToUpper(req.CurrencyCode)
	if !req.RateToBase.IsPositive() {
		return nil, apperrors.NewValidationError("exchange rate must be positive")
	}

	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	if code == settings.BaseCurrency {
		return nil, apperrors.NewValidationError("the base currency %s always converts at 1", code)
	}

	repos := s.uow.Repositories()
	if _, err := repos.CurrencyRepo.FindCurrencyByCode(ctx, code); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewValidationError("currency code '%s' not found", code)
		}
		return nil, fmt.Errorf("failed to validate currency '%s': %w", code, err)
	}

	rate := domain.ExchangeRate{
		ExchangeRateID: uuid.NewString(),
		CurrencyCode:   code,
		RateToBase:     req.RateToBase,
		EffectiveDate:  dateOnly(req.EffectiveDate),
		AuditFields:    newAuditFields(creatorUserID, time.Now().UTC()),
	}

	if err := repos.ExchangeRateRepo.SaveExchangeRate(ctx, rate); err != nil {
		s.LogError(ctx, err, "Failed to save exchange rate", slog.String("currency_code", code))
		return nil, fmt.Errorf("failed to create exchange rate in service: %w", err)
	}
	s.cache.Invalidate(ctx, code)

	s.LogInfo(ctx, "Exchange rate recorded",
		slog.String("currency_code", code),
		slog.String("rate", rate.RateToBase.String()),
		slog.String("effective_date", rate.EffectiveDate.Format(time.DateOnly)))
	return &rate, nil
}

func (s *exchangeRateService) ListExchangeRates(ctx context.Context, currencyCode string) ([]domain.ExchangeRate, error) {
	rates, err := s.uow.Repositories().ExchangeRateRepo.ListRates(ctx, strings.ToUpper(currencyCode))
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	if rates == nil {
		return []domain.ExchangeRate{}, nil
	}
	return rates, nil
}

func (s *exchangeRateService) RateToBase(ctx context.Context, repos portsrepo.RepositoryProvider, currencyCode string, asOf time.Time) (decimal.Decimal, error) {
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if currencyCode == settings.BaseCurrency {
		return decimal.NewFromInt(1), nil
	}

	asOfDay := dateOnly(asOf)
	if rate, ok := s.cache.Get(ctx, currencyCode, asOfDay); ok {
		return rate, nil
	}

	found, err := repos.ExchangeRateRepo.FindLatestRate(ctx, currencyCode, asOfDay)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, &apperrors.NoRateAvailableError{Currency: currencyCode, AsOf: asOfDay}
		}
		return decimal.Zero, fmt.Errorf("failed to resolve %s rate: %w", currencyCode, err)
	}
	s.recorder().RateLookup(metrics.LayerStore)
	s.cache.Set(ctx, currencyCode, asOfDay, found.RateToBase)
	return found.RateToBase, nil
}

func (s *exchangeRateService) Convert(ctx context.Context, amount decimal.Decimal, from, to string, asOf time.Time) (decimal.Decimal, error) {
	return s.ConvertIn(ctx, s.uow.Repositories(), amount, from, to, asOf)
}

func (s *exchangeRateService) ConvertIn(ctx context.Context, repos portsrepo.RepositoryProvider, amount decimal.Decimal, from, to string, asOf time.Time) (decimal.Decimal, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return amount, nil
	}

	target, err := minorUnitsOf(ctx, repos, to)
	if err != nil {
		return decimal.Zero, err
	}
	fromRate, err := s.RateToBase(ctx, repos, from, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	toRate, err := s.RateToBase(ctx, repos, to, asOf)
	if err != nil {
		return decimal.Zero, err
	}

	// full precision until the final rounding
	return target.Round(amount.Mul(fromRate).Div(toRate)), nil
}
