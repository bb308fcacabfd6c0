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
)

const defaultMinorUnits int32 = 2

type currencyService struct {
	BaseService
	uow portsrepo.UnitOfWork
}

// NewCurrencyService creates the currency service.
func NewCurrencyService(uow portsrepo.UnitOfWork) portssvc.CurrencySvcFacade {
	return &currencyService{uow: uow}
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

func (s *currencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	code := strings.ToUpper(req.CurrencyCode)
	repo := s.uow.Repositories().CurrencyRepo

	if _, err := repo.FindCurrencyByCode(ctx, code); err == nil {
		return nil, fmt.Errorf("%w: currency %s", apperrors.ErrDuplicate, code)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check currency %s: %w", code, err)
	}

	minor := defaultMinorUnits
	if req.MinorUnits != nil {
		minor = *req.MinorUnits
	}

	currency := domain.Currency{
		CurrencyCode: code,
		Symbol:       req.Symbol,
		Name:         req.Name,
		MinorUnits:   minor,
		AuditFields:  newAuditFields(creatorUserID, time.Now().UTC()),
	}

	if err := repo.SaveCurrency(ctx, currency); err != nil {
		s.LogError(ctx, err, "Failed to save currency", slog.String("currency_code", code))
		return nil, fmt.Errorf("failed to create currency in service: %w", err)
	}

	s.LogInfo(ctx, "Currency created", slog.String("currency_code", code), slog.Int("minor_units", int(minor)))
	return &currency, nil
}

func (s *currencyService) GetCurrency(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	currency, err := s.uow.Repositories().CurrencyRepo.FindCurrencyByCode(ctx, strings.ToUpper(currencyCode))
	if err != nil {
		return nil, fmt.Errorf("failed to get currency by code in service: %w", err)
	}
	return currency, nil
}

func (s *currencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.uow.Repositories().CurrencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies in service: %w", err)
	}
	if currencies == nil {
		return []domain.Currency{}, nil
	}
	return currencies, nil
}

// minorUnitsOf returns the rounding precision of a currency, failing with
// a configuration error when the currency is unknown.
func minorUnitsOf(ctx context.Context, repos portsrepo.RepositoryProvider, code string) (domain.Currency, error) {
	currency, err := repos.CurrencyRepo.FindCurrencyByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Currency{}, apperrors.NewValidationError("currency %s is not configured", code)
		}
		return domain.Currency{}, fmt.Errorf("failed to load currency %s: %w", code, err)
	}
	return *currency, nil
}
