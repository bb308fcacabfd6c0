package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
)

type accountRepository struct{ v *view }

var _ portsrepo.AccountRepositoryFacade = (*accountRepository)(nil)

func (r *accountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	var out *domain.Account
	err := r.v.read(func(s *state) error {
		a, ok := s.accounts[code]
		if !ok {
			return apperrors.NewNotFoundError("account", code)
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *accountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(codes))
	err := r.v.read(func(s *state) error {
		for _, c := range codes {
			if a, ok := s.accounts[c]; ok {
				out[c] = a
			}
		}
		return nil
	})
	return out, err
}

func (r *accountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	var out []domain.Account
	err := r.v.read(func(s *state) error {
		all := make([]domain.Account, 0, len(s.accounts))
		for _, a := range s.accounts {
			all = append(all, a)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
		out = page(all, limit, offset)
		return nil
	})
	return out, err
}

func (r *accountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	return r.v.write(func(s *state) error {
		if _, ok := s.accounts[account.Code]; ok {
			return apperrors.ErrDuplicate
		}
		s.accounts[account.Code] = account
		return nil
	})
}

func (r *accountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	return r.v.write(func(s *state) error {
		if _, ok := s.accounts[account.Code]; !ok {
			return apperrors.NewNotFoundError("account", account.Code)
		}
		s.accounts[account.Code] = account
		return nil
	})
}

type accountRoleRepository struct{ v *view }

var _ portsrepo.AccountRoleRepository = (*accountRoleRepository)(nil)

func (r *accountRoleRepository) FindRoleMappings(ctx context.Context) ([]domain.RoleMapping, error) {
	var out []domain.RoleMapping
	err := r.v.read(func(s *state) error {
		out = make([]domain.RoleMapping, 0, len(s.roles))
		for _, m := range s.roles {
			out = append(out, m)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
		return nil
	})
	return out, err
}

func (r *accountRoleRepository) SaveRoleMapping(ctx context.Context, mapping domain.RoleMapping) error {
	return r.v.write(func(s *state) error {
		if existing, ok := s.roles[mapping.Role]; ok {
			mapping.CreatedAt = existing.CreatedAt
			mapping.CreatedBy = existing.CreatedBy
		}
		s.roles[mapping.Role] = mapping
		return nil
	})
}

type currencyRepository struct{ v *view }

var _ portsrepo.CurrencyRepositoryFacade = (*currencyRepository)(nil)

func (r *currencyRepository) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	var out *domain.Currency
	err := r.v.read(func(s *state) error {
		c, ok := s.currencies[code]
		if !ok {
			return apperrors.NewNotFoundError("currency", code)
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *currencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	var out []domain.Currency
	err := r.v.read(func(s *state) error {
		out = make([]domain.Currency, 0, len(s.currencies))
		for _, c := range s.currencies {
			out = append(out, c)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].CurrencyCode < out[j].CurrencyCode })
		return nil
	})
	return out, err
}

func (r *currencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	return r.v.write(func(s *state) error {
		if _, ok := s.currencies[currency.CurrencyCode]; ok {
			return apperrors.ErrDuplicate
		}
		s.currencies[currency.CurrencyCode] = currency
		return nil
	})
}

type exchangeRateRepository struct{ v *view }

var _ portsrepo.ExchangeRateRepositoryFacade = (*exchangeRateRepository)(nil)

func (r *exchangeRateRepository) FindLatestRate(ctx context.Context, currencyCode string, asOf time.Time) (*domain.ExchangeRate, error) {
	var out *domain.ExchangeRate
	err := r.v.read(func(s *state) error {
		for _, rate := range s.rates[currencyCode] {
			if rate.EffectiveDate.After(asOf) {
				continue
			}
			if out == nil || rate.EffectiveDate.After(out.EffectiveDate) {
				found := rate
				out = &found
			}
		}
		if out == nil {
			return apperrors.NewNotFoundError("exchange rate", currencyCode)
		}
		return nil
	})
	return out, err
}

func (r *exchangeRateRepository) ListRates(ctx context.Context, currencyCode string) ([]domain.ExchangeRate, error) {
	var out []domain.ExchangeRate
	err := r.v.read(func(s *state) error {
		out = append([]domain.ExchangeRate(nil), s.rates[currencyCode]...)
		sort.Slice(out, func(i, j int) bool { return out[i].EffectiveDate.After(out[j].EffectiveDate) })
		return nil
	})
	return out, err
}

func (r *exchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	return r.v.write(func(s *state) error {
		for _, existing := range s.rates[rate.CurrencyCode] {
			if existing.EffectiveDate.Equal(rate.EffectiveDate) {
				return apperrors.ErrDuplicate
			}
		}
		s.rates[rate.CurrencyCode] = append(s.rates[rate.CurrencyCode], rate)
		return nil
	})
}

type settingsRepository struct{ v *view }

var _ portsrepo.SettingsRepository = (*settingsRepository)(nil)

func (r *settingsRepository) GetSettings(ctx context.Context) (*domain.EngineSettings, error) {
	var out *domain.EngineSettings
	err := r.v.read(func(s *state) error {
		if s.settings == nil {
			return apperrors.NewNotFoundError("settings", "engine")
		}
		c := cloneSettings(*s.settings)
		out = &c
		return nil
	})
	return out, err
}

func (r *settingsRepository) GetSettingsForUpdate(ctx context.Context) (*domain.EngineSettings, error) {
	return r.GetSettings(ctx)
}

func (r *settingsRepository) SaveSettings(ctx context.Context, settings domain.EngineSettings) error {
	return r.v.write(func(s *state) error {
		c := cloneSettings(settings)
		s.settings = &c
		return nil
	})
}

type approvalRepository struct{ v *view }

var _ portsrepo.ApprovalRepositoryFacade = (*approvalRepository)(nil)

func (r *approvalRepository) FindApproval(ctx context.Context, kind domain.SourceKind, documentID string) (*domain.Approval, error) {
	var out *domain.Approval
	err := r.v.read(func(s *state) error {
		a, ok := s.approvals[key(string(kind), documentID)]
		if !ok {
			return apperrors.NewNotFoundError("approval", documentID)
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *approvalRepository) SaveApproval(ctx context.Context, approval domain.Approval) error {
	return r.v.write(func(s *state) error {
		s.approvals[key(string(approval.DocumentKind), approval.DocumentID)] = approval
		return nil
	})
}

func key(parts ...string) string {
	return strings.Join(parts, "|")
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return append([]T(nil), all[offset:end]...)
}
