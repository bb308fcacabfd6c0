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

const (
	defaultAccountPageSize = 100
	maxAccountPageSize     = 500
)

// chartOfAccountsService owns accounts and the role registry.
type chartOfAccountsService struct {
	BaseService
	uow portsrepo.UnitOfWork
}

// NewChartOfAccountsService creates the chart of accounts service.
func NewChartOfAccountsService(uow portsrepo.UnitOfWork) portssvc.ChartOfAccountsSvcFacade {
	return &chartOfAccountsService{uow: uow}
}

var _ portssvc.ChartOfAccountsSvcFacade = (*chartOfAccountsService)(nil)

func (s *chartOfAccountsService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	if !req.AccountType.IsValid() {
		return nil, apperrors.NewValidationError("invalid account type '%s'", req.AccountType)
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, apperrors.NewValidationError("account code is required")
	}

	repo := s.uow.Repositories().AccountRepo
	if _, err := repo.FindAccountByCode(ctx, code); err == nil {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, code)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check account %s: %w", code, err)
	}

	account := domain.Account{
		Code:        code,
		Name:        req.Name,
		AccountType: req.AccountType,
		Description: req.Description,
		IsActive:    true,
		AuditFields: newAuditFields(userID, time.Now().UTC()),
	}

	if err := repo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account in repository", slog.String("account_code", code))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully in service", slog.String("account_code", code))
	return &account, nil
}

func (s *chartOfAccountsService) GetAccount(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.uow.Repositories().AccountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by code in repository", slog.String("account_code", code))
		}
		return nil, err
	}
	return account, nil
}

func (s *chartOfAccountsService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = defaultAccountPageSize
	}
	if limit > maxAccountPageSize {
		limit = maxAccountPageSize
	}
	if offset < 0 {
		offset = 0
	}
	accounts, err := s.uow.Repositories().AccountRepo.ListAccounts(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

func (s *chartOfAccountsService) UpdateAccount(ctx context.Context, code string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	var account *domain.Account

	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		var err error
		account, err = repos.AccountRepo.FindAccountByCode(ctx, code)
		if err != nil {
			return err
		}

		if req.Name != nil {
			if strings.TrimSpace(*req.Name) == "" {
				return apperrors.NewValidationError("account name cannot be empty")
			}
			account.Name = *req.Name
		}
		if req.Description != nil {
			account.Description = *req.Description
		}
		if req.IsActive != nil && !*req.IsActive && account.IsActive {
			if err := s.ensureNotMapped(ctx, repos, code); err != nil {
				return err
			}
			account.IsActive = false
		} else if req.IsActive != nil {
			account.IsActive = *req.IsActive
		}
		touch(&account.AuditFields, userID, time.Now().UTC())

		return repos.AccountRepo.UpdateAccount(ctx, *account)
	})
	if err != nil {
		s.LogRejection(ctx, err, "Failed to update account", slog.String("account_code", code))
		return nil, err
	}

	s.LogInfo(ctx, "Account updated", slog.String("account_code", code))
	return account, nil
}

// ensureNotMapped refuses to deactivate an account that a role still points at.
func (s *chartOfAccountsService) ensureNotMapped(ctx context.Context, repos portsrepo.RepositoryProvider, code string) error {
	mappings, err := repos.AccountRoleRepo.FindRoleMappings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load role mappings: %w", err)
	}
	for _, m := range mappings {
		if m.AccountCode == code {
			return fmt.Errorf("%w: account %s is mapped to role %s", apperrors.ErrConflict, code, m.Role)
		}
	}
	return nil
}

func (s *chartOfAccountsService) Resolve(ctx context.Context, repos portsrepo.RepositoryProvider, role domain.AccountRole) (*domain.Account, error) {
	resolved, err := s.ResolveAll(ctx, repos, role)
	if err != nil {
		return nil, err
	}
	account := resolved[role]
	return &account, nil
}

func (s *chartOfAccountsService) ResolveAll(ctx context.Context, repos portsrepo.RepositoryProvider, roles ...domain.AccountRole) (map[domain.AccountRole]domain.Account, error) {
	mappings, err := repos.AccountRoleRepo.FindRoleMappings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load role mappings: %w", err)
	}
	byRole := make(map[domain.AccountRole]string, len(mappings))
	for _, m := range mappings {
		byRole[m.Role] = m.AccountCode
	}

	codes := make([]string, 0, len(roles))
	for _, role := range roles {
		if !role.IsValid() {
			return nil, &apperrors.UnknownAccountError{Role: string(role), Reason: "not a known account role"}
		}
		code, ok := byRole[role]
		if !ok {
			return nil, &apperrors.UnknownAccountError{Role: string(role), Reason: "no account is mapped to the role"}
		}
		codes = append(codes, code)
	}

	accounts, err := repos.AccountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to load role accounts: %w", err)
	}

	out := make(map[domain.AccountRole]domain.Account, len(roles))
	for _, role := range roles {
		code := byRole[role]
		account, ok := accounts[code]
		if !ok {
			return nil, &apperrors.UnknownAccountError{Role: string(role), AccountCode: code, Reason: "account does not exist"}
		}
		if !account.IsActive {
			return nil, &apperrors.UnknownAccountError{Role: string(role), AccountCode: code, Reason: "account is inactive"}
		}
		out[role] = account
	}
	return out, nil
}

func (s *chartOfAccountsService) ListRoles(ctx context.Context) ([]domain.RoleMapping, error) {
	mappings, err := s.uow.Repositories().AccountRoleRepo.FindRoleMappings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list role mappings: %w", err)
	}
	if mappings == nil {
		return []domain.RoleMapping{}, nil
	}
	return mappings, nil
}

func (s *chartOfAccountsService) AssignRole(ctx context.Context, role domain.AccountRole, accountCode string, userID string) (*domain.RoleMapping, error) {
	if !role.IsValid() {
		return nil, apperrors.NewValidationError("unknown account role '%s'", role)
	}

	var mapping domain.RoleMapping
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		account, err := repos.AccountRepo.FindAccountByCode(ctx, accountCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NewValidationError("account %s does not exist", accountCode)
			}
			return err
		}
		if !account.IsActive {
			return apperrors.NewValidationError("account %s is inactive", accountCode)
		}
		mapping = domain.RoleMapping{
			Role:        role,
			AccountCode: accountCode,
			AuditFields: newAuditFields(userID, time.Now().UTC()),
		}
		return repos.AccountRoleRepo.SaveRoleMapping(ctx, mapping)
	})
	if err != nil {
		s.LogRejection(ctx, err, "Failed to assign account role", slog.String("role", string(role)), slog.String("account_code", accountCode))
		return nil, err
	}

	s.LogInfo(ctx, "Account role assigned", slog.String("role", string(role)), slog.String("account_code", accountCode))
	return &mapping, nil
}
