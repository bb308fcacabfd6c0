package services

import (
	"context"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	"github.com/SscSPs/gl_engine/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccount retrieves an account by code.
	GetAccount(ctx context.Context, code string) (*domain.Account, error)

	// ListAccounts retrieves a page of accounts.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount creates a new active account.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccount edits the name, description or active flag of an account.
	UpdateAccount(ctx context.Context, code string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)
}

// RoleRegistrySvc maps account roles to concrete accounts.
type RoleRegistrySvc interface {
	// Resolve returns the active account configured for role.
	// It fails with *apperrors.UnknownAccountError when the role is unmapped or unusable.
	Resolve(ctx context.Context, repos portsrepo.RepositoryProvider, role domain.AccountRole) (*domain.Account, error)

	// ResolveAll resolves several roles at once.
	ResolveAll(ctx context.Context, repos portsrepo.RepositoryProvider, roles ...domain.AccountRole) (map[domain.AccountRole]domain.Account, error)

	// ListRoles returns the configured role mappings.
	ListRoles(ctx context.Context) ([]domain.RoleMapping, error)

	// AssignRole maps role to an existing account.
	AssignRole(ctx context.Context, role domain.AccountRole, accountCode string, userID string) (*domain.RoleMapping, error)
}

// ChartOfAccountsSvcFacade combines all chart of accounts operations.
type ChartOfAccountsSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	RoleRegistrySvc
}
