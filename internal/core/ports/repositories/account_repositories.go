package repositories

import (
	"context"

	"github.com/SscSPs/gl_engine/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByCode retrieves a specific account by its business code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByCodes retrieves multiple accounts keyed by code. Missing codes are absent from the map.
	FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a page of accounts ordered by code.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's name, description and active flag.
	UpdateAccount(ctx context.Context, account domain.Account) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}

// AccountRoleRepository stores the role to account mapping of the chart of accounts.
type AccountRoleRepository interface {
	// FindRoleMappings returns every configured role mapping.
	FindRoleMappings(ctx context.Context) ([]domain.RoleMapping, error)

	// SaveRoleMapping inserts or replaces the mapping for one role.
	SaveRoleMapping(ctx context.Context, mapping domain.RoleMapping) error
}
