package repositories

import (
	"context"
	"time"

	"github.com/zenbooks-app/ledger_backend/internal/core/domain"
)

// AccountReader defines read operations for chart-of-accounts data.
type AccountReader interface {
	// FindAccountByID retrieves an account scoped to a tenant.
	FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts keyed by id, scoped to a tenant.
	FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error)

	// FindAccountByCode retrieves an account by its tenant-unique code.
	// Returns apperrors.ErrNotFound when the code is unused.
	FindAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error)

	// ListAccounts retrieves all accounts for a tenant ordered by code.
	ListAccounts(ctx context.Context, tenantID string, includeInactive bool) ([]domain.Account, error)

	// HasPostedLinesInOpenPeriod reports whether any posted line references
	// the account with an entry date inside a currently OPEN period.
	HasPostedLinesInOpenPeriod(ctx context.Context, tenantID, accountID string) (bool, error)
}

// AccountWriter defines write operations for chart-of-accounts data.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account inactive. Accounts referenced by
	// posted lines are never deleted.
	DeactivateAccount(ctx context.Context, tenantID, accountID, updatedBy string, updatedAt time.Time) error
}

// AccountRepositoryFacade combines all account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
