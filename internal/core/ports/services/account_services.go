package services

import (
	"context"
	"time"

	"github.com/zenbooks-app/ledger_backend/internal/core/domain"
	"github.com/zenbooks-app/ledger_backend/internal/dto"
)

// AccountSvcFacade defines the chart-of-accounts operations exposed to
// handlers and to the journal engine.
type AccountSvcFacade interface {
	// CreateAccount registers a new account. Fails with
	// apperrors.ErrDuplicateCode when the code is taken within the tenant
	// and apperrors.ErrInvalidParent when the parent is missing, inactive,
	// or of a different type.
	CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, creator string) (*domain.Account, error)

	// GetAccountByID retrieves one account.
	GetAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error)

	// GetAccountsByIDs retrieves multiple accounts keyed by id.
	GetAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves all accounts for a tenant ordered by code.
	ListAccounts(ctx context.Context, tenantID string, includeInactive bool) ([]domain.Account, error)

	// DeactivateAccount soft-deactivates an account. Fails with
	// apperrors.ErrAccountInUse when posted lines reference it inside an
	// open period; historical postings remain valid either way.
	DeactivateAccount(ctx context.Context, tenantID, accountID, actor string) error

	// GetAccountTree returns accounts grouped by root, each node carrying
	// its own projected balance and the sum over itself plus descendants,
	// aggregated parent-first depth-first, ordered by code.
	GetAccountTree(ctx context.Context, tenantID string, asOf time.Time) ([]*domain.AccountNode, error)
}
