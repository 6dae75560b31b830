package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zenbooks-app/ledger_backend/internal/apperrors"
	"github.com/zenbooks-app/ledger_backend/internal/core/domain"
	portsrepo "github.com/zenbooks-app/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/zenbooks-app/ledger_backend/internal/core/ports/services"
	"github.com/zenbooks-app/ledger_backend/internal/dto"
)

// accountService owns the chart of accounts.
type accountService struct {
	BaseService
	accountRepo    portsrepo.AccountRepositoryFacade
	projectionRepo portsrepo.ProjectionRepository
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, projectionRepo portsrepo.ProjectionRepository) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo:    accountRepo,
		projectionRepo: projectionRepo,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount registers a new account in the tenant's chart of accounts.
func (s *accountService) CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, creator string) (*domain.Account, error) {
	accountType := domain.AccountType(req.AccountType)
	if !accountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
	}
	// The cash flow statement accumulates cash equivalents debit-positive,
	// so only asset accounts may carry the flag.
	if req.IsCashEquivalent && accountType != domain.Asset {
		return nil, fmt.Errorf("%w: only %s accounts can be cash equivalents, got %s",
			apperrors.ErrValidation, domain.Asset, accountType)
	}

	// Code uniqueness within the tenant.
	existing, err := s.accountRepo.FindAccountByCode(ctx, tenantID, req.Code)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check account code uniqueness", slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to check account code: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: code %s", apperrors.ErrDuplicateCode, req.Code)
	}

	parentID := ""
	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		parentID = *req.ParentAccountID
		parent, err := s.accountRepo.FindAccountByID(ctx, tenantID, parentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent %s not found", apperrors.ErrInvalidParent, parentID)
			}
			s.LogError(ctx, err, "Failed to fetch parent account", slog.String("parent_account_id", parentID))
			return nil, fmt.Errorf("failed to fetch parent account: %w", err)
		}
		if !parent.IsActive {
			return nil, fmt.Errorf("%w: parent %s is inactive", apperrors.ErrInvalidParent, parentID)
		}
		// A child's type must equal its parent's type; no mixing asset
		// children under a liability parent.
		if parent.AccountType != accountType {
			return nil, fmt.Errorf("%w: parent type %s does not match %s", apperrors.ErrInvalidParent, parent.AccountType, accountType)
		}
	}

	cashFlowCategory := domain.CashFlowCategory(req.CashFlowCategory)
	if req.CashFlowCategory == "" {
		cashFlowCategory = domain.Operating
	} else if !cashFlowCategory.IsValid() {
		return nil, fmt.Errorf("%w: unknown cash flow category %q", apperrors.ErrValidation, req.CashFlowCategory)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:        uuid.NewString(),
		TenantID:         tenantID,
		Code:             req.Code,
		Name:             req.Name,
		AccountType:      accountType,
		ParentAccountID:  parentID,
		Description:      req.Description,
		CashFlowCategory: cashFlowCategory,
		IsCashEquivalent: req.IsCashEquivalent,
		IsActive:         true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creator,
			LastUpdatedAt: now,
			LastUpdatedBy: creator,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost a race on the unique (tenant, code) index.
			return nil, fmt.Errorf("%w: code %s", apperrors.ErrDuplicateCode, req.Code)
		}
		s.LogError(ctx, err, "Failed to save account", slog.String("account_id", account.AccountID))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", account.AccountID),
		slog.String("tenant_id", tenantID),
		slog.String("code", account.Code))
	return &account, nil
}

// GetAccountByID retrieves a single account.
func (s *accountService) GetAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

// GetAccountsByIDs retrieves multiple accounts keyed by id.
func (s *accountService) GetAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, tenantID, accountIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to find accounts by IDs", slog.Int("count", len(accountIDs)))
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	return accounts, nil
}

// ListAccounts retrieves the tenant's accounts ordered by code.
func (s *accountService) ListAccounts(ctx context.Context, tenantID string, includeInactive bool) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID, includeInactive)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

// DeactivateAccount marks an account inactive. Accounts referenced by
// posted lines are never deleted; deactivation is refused only while the
// account still has postings inside an open period.
func (s *accountService) DeactivateAccount(ctx context.Context, tenantID, accountID, actor string) error {
	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return fmt.Errorf("%w: account %s is already inactive", apperrors.ErrValidation, accountID)
	}

	inUse, err := s.accountRepo.HasPostedLinesInOpenPeriod(ctx, tenantID, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to check account usage", slog.String("account_id", accountID))
		return fmt.Errorf("failed to check account usage: %w", err)
	}
	if inUse {
		return fmt.Errorf("%w: account %s", apperrors.ErrAccountInUse, accountID)
	}

	if err := s.accountRepo.DeactivateAccount(ctx, tenantID, accountID, actor, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
		return err
	}

	s.LogInfo(ctx, "Account deactivated successfully", slog.String("account_id", accountID), slog.String("tenant_id", tenantID))
	return nil
}

// GetAccountTree returns the chart of accounts grouped by root with
// projected balances, aggregated parent-first depth-first.
func (s *accountService) GetAccountTree(ctx context.Context, tenantID string, asOf time.Time) ([]*domain.AccountNode, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID, true)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts for tree", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	balances, err := s.projectionRepo.BalancesAsOf(ctx, tenantID, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch projected balances for tree", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to fetch balances: %w", err)
	}

	nodes := make(map[string]*domain.AccountNode, len(accounts))
	for i := range accounts {
		account := accounts[i]
		balance, ok := balances[account.AccountID]
		if !ok {
			balance = decimal.Zero
		}
		nodes[account.AccountID] = &domain.AccountNode{Account: account, Balance: balance}
	}

	var roots []*domain.AccountNode
	for _, node := range nodes {
		if node.ParentAccountID == "" {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[node.ParentAccountID]
		if !ok {
			// Orphaned parent reference; treat as a root rather than drop it.
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	sortNodesByCode(roots)
	for _, node := range nodes {
		sortNodesByCode(node.Children)
	}

	for _, root := range roots {
		aggregateBalances(root)
	}

	return roots, nil
}

func sortNodesByCode(nodes []*domain.AccountNode) {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Code < nodes[j].Code
	})
}

// aggregateBalances fills AggregateBalance for node and its subtree:
// own balance plus the aggregate of every child, parent-first depth-first.
func aggregateBalances(node *domain.AccountNode) decimal.Decimal {
	total := node.Balance
	for _, child := range node.Children {
		total = total.Add(aggregateBalances(child))
	}
	node.AggregateBalance = total
	return total
}
