package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zenbooks-app/ledger_backend/internal/apperrors"
	portsrepo "github.com/zenbooks-app/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/zenbooks-app/ledger_backend/internal/core/ports/services"
)

// projectionService exposes the ledger projector: balances that are a
// pure function of the append-only posted-entry log, replayable from
// scratch. The cached balance table is an optimization, never a source of
// truth, which is what makes it safe to rebuild and to verify.
type projectionService struct {
	BaseService
	projectionRepo portsrepo.ProjectionRepository
}

// NewProjectionService creates a new projection service.
func NewProjectionService(projectionRepo portsrepo.ProjectionRepository) portssvc.ProjectionSvcFacade {
	return &projectionService{projectionRepo: projectionRepo}
}

var _ portssvc.ProjectionSvcFacade = (*projectionService)(nil)

// BalanceAsOf returns the account's signed balance from posted entries
// dated at or before the cut-off.
func (s *projectionService) BalanceAsOf(ctx context.Context, tenantID, accountID string, asOf time.Time) (decimal.Decimal, error) {
	balance, err := s.projectionRepo.BalanceAsOf(ctx, tenantID, accountID, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute balance as of date",
			slog.String("account_id", accountID),
			slog.String("as_of", asOf.Format("2006-01-02")))
		return decimal.Zero, fmt.Errorf("failed to compute balance: %w", err)
	}
	return balance, nil
}

// BalancesAsOf returns signed balances for all accounts with posted
// activity up to the cut-off.
func (s *projectionService) BalancesAsOf(ctx context.Context, tenantID string, asOf time.Time) (map[string]decimal.Decimal, error) {
	balances, err := s.projectionRepo.BalancesAsOf(ctx, tenantID, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute balances as of date", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to compute balances: %w", err)
	}
	return balances, nil
}

// Rebuild replays the posted-entry log into the cached balance table.
func (s *projectionService) Rebuild(ctx context.Context, tenantID string) error {
	if err := s.projectionRepo.RebuildBalances(ctx, tenantID); err != nil {
		s.LogError(ctx, err, "Failed to rebuild projected balances", slog.String("tenant_id", tenantID))
		return fmt.Errorf("failed to rebuild balances: %w", err)
	}
	s.LogInfo(ctx, "Projected balances rebuilt", slog.String("tenant_id", tenantID))
	return nil
}

// VerifyConsistency compares the cached balance table against balances
// derived directly from the posted log. Any difference means the engine
// or projector mis-applied an entry, which is a bug, so it surfaces as a
// ConsistencyError and is alarm-logged rather than returned as a normal
// validation failure.
func (s *projectionService) VerifyConsistency(ctx context.Context, tenantID string) error {
	now := time.Now().UTC()
	derived, err := s.projectionRepo.BalancesAsOf(ctx, tenantID, now)
	if err != nil {
		return fmt.Errorf("failed to derive balances from log: %w", err)
	}
	cached, err := s.projectionRepo.CachedBalances(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to read cached balances: %w", err)
	}

	for accountID, want := range derived {
		got, ok := cached[accountID]
		if !ok {
			got = decimal.Zero
		}
		if !got.Equal(want) {
			cerr := apperrors.NewConsistencyError("projector_drift",
				"account %s: cached balance %s, log-derived balance %s", accountID, got.String(), want.String())
			s.LogAlarm(ctx, cerr, "Projector drift detected",
				slog.String("tenant_id", tenantID),
				slog.String("account_id", accountID))
			return cerr
		}
	}
	for accountID, got := range cached {
		if _, ok := derived[accountID]; !ok && !got.IsZero() {
			cerr := apperrors.NewConsistencyError("projector_drift",
				"account %s: cached balance %s with no posted activity", accountID, got.String())
			s.LogAlarm(ctx, cerr, "Projector drift detected",
				slog.String("tenant_id", tenantID),
				slog.String("account_id", accountID))
			return cerr
		}
	}

	s.LogInfo(ctx, "Projector consistency verified", slog.String("tenant_id", tenantID))
	return nil
}
