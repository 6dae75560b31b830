package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ProjectionSvcFacade exposes balances derived from the posted-entry log.
type ProjectionSvcFacade interface {
	// BalanceAsOf returns the account's signed balance (normal-side
	// convention) from posted entries dated <= asOf.
	BalanceAsOf(ctx context.Context, tenantID, accountID string, asOf time.Time) (decimal.Decimal, error)

	// BalancesAsOf returns signed balances for all accounts with activity
	// up to asOf, keyed by account id.
	BalancesAsOf(ctx context.Context, tenantID string, asOf time.Time) (map[string]decimal.Decimal, error)

	// Rebuild replays the posted-entry log into the cached balance table.
	Rebuild(ctx context.Context, tenantID string) error

	// VerifyConsistency compares cached balances against the posted log.
	// A mismatch is returned as an *apperrors.ConsistencyError, since it
	// indicates an engine or projector bug rather than a user condition.
	VerifyConsistency(ctx context.Context, tenantID string) error
}
