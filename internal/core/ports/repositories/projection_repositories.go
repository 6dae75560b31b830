package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ProjectionRepository exposes per-account balances derived from the
// append-only posted-entry log. Balances are always computed as-of a
// cut-off date so historical reports stay reproducible after later
// postings. The cached balance table is a replayable projection of the
// log, never an independent source of truth.
type ProjectionRepository interface {
	// BalanceAsOf computes one account's signed balance (normal-side
	// convention) from posted lines with entry date <= asOf.
	BalanceAsOf(ctx context.Context, tenantID, accountID string, asOf time.Time) (decimal.Decimal, error)

	// BalancesAsOf computes signed balances for every account with posted
	// activity up to asOf, keyed by account id.
	BalancesAsOf(ctx context.Context, tenantID string, asOf time.Time) (map[string]decimal.Decimal, error)

	// CachedBalances returns the incrementally maintained balance table,
	// keyed by account id.
	CachedBalances(ctx context.Context, tenantID string) (map[string]decimal.Decimal, error)

	// RebuildBalances replays the posted-entry log in entry-number order
	// into the cached balance table, replacing its contents. Replay is
	// idempotent keyed on entry id.
	RebuildBalances(ctx context.Context, tenantID string) error
}
