package repositories

import (
	"context"
	"time"

	"github.com/zenbooks-app/ledger_backend/internal/core/domain"
)

// ReportingRepository supplies the raw data financial reports are built
// from. Report assembly and consistency checks live in the service layer.
type ReportingRepository interface {
	// AccountBalancesAsOf returns every account for the tenant (active or
	// not) with its signed balance from posted lines dated <= asOf.
	AccountBalancesAsOf(ctx context.Context, tenantID string, asOf time.Time) ([]domain.AccountBalance, error)

	// PostedEntriesInRange returns POSTED and VOIDED entries with entry
	// date in [from, to], lines populated, ordered by entry number
	// ascending.
	PostedEntriesInRange(ctx context.Context, tenantID string, from, to time.Time) ([]domain.JournalEntry, error)

	// LedgerActivityInRange returns per-account line activity for entries
	// dated in [from, to], entry-number ordered, optionally filtered to one
	// account.
	LedgerActivityInRange(ctx context.Context, tenantID string, from, to time.Time, accountID *string) ([]domain.LedgerAccountActivity, error)
}
