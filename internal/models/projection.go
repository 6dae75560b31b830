package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountBalanceRow is the cached running balance for one account.
// Balance follows the normal-side sign convention.
type AccountBalanceRow struct {
	TenantID      string          `db:"tenant_id"`
	AccountID     string          `db:"account_id"`
	Balance       decimal.Decimal `db:"balance"`
	LastUpdatedAt time.Time       `db:"last_updated_at"`
}

// AppliedEntry records that a posted entry's lines have been folded into
// the cached balances, making application idempotent.
type AppliedEntry struct {
	TenantID  string    `db:"tenant_id"`
	EntryID   string    `db:"entry_id"`
	AppliedAt time.Time `db:"applied_at"`
}

// LedgerSequence holds the next gapless entry number for a tenant. The row
// is locked FOR UPDATE inside the posting transaction.
type LedgerSequence struct {
	TenantID        string `db:"tenant_id"`
	NextEntryNumber int64  `db:"next_entry_number"`
}
