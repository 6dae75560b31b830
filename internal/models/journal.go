package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the lifecycle state of a journal entry.
type EntryStatus string

const (
	Draft  EntryStatus = "DRAFT"
	Posted EntryStatus = "POSTED"
	Voided EntryStatus = "VOIDED"
)

// Direction indicates whether a journal line is a debit or a credit.
type Direction string

const (
	Debit  Direction = "DEBIT"
	Credit Direction = "CREDIT"
)

// JournalEntry represents a single, balanced financial event composed of
// multiple lines. EntryNumber is nullable: it is assigned only at post time.
type JournalEntry struct {
	EntryID          string      `db:"entry_id"`
	TenantID         string      `db:"tenant_id"`
	EntryNumber      *int64      `db:"entry_number"` // Nullable while DRAFT
	EntryDate        time.Time   `db:"entry_date"`
	Description      string      `db:"description"`
	Status           EntryStatus `db:"status"`
	SourceRef        *string     `db:"source_ref"`         // Nullable
	OriginalEntryID  *string     `db:"original_entry_id"`  // Nullable, set on reversals
	ReversingEntryID *string     `db:"reversing_entry_id"` // Nullable, set on voided entries
	VoidReason       *string     `db:"void_reason"`        // Nullable
	PostedAt         *time.Time  `db:"posted_at"`          // Nullable
	VoidedAt         *time.Time  `db:"voided_at"`          // Nullable
	AuditFields
}

// JournalLine is a single debit or credit against one account.
type JournalLine struct {
	LineID       string          `db:"line_id"`
	EntryID      string          `db:"entry_id"`
	AccountID    string          `db:"account_id"`
	Direction    Direction       `db:"direction"`
	Amount       decimal.Decimal `db:"amount"` // Always positive
	CostCenterID *string         `db:"cost_center_id"` // Nullable
	Memo         string          `db:"memo"`
	AuditFields
}
