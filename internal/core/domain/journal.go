package domain

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

// Direction indicates whether a journal line is a Debit or a Credit.
// The same type expresses an account's normal balance side.
type Direction string

const (
	Debit  Direction = "DEBIT"
	Credit Direction = "CREDIT"
)

// Mirror returns the opposite direction.
func (d Direction) Mirror() Direction {
	if d == Debit {
		return Credit
	}
	return Debit
}

// JournalEntry represents a single, balanced financial event composed of
// multiple lines. A DRAFT entry is mutable; POSTED and VOIDED entries are
// immutable and retained permanently. The entry number is assigned only at
// post time, so drafts never consume numbers.
type JournalEntry struct {
	EntryID          string      `json:"entryID"`  // Primary Key (UUID)
	TenantID         string      `json:"tenantID"` // Owning tenant (Not Null)
	EntryNumber      *int64      `json:"entryNumber,omitempty"` // Sequential, gapless per tenant; nil while DRAFT
	EntryDate        time.Time   `json:"entryDate"`             // Date the event occurred
	Description      string      `json:"description"`
	Status           EntryStatus `json:"status"`
	SourceRef        *string     `json:"sourceRef,omitempty"`        // Opaque pointer to the producing transaction
	OriginalEntryID  *string     `json:"originalEntryID,omitempty"`  // Set on a reversal, points at the voided entry
	ReversingEntryID *string     `json:"reversingEntryID,omitempty"` // Set on a voided entry, points at its reversal
	VoidReason       *string     `json:"voidReason,omitempty"`
	PostedAt         *time.Time  `json:"postedAt,omitempty"`
	VoidedAt         *time.Time  `json:"voidedAt,omitempty"`
	Lines            []JournalLine `json:"lines,omitempty"`
	AuditFields
}

// IsReversal reports whether this entry was created to void another entry.
func (e JournalEntry) IsReversal() bool {
	return e.OriginalEntryID != nil
}

// JournalLine is a single debit or credit against one account within an
// entry. Amount is always positive; the direction carries the sign.
type JournalLine struct {
	LineID       string          `json:"lineID"` // Primary Key (UUID)
	EntryID      string          `json:"entryID"`
	AccountID    string          `json:"accountID"`
	Direction    Direction       `json:"direction"`
	Amount       decimal.Decimal `json:"amount"` // Positive, fixed-point decimal
	CostCenterID *string         `json:"costCenterID,omitempty"`
	Memo         string          `json:"memo"` // Nullable line memo
	AuditFields
}

// MirrorLines builds the reversing lines for a void: same accounts and
// amounts with debit and credit swapped. The originals are not touched.
func MirrorLines(lines []JournalLine) []JournalLine {
	mirrored := make([]JournalLine, len(lines))
	for i, line := range lines {
		mirrored[i] = JournalLine{
			AccountID:    line.AccountID,
			Direction:    line.Direction.Mirror(),
			Amount:       line.Amount,
			CostCenterID: line.CostCenterID,
			Memo:         line.Memo,
		}
	}
	return mirrored
}
