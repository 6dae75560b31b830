package repositories

import (
	"context"
	"time"

	"github.com/zenbooks-app/ledger_backend/internal/core/domain"
)

// JournalReader defines read operations for journal-entry data.
type JournalReader interface {
	// FindEntryByID retrieves a journal entry header scoped to a tenant.
	// Lines are fetched separately via FindLinesByEntryID.
	FindEntryByID(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves all lines of an entry.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error)

	// ListEntries retrieves a paginated list of entries for a tenant using
	// token-based pagination, newest first. It returns the entries, a token
	// for the next page, and an error.
	ListEntries(ctx context.Context, tenantID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
}

// JournalWriter defines write operations for journal-entry data.
//
// PostEntry and VoidEntry are the per-tenant serialization points: each
// runs in a single database transaction that locks the tenant's sequence
// row, re-checks the period and entry status at that consistency point,
// assigns the next gapless entry number, and applies projected balances.
type JournalWriter interface {
	// SaveDraft persists a DRAFT entry with its lines. No entry number is
	// assigned and no balances change.
	SaveDraft(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine) error

	// UpdateDraft replaces a DRAFT entry's mutable fields and lines.
	// Returns apperrors.ErrEntryNotDraft for non-draft entries.
	UpdateDraft(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine) error

	// DeleteDraft removes a DRAFT entry and its lines. Posted and voided
	// entries are immutable and cannot be deleted.
	DeleteDraft(ctx context.Context, tenantID, entryID string) error

	// PostEntry atomically assigns the next entry number, flips the entry
	// to POSTED, and applies its lines to projected balances. Fails with
	// apperrors.ErrEntryNotDraft or apperrors.ErrPeriodClosed.
	PostEntry(ctx context.Context, tenantID, entryID, postedBy string, postedAt time.Time) (*domain.JournalEntry, error)

	// VoidEntry atomically posts the supplied reversal entry (assigning it
	// the next entry number), marks the original VOIDED with the reason and
	// back-reference, and applies the reversal to projected balances. The
	// original's lines are never altered. Fails with
	// apperrors.ErrEntryNotPosted or apperrors.ErrPeriodClosed.
	VoidEntry(ctx context.Context, original domain.JournalEntry, reversal domain.JournalEntry, reversalLines []domain.JournalLine, reason string, voidedAt time.Time) (*domain.JournalEntry, error)
}

// JournalRepositoryFacade combines all journal repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
