package services

import (
	"context"

	"github.com/zenbooks-app/ledger_backend/internal/core/domain"
	"github.com/zenbooks-app/ledger_backend/internal/dto"
)

// JournalSvcFacade defines the journal engine: draft creation, posting,
// voiding, and the single producer-facing recording call.
type JournalSvcFacade interface {
	// CreateDraft validates and stores a DRAFT entry. Fails with
	// apperrors.ErrUnbalancedEntry or apperrors.ErrInvalidAccount. Drafts
	// never touch projected balances and never consume entry numbers.
	CreateDraft(ctx context.Context, tenantID string, req dto.CreateEntryRequest, creator string) (*domain.JournalEntry, error)

	// UpdateDraft mutates a DRAFT entry. Fails with
	// apperrors.ErrEntryNotDraft for posted or voided entries.
	UpdateDraft(ctx context.Context, tenantID, entryID string, req dto.UpdateEntryRequest, actor string) (*domain.JournalEntry, error)

	// Post finalizes a draft: assigns the next sequential entry number,
	// flips it to POSTED, and applies it to projected balances. Fails with
	// apperrors.ErrEntryNotDraft or apperrors.ErrPeriodClosed.
	Post(ctx context.Context, tenantID, entryID, actor string) (*domain.JournalEntry, error)

	// Void cancels a POSTED entry by posting a mirrored reversal dated at
	// the void date and linking the two; the original's lines are never
	// altered. Fails with apperrors.ErrEntryNotPosted or
	// apperrors.ErrPeriodClosed (the void date's period governs).
	Void(ctx context.Context, tenantID, entryID string, req dto.VoidEntryRequest, actor string) (*domain.JournalEntry, error)

	// RecordTransaction is the one inbound surface for external producers:
	// draft plus post in a single call, returning the posted entry or a
	// named failure with nothing persisted.
	RecordTransaction(ctx context.Context, tenantID string, req dto.RecordTransactionRequest, creator string) (*domain.JournalEntry, error)

	// GetEntry retrieves an entry with its lines.
	GetEntry(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of entries, newest first.
	ListEntries(ctx context.Context, tenantID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}
