package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zenbooks-app/ledger_backend/internal/apperrors"
	"github.com/zenbooks-app/ledger_backend/internal/core/domain"
	portsrepo "github.com/zenbooks-app/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/zenbooks-app/ledger_backend/internal/core/ports/services"
	"github.com/zenbooks-app/ledger_backend/internal/dto"
	"github.com/zenbooks-app/ledger_backend/internal/utils/accounting"
)

// journalService is the journal engine: it exclusively owns entry and
// line state transitions. Posted entries form an append-only log; the
// only way to undo a posting is a mirrored reversal entry.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	accountSvc  portssvc.AccountSvcFacade
	periodSvc   portssvc.PeriodSvcFacade
}

// NewJournalService creates a new journal service.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, accountSvc portssvc.AccountSvcFacade, periodSvc portssvc.PeriodSvcFacade) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo: journalRepo,
		accountSvc:  accountSvc,
		periodSvc:   periodSvc,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// validateLines runs the structural checks plus account validation: every
// referenced account must exist in the tenant and be active.
func (s *journalService) validateLines(ctx context.Context, tenantID string, lines []domain.JournalLine) error {
	if err := accounting.ValidateEntryLines(lines); err != nil {
		return err
	}

	accountIDs := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.AccountID]; ok {
			continue
		}
		seen[line.AccountID] = struct{}{}
		accountIDs = append(accountIDs, line.AccountID)
	}

	accounts, err := s.accountSvc.GetAccountsByIDs(ctx, tenantID, accountIDs)
	if err != nil {
		return fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, id := range accountIDs {
		account, found := accounts[id]
		if !found {
			return fmt.Errorf("%w: account %s not found", apperrors.ErrInvalidAccount, id)
		}
		if !account.IsActive {
			return fmt.Errorf("%w: account %s is inactive", apperrors.ErrInvalidAccount, id)
		}
	}
	return nil
}

// buildDraft assembles a DRAFT entry with fresh IDs and audit fields.
func (s *journalService) buildDraft(tenantID string, entryDate time.Time, description string, sourceRef *string, lines []domain.JournalLine, creator string, now time.Time) (domain.JournalEntry, []domain.JournalLine) {
	entryID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creator,
		LastUpdatedAt: now,
		LastUpdatedBy: creator,
	}

	entry := domain.JournalEntry{
		EntryID:     entryID,
		TenantID:    tenantID,
		EntryDate:   entryDate,
		Description: description,
		Status:      domain.Draft,
		SourceRef:   sourceRef,
		AuditFields: audit,
	}

	entryLines := make([]domain.JournalLine, len(lines))
	for i, line := range lines {
		line.LineID = uuid.NewString()
		line.EntryID = entryID
		line.AuditFields = audit
		entryLines[i] = line
	}
	return entry, entryLines
}

// CreateDraft validates and stores a DRAFT entry. Drafts never touch the
// projector and never consume entry numbers.
func (s *journalService) CreateDraft(ctx context.Context, tenantID string, req dto.CreateEntryRequest, creator string) (*domain.JournalEntry, error) {
	lines := dto.ToDomainLines(req.Lines)
	if err := s.validateLines(ctx, tenantID, lines); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry, entryLines := s.buildDraft(tenantID, req.EntryDate, req.Description, req.SourceRef, lines, creator, now)

	if err := s.journalRepo.SaveDraft(ctx, entry, entryLines); err != nil {
		s.LogError(ctx, err, "Failed to save draft entry", slog.String("entry_id", entry.EntryID))
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	entry.Lines = entryLines
	s.LogInfo(ctx, "Draft entry created",
		slog.String("entry_id", entry.EntryID),
		slog.String("tenant_id", tenantID),
		slog.Int("line_count", len(entryLines)))
	return &entry, nil
}

// UpdateDraft mutates a DRAFT entry's date, description, or lines.
func (s *journalService) UpdateDraft(ctx context.Context, tenantID, entryID string, req dto.UpdateEntryRequest, actor string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.Draft {
		return nil, fmt.Errorf("%w: entry %s has status %s", apperrors.ErrEntryNotDraft, entryID, entry.Status)
	}

	if req.EntryDate != nil {
		entry.EntryDate = *req.EntryDate
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}

	var lines []domain.JournalLine
	if req.Lines != nil {
		lines = dto.ToDomainLines(*req.Lines)
		if err := s.validateLines(ctx, tenantID, lines); err != nil {
			return nil, err
		}
	} else {
		lines, err = s.journalRepo.FindLinesByEntryID(ctx, entryID)
		if err != nil {
			s.LogError(ctx, err, "Failed to fetch draft lines for update", slog.String("entry_id", entryID))
			return nil, fmt.Errorf("failed to fetch draft lines: %w", err)
		}
	}

	now := time.Now().UTC()
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actor

	if req.Lines != nil {
		audit := domain.AuditFields{CreatedAt: now, CreatedBy: actor, LastUpdatedAt: now, LastUpdatedBy: actor}
		for i := range lines {
			lines[i].LineID = uuid.NewString()
			lines[i].EntryID = entryID
			lines[i].AuditFields = audit
		}
	}

	if err := s.journalRepo.UpdateDraft(ctx, *entry, lines); err != nil {
		s.LogError(ctx, err, "Failed to update draft entry", slog.String("entry_id", entryID))
		return nil, err
	}

	entry.Lines = lines
	s.LogInfo(ctx, "Draft entry updated", slog.String("entry_id", entryID))
	return entry, nil
}

// Post finalizes a draft. The repository performs the authoritative
// transition in one database transaction: it locks the tenant's sequence
// row, re-checks the draft status and open period at that consistency
// point, assigns the next gapless number, and applies the balances. The
// period pre-check here just fails fast with the named error before taking
// the serialization point.
func (s *journalService) Post(ctx context.Context, tenantID, entryID, actor string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.Draft {
		return nil, fmt.Errorf("%w: entry %s has status %s", apperrors.ErrEntryNotDraft, entryID, entry.Status)
	}

	open, err := s.periodSvc.IsOpenForDate(ctx, tenantID, entry.EntryDate)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, fmt.Errorf("%w: entry date %s", apperrors.ErrPeriodClosed, entry.EntryDate.Format("2006-01-02"))
	}

	posted, err := s.journalRepo.PostEntry(ctx, tenantID, entryID, actor, time.Now().UTC())
	if err != nil {
		if !errors.Is(err, apperrors.ErrEntryNotDraft) && !errors.Is(err, apperrors.ErrPeriodClosed) {
			s.LogError(ctx, err, "Failed to post entry", slog.String("entry_id", entryID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Entry posted",
		slog.String("entry_id", entryID),
		slog.String("tenant_id", tenantID),
		slog.Int64("entry_number", *posted.EntryNumber))
	return posted, nil
}

// Void cancels a posted entry by posting its exact mirror dated at the
// void date. The original is marked VOIDED with a back-reference; its
// lines are never altered, preserving the append-only posted log.
func (s *journalService) Void(ctx context.Context, tenantID, entryID string, req dto.VoidEntryRequest, actor string) (*domain.JournalEntry, error) {
	original, err := s.journalRepo.FindEntryByID(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.Posted {
		return nil, fmt.Errorf("%w: entry %s has status %s", apperrors.ErrEntryNotPosted, entryID, original.Status)
	}

	// The reversal is a new posting event, so the void date's period
	// governs the open check, not the original entry's date.
	open, err := s.periodSvc.IsOpenForDate(ctx, tenantID, req.VoidDate)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, fmt.Errorf("%w: void date %s", apperrors.ErrPeriodClosed, req.VoidDate.Format("2006-01-02"))
	}

	originalLines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch lines for void", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to fetch entry lines: %w", err)
	}

	now := time.Now().UTC()
	mirrored := domain.MirrorLines(originalLines)
	reversal, reversalLines := s.buildDraft(tenantID, req.VoidDate,
		fmt.Sprintf("Reversal of entry %s: %s", entryID, original.Description),
		original.SourceRef, mirrored, actor, now)
	reversal.OriginalEntryID = &original.EntryID

	posted, err := s.journalRepo.VoidEntry(ctx, *original, reversal, reversalLines, req.Reason, now)
	if err != nil {
		if !errors.Is(err, apperrors.ErrEntryNotPosted) && !errors.Is(err, apperrors.ErrPeriodClosed) {
			s.LogError(ctx, err, "Failed to void entry", slog.String("entry_id", entryID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Entry voided",
		slog.String("entry_id", entryID),
		slog.String("reversal_entry_id", posted.EntryID),
		slog.String("tenant_id", tenantID))
	return posted, nil
}

// RecordTransaction drafts and posts in one call. This is the only
// inbound surface for external producers; there is no partial success —
// if the post fails, the draft is removed and the named failure returned.
func (s *journalService) RecordTransaction(ctx context.Context, tenantID string, req dto.RecordTransactionRequest, creator string) (*domain.JournalEntry, error) {
	draft, err := s.CreateDraft(ctx, tenantID, dto.CreateEntryRequest{
		EntryDate:   req.EntryDate,
		Description: req.Description,
		SourceRef:   req.SourceRef,
		Lines:       req.Lines,
	}, creator)
	if err != nil {
		return nil, err
	}

	posted, err := s.Post(ctx, tenantID, draft.EntryID, creator)
	if err != nil {
		if cleanupErr := s.journalRepo.DeleteDraft(ctx, tenantID, draft.EntryID); cleanupErr != nil {
			s.LogError(ctx, cleanupErr, "Failed to clean up draft after post failure", slog.String("entry_id", draft.EntryID))
		}
		return nil, err
	}
	return posted, nil
}

// GetEntry retrieves an entry with its lines.
func (s *journalService) GetEntry(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, tenantID, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find entry", slog.String("entry_id", entryID))
		}
		return nil, err
	}

	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch entry lines", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to fetch entry lines: %w", err)
	}
	entry.Lines = lines
	return entry, nil
}

// ListEntries retrieves a paginated list of entries, newest first.
func (s *journalService) ListEntries(ctx context.Context, tenantID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	entries, nextToken, err := s.journalRepo.ListEntries(ctx, tenantID, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list entries", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	return &dto.ListEntriesResponse{
		Entries:   dto.ToEntryResponses(entries),
		NextToken: nextToken,
	}, nil
}
