package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zenbooks-app/ledger_backend/internal/core/domain"
)

// CreateLineRequest defines one debit or credit line of an entry.
type CreateLineRequest struct {
	AccountID    string          `json:"accountID" binding:"required"`
	Direction    string          `json:"direction" binding:"required,oneof=DEBIT CREDIT"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	CostCenterID *string         `json:"costCenterID,omitempty"`
	Memo         string          `json:"memo,omitempty"`
}

// CreateEntryRequest defines the payload for creating a draft journal
// entry. The lines must balance: sum of debits equals sum of credits.
type CreateEntryRequest struct {
	EntryDate   time.Time           `json:"entryDate" binding:"required" time_format:"2006-01-02"`
	Description string              `json:"description" binding:"required,max=500"`
	SourceRef   *string             `json:"sourceRef,omitempty"`
	Lines       []CreateLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// RecordTransactionRequest is the single producer-facing payload: the
// entry is drafted and posted in one call, all or nothing.
type RecordTransactionRequest struct {
	EntryDate   time.Time           `json:"entryDate" binding:"required" time_format:"2006-01-02"`
	Description string              `json:"description" binding:"required,max=500"`
	SourceRef   *string             `json:"sourceRef,omitempty"`
	Lines       []CreateLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// UpdateEntryRequest defines the mutable fields of a DRAFT entry. Nil
// fields are left unchanged; non-nil Lines replace the draft's lines.
type UpdateEntryRequest struct {
	EntryDate   *time.Time           `json:"entryDate,omitempty" time_format:"2006-01-02"`
	Description *string              `json:"description,omitempty"`
	Lines       *[]CreateLineRequest `json:"lines,omitempty" binding:"omitempty,min=2,dive"`
}

// VoidEntryRequest defines the payload for voiding a posted entry.
// The void date's period governs the open-period check, since the
// reversal is itself a new posting event.
type VoidEntryRequest struct {
	Reason   string    `json:"reason" binding:"required,max=500"`
	VoidDate time.Time `json:"voidDate" binding:"required" time_format:"2006-01-02"`
}

// LineResponse defines the data returned for a journal line.
type LineResponse struct {
	LineID       string          `json:"lineID"`
	AccountID    string          `json:"accountID"`
	Direction    string          `json:"direction"`
	Amount       decimal.Decimal `json:"amount"`
	CostCenterID *string         `json:"costCenterID,omitempty"`
	Memo         string          `json:"memo,omitempty"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID          string         `json:"entryID"`
	EntryNumber      *int64         `json:"entryNumber,omitempty"`
	EntryDate        time.Time      `json:"entryDate"`
	Description      string         `json:"description"`
	Status           string         `json:"status"`
	SourceRef        *string        `json:"sourceRef,omitempty"`
	OriginalEntryID  *string        `json:"originalEntryID,omitempty"`
	ReversingEntryID *string        `json:"reversingEntryID,omitempty"`
	VoidReason       *string        `json:"voidReason,omitempty"`
	PostedAt         *time.Time     `json:"postedAt,omitempty"`
	VoidedAt         *time.Time     `json:"voidedAt,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	Lines            []LineResponse `json:"lines,omitempty"`
}

// ListEntriesParams holds parameters for listing journal entries.
type ListEntriesParams struct {
	Limit     int     `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListEntriesResponse wraps a page of entries plus the next-page token.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToLineResponse converts a domain.JournalLine to a DTO.
func ToLineResponse(l *domain.JournalLine) LineResponse {
	return LineResponse{
		LineID:       l.LineID,
		AccountID:    l.AccountID,
		Direction:    string(l.Direction),
		Amount:       l.Amount,
		CostCenterID: l.CostCenterID,
		Memo:         l.Memo,
	}
}

// ToEntryResponse converts a domain.JournalEntry (with any loaded lines)
// to a DTO.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	resp := EntryResponse{
		EntryID:          e.EntryID,
		EntryNumber:      e.EntryNumber,
		EntryDate:        e.EntryDate,
		Description:      e.Description,
		Status:           string(e.Status),
		SourceRef:        e.SourceRef,
		OriginalEntryID:  e.OriginalEntryID,
		ReversingEntryID: e.ReversingEntryID,
		VoidReason:       e.VoidReason,
		PostedAt:         e.PostedAt,
		VoidedAt:         e.VoidedAt,
		CreatedAt:        e.CreatedAt,
	}
	for i := range e.Lines {
		resp.Lines = append(resp.Lines, ToLineResponse(&e.Lines[i]))
	}
	return resp
}

// ToEntryResponses converts a slice of domain.JournalEntry to DTOs.
func ToEntryResponses(entries []domain.JournalEntry) []EntryResponse {
	responses := make([]EntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToEntryResponse(&entries[i])
	}
	return responses
}

// ToDomainLines converts line requests into domain lines. IDs and audit
// fields are filled by the service.
func ToDomainLines(lines []CreateLineRequest) []domain.JournalLine {
	domainLines := make([]domain.JournalLine, len(lines))
	for i, l := range lines {
		domainLines[i] = domain.JournalLine{
			AccountID:    l.AccountID,
			Direction:    domain.Direction(l.Direction),
			Amount:       l.Amount,
			CostCenterID: l.CostCenterID,
			Memo:         l.Memo,
		}
	}
	return domainLines
}
