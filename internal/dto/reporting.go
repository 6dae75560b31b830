package dto

import (
	"time"

	"github.com/zenbooks-app/ledger_backend/internal/core/domain"
)

// Report responses reuse the domain report structures, which are already
// response-shaped, wrapped with the resolved query parameters.

// GeneralJournalResponse is the general journal report with entry DTOs.
type GeneralJournalResponse struct {
	FromDate time.Time       `json:"fromDate"`
	ToDate   time.Time       `json:"toDate"`
	Entries  []EntryResponse `json:"entries"`
}

// ToGeneralJournalResponse converts a domain report to its DTO.
func ToGeneralJournalResponse(r *domain.GeneralJournalReport) GeneralJournalResponse {
	return GeneralJournalResponse{
		FromDate: r.FromDate,
		ToDate:   r.ToDate,
		Entries:  ToEntryResponses(r.Entries),
	}
}
