package dto

import (
	"time"

	"github.com/zenbooks-app/ledger_backend/internal/core/domain"
)

// CreatePeriodRequest defines the payload for creating an accounting
// period. Dates are inclusive and interpreted at date precision.
type CreatePeriodRequest struct {
	Name      string    `json:"name" binding:"required,max=64"`
	StartDate time.Time `json:"startDate" binding:"required" time_format:"2006-01-02"`
	EndDate   time.Time `json:"endDate" binding:"required" time_format:"2006-01-02"`
}

// ReopenPeriodRequest defines the payload for the audited reopen action.
type ReopenPeriodRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// PeriodResponse defines the data returned for an accounting period.
type PeriodResponse struct {
	PeriodID  string     `json:"periodID"`
	Name      string     `json:"name"`
	StartDate time.Time  `json:"startDate"`
	EndDate   time.Time  `json:"endDate"`
	Status    string     `json:"status"`
	ClosedAt  *time.Time `json:"closedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ListPeriodsResponse wraps a list of periods.
type ListPeriodsResponse struct {
	Periods []PeriodResponse `json:"periods"`
}

// ToPeriodResponse converts a domain.AccountingPeriod to a DTO.
func ToPeriodResponse(p *domain.AccountingPeriod) PeriodResponse {
	return PeriodResponse{
		PeriodID:  p.PeriodID,
		Name:      p.Name,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Status:    string(p.Status),
		ClosedAt:  p.ClosedAt,
		CreatedAt: p.CreatedAt,
	}
}

// ToPeriodResponses converts a slice of domain.AccountingPeriod to DTOs.
func ToPeriodResponses(periods []domain.AccountingPeriod) []PeriodResponse {
	responses := make([]PeriodResponse, len(periods))
	for i := range periods {
		responses[i] = ToPeriodResponse(&periods[i])
	}
	return responses
}
