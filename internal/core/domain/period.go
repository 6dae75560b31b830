package domain

import "time"

// PeriodStatus indicates whether an accounting period accepts postings.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
)

// AccountingPeriod is a calendar interval postings must fall into.
// Periods for a tenant tile the calendar: no overlaps ever, and no gaps
// once a second period exists.
type AccountingPeriod struct {
	PeriodID  string       `json:"periodID"` // Primary Key (UUID)
	TenantID  string       `json:"tenantID"`
	Name      string       `json:"name"`      // e.g. "January 2024"
	StartDate time.Time    `json:"startDate"` // Inclusive (date precision)
	EndDate   time.Time    `json:"endDate"`   // Inclusive (date precision)
	Status    PeriodStatus `json:"status"`
	ClosedAt  *time.Time   `json:"closedAt,omitempty"`
	AuditFields
}

// Contains reports whether the given date falls inside the period.
// Comparison is at date precision; time-of-day is ignored.
func (p AccountingPeriod) Contains(date time.Time) bool {
	d := truncateToDate(date)
	return !d.Before(truncateToDate(p.StartDate)) && !d.After(truncateToDate(p.EndDate))
}

// Overlaps reports whether the [start, end] range intersects the period.
func (p AccountingPeriod) Overlaps(start, end time.Time) bool {
	s := truncateToDate(start)
	e := truncateToDate(end)
	return !e.Before(truncateToDate(p.StartDate)) && !s.After(truncateToDate(p.EndDate))
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PeriodActionType names an administrative change to a period's status.
type PeriodActionType string

const (
	PeriodActionClose  PeriodActionType = "CLOSE"
	PeriodActionReopen PeriodActionType = "REOPEN"
)

// PeriodAction is the audit record for a period close or reopen. Reopening
// is a distinct administrative action with a recorded reason, never a plain
// status flip.
type PeriodAction struct {
	ActionID string           `json:"actionID"` // Primary Key (UUID)
	PeriodID string           `json:"periodID"`
	TenantID string           `json:"tenantID"`
	Action   PeriodActionType `json:"action"`
	Reason   string           `json:"reason"` // Required for REOPEN
	AuditFields
}
