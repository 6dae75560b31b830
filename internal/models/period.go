package models

import "time"

// PeriodStatus indicates whether an accounting period accepts postings.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
)

// AccountingPeriod represents a posting interval row.
type AccountingPeriod struct {
	PeriodID  string       `db:"period_id"`
	TenantID  string       `db:"tenant_id"`
	Name      string       `db:"name"`
	StartDate time.Time    `db:"start_date"` // Inclusive
	EndDate   time.Time    `db:"end_date"`   // Inclusive
	Status    PeriodStatus `db:"status"`
	ClosedAt  *time.Time   `db:"closed_at"` // Nullable
	AuditFields
}

// PeriodAction is the audit row for a period close or reopen.
type PeriodAction struct {
	ActionID string `db:"action_id"`
	PeriodID string `db:"period_id"`
	TenantID string `db:"tenant_id"`
	Action   string `db:"action"` // CLOSE or REOPEN
	Reason   string `db:"reason"`
	AuditFields
}
