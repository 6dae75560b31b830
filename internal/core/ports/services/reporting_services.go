package services

import (
	"context"
	"time"

	"github.com/zenbooks-app/ledger_backend/internal/core/domain"
)

// ReportingSvcFacade defines the read-only financial reports. The trial
// balance footer, the accounting equation, and the cash flow
// reconciliation are asserted internally; violations surface as
// *apperrors.ConsistencyError, never as a recoverable validation error.
type ReportingSvcFacade interface {
	TrialBalance(ctx context.Context, tenantID string, asOf time.Time) (*domain.TrialBalanceReport, error)
	GeneralJournal(ctx context.Context, tenantID string, from, to time.Time) (*domain.GeneralJournalReport, error)
	GeneralLedger(ctx context.Context, tenantID string, from, to time.Time, accountID *string) (*domain.GeneralLedgerReport, error)
	BalanceSheet(ctx context.Context, tenantID string, asOf time.Time) (*domain.BalanceSheetReport, error)
	IncomeStatement(ctx context.Context, tenantID string, from, to time.Time) (*domain.IncomeStatementReport, error)
	CashFlow(ctx context.Context, tenantID string, from, to time.Time) (*domain.CashFlowReport, error)
}
