package repositories

import (
	"context"
	"time"

	"github.com/zenbooks-app/ledger_backend/internal/core/domain"
)

// PeriodReader defines read operations for accounting-period data.
type PeriodReader interface {
	// FindPeriodByID retrieves a period scoped to a tenant.
	FindPeriodByID(ctx context.Context, tenantID, periodID string) (*domain.AccountingPeriod, error)

	// FindPeriodForDate retrieves the period containing the given date.
	// Returns apperrors.ErrNotFound when no period covers it.
	FindPeriodForDate(ctx context.Context, tenantID string, date time.Time) (*domain.AccountingPeriod, error)

	// FindLatestPeriod retrieves the period with the greatest end date, or
	// apperrors.ErrNotFound when the tenant has no periods yet.
	FindLatestPeriod(ctx context.Context, tenantID string) (*domain.AccountingPeriod, error)

	// ListPeriods retrieves all periods for a tenant ordered by start date.
	ListPeriods(ctx context.Context, tenantID string) ([]domain.AccountingPeriod, error)

	// HasEarlierOpenPeriod reports whether any period starting before the
	// given date is still OPEN. Periods close in chronological order only.
	HasEarlierOpenPeriod(ctx context.Context, tenantID string, before time.Time) (bool, error)
}

// PeriodWriter defines write operations for accounting-period data.
type PeriodWriter interface {
	// SavePeriod persists a new period. Returns apperrors.ErrPeriodOverlap
	// when the period intersects an existing one for the tenant.
	SavePeriod(ctx context.Context, period domain.AccountingPeriod) error

	// ClosePeriod transitions a period OPEN -> CLOSED and appends the
	// audit action in one transaction. The tenant's sequence row is locked
	// first so the close serializes with concurrent posts and voids; the
	// period's status and the chronological-order rule are re-checked
	// under that lock.
	ClosePeriod(ctx context.Context, tenantID, periodID string, action domain.PeriodAction, closedAt time.Time) error

	// ReopenPeriod transitions a period CLOSED -> OPEN and appends the
	// audit action in one transaction.
	ReopenPeriod(ctx context.Context, tenantID, periodID string, action domain.PeriodAction, reopenedAt time.Time) error
}

// PeriodRepositoryFacade combines all period repository interfaces.
type PeriodRepositoryFacade interface {
	PeriodReader
	PeriodWriter
}
