package services

import (
	"context"
	"time"

	"github.com/zenbooks-app/ledger_backend/internal/core/domain"
	"github.com/zenbooks-app/ledger_backend/internal/dto"
)

// PeriodSvcFacade defines the accounting-period lifecycle operations.
type PeriodSvcFacade interface {
	// CreatePeriod registers a new period. Fails with
	// apperrors.ErrPeriodOverlap when it intersects an existing period and
	// apperrors.ErrPeriodGap when it does not abut the latest period's end.
	CreatePeriod(ctx context.Context, tenantID string, req dto.CreatePeriodRequest, creator string) (*domain.AccountingPeriod, error)

	// ClosePeriod transitions OPEN -> CLOSED. Fails with
	// apperrors.ErrPeriodNotOpen when already closed and
	// apperrors.ErrEarlierPeriodOpen when an earlier period is still open.
	ClosePeriod(ctx context.Context, tenantID, periodID, actor string) (*domain.AccountingPeriod, error)

	// ReopenPeriod is the audited administrative reversal of a close. It
	// records the actor and reason; it is not a plain status flip.
	ReopenPeriod(ctx context.Context, tenantID, periodID, reason, actor string) (*domain.AccountingPeriod, error)

	// IsOpenForDate reports whether the period containing the date exists
	// and is OPEN. This is the single query the journal engine relies on.
	IsOpenForDate(ctx context.Context, tenantID string, date time.Time) (bool, error)

	// ListPeriods retrieves all periods for a tenant ordered by start date.
	ListPeriods(ctx context.Context, tenantID string) ([]domain.AccountingPeriod, error)
}
