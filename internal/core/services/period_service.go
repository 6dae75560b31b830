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
)

// periodService owns the calendar of accounting periods.
type periodService struct {
	BaseService
	periodRepo portsrepo.PeriodRepositoryFacade
}

// NewPeriodService creates a new period service.
func NewPeriodService(periodRepo portsrepo.PeriodRepositoryFacade) portssvc.PeriodSvcFacade {
	return &periodService{periodRepo: periodRepo}
}

var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

// CreatePeriod registers a new accounting period. Periods must tile the
// calendar: the new period may not intersect any existing one, and once a
// period exists, the next one must start the day after the latest end.
func (s *periodService) CreatePeriod(ctx context.Context, tenantID string, req dto.CreatePeriodRequest, creator string) (*domain.AccountingPeriod, error) {
	start := dateOnly(req.StartDate)
	end := dateOnly(req.EndDate)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %s is before start date %s",
			apperrors.ErrValidation, end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	existing, err := s.periodRepo.ListPeriods(ctx, tenantID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list periods for tiling check", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}

	for _, p := range existing {
		if p.Overlaps(start, end) {
			return nil, fmt.Errorf("%w: %s intersects period %s (%s to %s)",
				apperrors.ErrPeriodOverlap, req.Name, p.Name,
				p.StartDate.Format("2006-01-02"), p.EndDate.Format("2006-01-02"))
		}
	}

	if len(existing) > 0 {
		latest := existing[0]
		for _, p := range existing[1:] {
			if p.EndDate.After(latest.EndDate) {
				latest = p
			}
		}
		expectedStart := dateOnly(latest.EndDate).AddDate(0, 0, 1)
		if !start.Equal(expectedStart) {
			return nil, fmt.Errorf("%w: period must start on %s, got %s",
				apperrors.ErrPeriodGap, expectedStart.Format("2006-01-02"), start.Format("2006-01-02"))
		}
	}

	now := time.Now().UTC()
	period := domain.AccountingPeriod{
		PeriodID:  uuid.NewString(),
		TenantID:  tenantID,
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
		Status:    domain.PeriodOpen,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creator,
			LastUpdatedAt: now,
			LastUpdatedBy: creator,
		},
	}

	if err := s.periodRepo.SavePeriod(ctx, period); err != nil {
		if errors.Is(err, apperrors.ErrPeriodOverlap) {
			// Lost a race on the tenant's period exclusion constraint.
			return nil, err
		}
		s.LogError(ctx, err, "Failed to save period", slog.String("period_id", period.PeriodID))
		return nil, fmt.Errorf("failed to save period: %w", err)
	}

	s.LogInfo(ctx, "Period created successfully",
		slog.String("period_id", period.PeriodID),
		slog.String("tenant_id", tenantID),
		slog.String("start", start.Format("2006-01-02")),
		slog.String("end", end.Format("2006-01-02")))
	return &period, nil
}

// ClosePeriod transitions a period OPEN -> CLOSED. Periods close in
// chronological order only. The repository performs the flip and the
// audit record in one transaction under the tenant's serialization lock,
// re-checking both rules there; the checks here just fail fast.
func (s *periodService) ClosePeriod(ctx context.Context, tenantID, periodID, actor string) (*domain.AccountingPeriod, error) {
	period, err := s.periodRepo.FindPeriodByID(ctx, tenantID, periodID)
	if err != nil {
		return nil, err
	}
	if period.Status != domain.PeriodOpen {
		return nil, fmt.Errorf("%w: period %s has status %s", apperrors.ErrPeriodNotOpen, periodID, period.Status)
	}

	earlierOpen, err := s.periodRepo.HasEarlierOpenPeriod(ctx, tenantID, period.StartDate)
	if err != nil {
		s.LogError(ctx, err, "Failed to check earlier open periods", slog.String("period_id", periodID))
		return nil, fmt.Errorf("failed to check earlier periods: %w", err)
	}
	if earlierOpen {
		return nil, fmt.Errorf("%w: close earlier periods before %s", apperrors.ErrEarlierPeriodOpen, period.Name)
	}

	now := time.Now().UTC()
	action := newPeriodAction(tenantID, periodID, domain.PeriodActionClose, "", actor, now)
	if err := s.periodRepo.ClosePeriod(ctx, tenantID, periodID, action, now); err != nil {
		if errors.Is(err, apperrors.ErrPeriodNotOpen) || errors.Is(err, apperrors.ErrEarlierPeriodOpen) {
			// Lost a race to a concurrent close.
			return nil, err
		}
		s.LogError(ctx, err, "Failed to close period", slog.String("period_id", periodID))
		return nil, fmt.Errorf("failed to close period: %w", err)
	}

	period.Status = domain.PeriodClosed
	period.ClosedAt = &now
	period.LastUpdatedAt = now
	period.LastUpdatedBy = actor

	s.LogInfo(ctx, "Period closed successfully", slog.String("period_id", periodID), slog.String("tenant_id", tenantID))
	return period, nil
}

// ReopenPeriod reverses a close as a distinct, audited administrative
// action. The reason is mandatory and recorded alongside the actor.
func (s *periodService) ReopenPeriod(ctx context.Context, tenantID, periodID, reason, actor string) (*domain.AccountingPeriod, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: reopen reason is required", apperrors.ErrValidation)
	}

	period, err := s.periodRepo.FindPeriodByID(ctx, tenantID, periodID)
	if err != nil {
		return nil, err
	}
	if period.Status != domain.PeriodClosed {
		return nil, fmt.Errorf("%w: period %s is not closed", apperrors.ErrValidation, periodID)
	}

	now := time.Now().UTC()
	action := newPeriodAction(tenantID, periodID, domain.PeriodActionReopen, reason, actor, now)
	if err := s.periodRepo.ReopenPeriod(ctx, tenantID, periodID, action, now); err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to reopen period", slog.String("period_id", periodID))
		return nil, fmt.Errorf("failed to reopen period: %w", err)
	}

	period.Status = domain.PeriodOpen
	period.ClosedAt = nil
	period.LastUpdatedAt = now
	period.LastUpdatedBy = actor

	s.LogInfo(ctx, "Period reopened",
		slog.String("period_id", periodID),
		slog.String("tenant_id", tenantID),
		slog.String("actor", actor),
		slog.String("reason", reason))
	return period, nil
}

// IsOpenForDate reports whether a posting dated at the given date would be
// accepted. A date not covered by any period counts as closed.
func (s *periodService) IsOpenForDate(ctx context.Context, tenantID string, date time.Time) (bool, error) {
	period, err := s.periodRepo.FindPeriodForDate(ctx, tenantID, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		s.LogError(ctx, err, "Failed to resolve period for date", slog.String("date", date.Format("2006-01-02")))
		return false, fmt.Errorf("failed to resolve period: %w", err)
	}
	return period.Status == domain.PeriodOpen, nil
}

// ListPeriods retrieves the tenant's periods ordered by start date.
func (s *periodService) ListPeriods(ctx context.Context, tenantID string) ([]domain.AccountingPeriod, error) {
	periods, err := s.periodRepo.ListPeriods(ctx, tenantID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list periods", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	if periods == nil {
		return []domain.AccountingPeriod{}, nil
	}
	return periods, nil
}

func newPeriodAction(tenantID, periodID string, action domain.PeriodActionType, reason, actor string, now time.Time) domain.PeriodAction {
	return domain.PeriodAction{
		ActionID: uuid.NewString(),
		PeriodID: periodID,
		TenantID: tenantID,
		Action:   action,
		Reason:   reason,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		},
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
