package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zenbooks-app/ledger_backend/internal/apperrors"
	"github.com/zenbooks-app/ledger_backend/internal/core/domain"
	portsrepo "github.com/zenbooks-app/ledger_backend/internal/core/ports/repositories"
	"github.com/zenbooks-app/ledger_backend/internal/models"
	"github.com/zenbooks-app/ledger_backend/internal/utils/mapping"
)

const periodColumns = `period_id, tenant_id, name, start_date, end_date, status, closed_at,
	       created_at, created_by, last_updated_at, last_updated_by`

type PgxPeriodRepository struct {
	BaseRepository
}

// newPgxPeriodRepository creates a new repository for accounting-period data.
func newPgxPeriodRepository(pool *pgxpool.Pool) portsrepo.PeriodRepositoryFacade {
	return &PgxPeriodRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxPeriodRepository implements portsrepo.PeriodRepositoryFacade
var _ portsrepo.PeriodRepositoryFacade = (*PgxPeriodRepository)(nil)

func scanPeriod(row pgx.Row) (models.AccountingPeriod, error) {
	var m models.AccountingPeriod
	err := row.Scan(
		&m.PeriodID,
		&m.TenantID,
		&m.Name,
		&m.StartDate,
		&m.EndDate,
		&m.Status,
		&m.ClosedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SavePeriod inserts a new accounting period. The tenant's period
// exclusion constraint backs the overlap rule, so a race between two
// creates surfaces as apperrors.ErrPeriodOverlap.
func (r *PgxPeriodRepository) SavePeriod(ctx context.Context, period domain.AccountingPeriod) error {
	m := mapping.ToModelPeriod(period)
	query := `
		INSERT INTO accounting_periods (
			period_id, tenant_id, name, start_date, end_date, status, closed_at,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.PeriodID,
		m.TenantID,
		m.Name,
		m.StartDate,
		m.EndDate,
		m.Status,
		m.ClosedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23P01" { // Exclusion violation
				return fmt.Errorf("%w: period %s intersects an existing period for tenant %s",
					apperrors.ErrPeriodOverlap, m.Name, m.TenantID)
			}
		}
		return fmt.Errorf("failed to insert period %s: %w", m.PeriodID, err)
	}
	return nil
}

// FindPeriodByID retrieves a period scoped to a tenant.
func (r *PgxPeriodRepository) FindPeriodByID(ctx context.Context, tenantID, periodID string) (*domain.AccountingPeriod, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM accounting_periods
		WHERE tenant_id = $1 AND period_id = $2;
	`
	m, err := scanPeriod(r.Pool.QueryRow(ctx, query, tenantID, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find period by ID %s: %w", periodID, err)
	}
	d := mapping.ToDomainPeriod(m)
	return &d, nil
}

// FindPeriodForDate retrieves the period containing the given date.
func (r *PgxPeriodRepository) FindPeriodForDate(ctx context.Context, tenantID string, date time.Time) (*domain.AccountingPeriod, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM accounting_periods
		WHERE tenant_id = $1 AND $2::date BETWEEN start_date AND end_date;
	`
	m, err := scanPeriod(r.Pool.QueryRow(ctx, query, tenantID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find period for date %s: %w", date.Format("2006-01-02"), err)
	}
	d := mapping.ToDomainPeriod(m)
	return &d, nil
}

// FindLatestPeriod retrieves the period with the greatest end date.
func (r *PgxPeriodRepository) FindLatestPeriod(ctx context.Context, tenantID string) (*domain.AccountingPeriod, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM accounting_periods
		WHERE tenant_id = $1
		ORDER BY end_date DESC
		LIMIT 1;
	`
	m, err := scanPeriod(r.Pool.QueryRow(ctx, query, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find latest period for tenant %s: %w", tenantID, err)
	}
	d := mapping.ToDomainPeriod(m)
	return &d, nil
}

// ListPeriods retrieves all periods for a tenant ordered by start date.
func (r *PgxPeriodRepository) ListPeriods(ctx context.Context, tenantID string) ([]domain.AccountingPeriod, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM accounting_periods
		WHERE tenant_id = $1
		ORDER BY start_date;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query periods for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	periods := []models.AccountingPeriod{}
	for rows.Next() {
		m, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan period row: %w", err)
		}
		periods = append(periods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating period rows: %w", err)
	}
	return mapping.ToDomainPeriodSlice(periods), nil
}

// HasEarlierOpenPeriod reports whether any OPEN period starts before the
// given date.
func (r *PgxPeriodRepository) HasEarlierOpenPeriod(ctx context.Context, tenantID string, before time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM accounting_periods
			WHERE tenant_id = $1 AND status = 'OPEN' AND start_date < $2::date
		);
	`
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, tenantID, before).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check earlier open periods: %w", err)
	}
	return exists, nil
}

// ClosePeriod atomically flips a period to CLOSED and appends the audit
// action. The tenant's sequence row is locked first, the same lock posts
// and voids take, so an in-flight post that already saw the period OPEN
// must commit or abort before the close proceeds. Status and the
// chronological-order rule are re-checked under that lock.
func (r *PgxPeriodRepository) ClosePeriod(ctx context.Context, tenantID, periodID string, action domain.PeriodAction, closedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := lockTenantSequenceTx(ctx, tx, tenantID); err != nil {
		return err
	}

	status, startDate, err := lockPeriodTx(ctx, tx, tenantID, periodID)
	if err != nil {
		return err
	}
	if status != models.PeriodOpen {
		return fmt.Errorf("%w: period %s has status %s", apperrors.ErrPeriodNotOpen, periodID, status)
	}

	var earlierOpen bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM accounting_periods
			WHERE tenant_id = $1 AND status = 'OPEN' AND start_date < $2::date AND period_id <> $3
		);
	`, tenantID, startDate, periodID).Scan(&earlierOpen)
	if err != nil {
		return fmt.Errorf("failed to check earlier open periods: %w", err)
	}
	if earlierOpen {
		return fmt.Errorf("%w: an earlier period is still open", apperrors.ErrEarlierPeriodOpen)
	}

	_, err = tx.Exec(ctx, `
		UPDATE accounting_periods
		SET status = 'CLOSED', closed_at = $3, last_updated_at = $3, last_updated_by = $4
		WHERE tenant_id = $1 AND period_id = $2;
	`, tenantID, periodID, closedAt, action.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to close period %s: %w", periodID, err)
	}

	if err := insertPeriodActionTx(ctx, tx, mapping.ToModelPeriodAction(action)); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// ReopenPeriod atomically flips a period back to OPEN and appends the
// audit action, so the mandatory reason can never be lost to a partial
// failure.
func (r *PgxPeriodRepository) ReopenPeriod(ctx context.Context, tenantID, periodID string, action domain.PeriodAction, reopenedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	status, _, err := lockPeriodTx(ctx, tx, tenantID, periodID)
	if err != nil {
		return err
	}
	if status != models.PeriodClosed {
		return fmt.Errorf("%w: period %s is not closed", apperrors.ErrValidation, periodID)
	}

	_, err = tx.Exec(ctx, `
		UPDATE accounting_periods
		SET status = 'OPEN', closed_at = NULL, last_updated_at = $3, last_updated_by = $4
		WHERE tenant_id = $1 AND period_id = $2;
	`, tenantID, periodID, reopenedAt, action.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to reopen period %s: %w", periodID, err)
	}

	if err := insertPeriodActionTx(ctx, tx, mapping.ToModelPeriodAction(action)); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

func lockPeriodTx(ctx context.Context, tx pgx.Tx, tenantID, periodID string) (models.PeriodStatus, time.Time, error) {
	var status models.PeriodStatus
	var startDate time.Time
	err := tx.QueryRow(ctx, `
		SELECT status, start_date FROM accounting_periods
		WHERE tenant_id = $1 AND period_id = $2
		FOR UPDATE;
	`, tenantID, periodID).Scan(&status, &startDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, apperrors.ErrNotFound
		}
		return "", time.Time{}, fmt.Errorf("failed to lock period %s: %w", periodID, err)
	}
	return status, startDate, nil
}

func insertPeriodActionTx(ctx context.Context, tx pgx.Tx, m models.PeriodAction) error {
	query := `
		INSERT INTO period_actions (
			action_id, period_id, tenant_id, action, reason,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := tx.Exec(ctx, query,
		m.ActionID,
		m.PeriodID,
		m.TenantID,
		m.Action,
		m.Reason,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert period action %s: %w", m.ActionID, err)
	}
	return nil
}
