package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	portsrepo "github.com/zenbooks-app/ledger_backend/internal/core/ports/repositories"
)

// signedAmountSQL expresses the normal-side sign convention in SQL: a line
// on the account type's normal side adds, the opposite side subtracts.
const signedAmountSQL = `CASE WHEN (a.account_type IN ('ASSET', 'EXPENSE')) = (l.direction = 'DEBIT')
	            THEN l.amount ELSE -l.amount END`

type PgxProjectionRepository struct {
	BaseRepository
}

// newPgxProjectionRepository creates a new repository for balance projections.
func newPgxProjectionRepository(pool *pgxpool.Pool) portsrepo.ProjectionRepository {
	return &PgxProjectionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxProjectionRepository implements portsrepo.ProjectionRepository
var _ portsrepo.ProjectionRepository = (*PgxProjectionRepository)(nil)

// BalanceAsOf computes one account's signed balance from the posted-entry
// log with entry date <= asOf. Voided entries stay in the log; their
// reversals cancel them, so both are summed.
func (r *PgxProjectionRepository) BalanceAsOf(ctx context.Context, tenantID, accountID string, asOf time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(` + signedAmountSQL + `), 0)
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		JOIN accounts a ON l.account_id = a.account_id AND a.tenant_id = e.tenant_id
		WHERE e.tenant_id = $1
		  AND l.account_id = $2
		  AND e.entry_number IS NOT NULL
		  AND e.entry_date <= $3::date;
	`
	var balance decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, tenantID, accountID, asOf).Scan(&balance); err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute balance for account %s: %w", accountID, err)
	}
	return balance, nil
}

// BalancesAsOf computes signed balances for every account with posted
// activity up to asOf.
func (r *PgxProjectionRepository) BalancesAsOf(ctx context.Context, tenantID string, asOf time.Time) (map[string]decimal.Decimal, error) {
	query := `
		SELECT l.account_id, SUM(` + signedAmountSQL + `)
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		JOIN accounts a ON l.account_id = a.account_id AND a.tenant_id = e.tenant_id
		WHERE e.tenant_id = $1
		  AND e.entry_number IS NOT NULL
		  AND e.entry_date <= $2::date
		GROUP BY l.account_id;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balances for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	balances := make(map[string]decimal.Decimal)
	for rows.Next() {
		var accountID string
		var balance decimal.Decimal
		if err := rows.Scan(&accountID, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan balance row: %w", err)
		}
		balances[accountID] = balance
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance rows: %w", err)
	}
	return balances, nil
}

// CachedBalances returns the incrementally maintained balance table.
func (r *PgxProjectionRepository) CachedBalances(ctx context.Context, tenantID string) (map[string]decimal.Decimal, error) {
	query := `
		SELECT account_id, balance
		FROM account_balances
		WHERE tenant_id = $1;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached balances for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	balances := make(map[string]decimal.Decimal)
	for rows.Next() {
		var accountID string
		var balance decimal.Decimal
		if err := rows.Scan(&accountID, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan cached balance row: %w", err)
		}
		balances[accountID] = balance
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cached balance rows: %w", err)
	}
	return balances, nil
}

// RebuildBalances replays the posted-entry log into the cached balance
// table, replacing its contents. The cache is a projection of the log,
// never an independent source of truth, so a full replay restores it
// after drift or schema surgery.
func (r *PgxProjectionRepository) RebuildBalances(ctx context.Context, tenantID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM account_balances WHERE tenant_id = $1;`, tenantID); err != nil {
		return fmt.Errorf("failed to clear cached balances for tenant %s: %w", tenantID, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM applied_entries WHERE tenant_id = $1;`, tenantID); err != nil {
		return fmt.Errorf("failed to clear applied entries for tenant %s: %w", tenantID, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO account_balances (tenant_id, account_id, balance, last_updated_at)
		SELECT e.tenant_id, l.account_id, SUM(`+signedAmountSQL+`), NOW()
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		JOIN accounts a ON l.account_id = a.account_id AND a.tenant_id = e.tenant_id
		WHERE e.tenant_id = $1 AND e.entry_number IS NOT NULL
		GROUP BY e.tenant_id, l.account_id;
	`, tenantID)
	if err != nil {
		return fmt.Errorf("failed to rebuild cached balances for tenant %s: %w", tenantID, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO applied_entries (tenant_id, entry_id, applied_at)
		SELECT tenant_id, entry_id, NOW()
		FROM journal_entries
		WHERE tenant_id = $1 AND entry_number IS NOT NULL;
	`, tenantID)
	if err != nil {
		return fmt.Errorf("failed to rebuild applied entries for tenant %s: %w", tenantID, err)
	}

	return r.Commit(ctx, tx)
}
