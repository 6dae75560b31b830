package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zenbooks-app/ledger_backend/internal/core/domain"
	portsrepo "github.com/zenbooks-app/ledger_backend/internal/core/ports/repositories"
	"github.com/zenbooks-app/ledger_backend/internal/models"
	"github.com/zenbooks-app/ledger_backend/internal/utils/mapping"
)

type PgxReportingRepository struct {
	BaseRepository
}

// newPgxReportingRepository creates a new repository for report source data.
func newPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &PgxReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxReportingRepository implements portsrepo.ReportingRepository
var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// AccountBalancesAsOf returns every account for the tenant with its signed
// balance from posted lines dated <= asOf. Accounts without activity come
// back with a zero balance so reports can still list them.
func (r *PgxReportingRepository) AccountBalancesAsOf(ctx context.Context, tenantID string, asOf time.Time) ([]domain.AccountBalance, error) {
	query := `
		SELECT a.account_id, a.code, a.name, a.account_type, a.cash_flow_category,
		       a.is_cash_equivalent, a.is_active,
		       COALESCE(SUM(` + signedAmountSQL + `) FILTER (
		           WHERE e.entry_number IS NOT NULL AND e.entry_date <= $2::date
		       ), 0) AS balance
		FROM accounts a
		LEFT JOIN journal_lines l ON l.account_id = a.account_id
		LEFT JOIN journal_entries e ON e.entry_id = l.entry_id AND e.tenant_id = a.tenant_id
		WHERE a.tenant_id = $1
		GROUP BY a.account_id, a.code, a.name, a.account_type, a.cash_flow_category,
		         a.is_cash_equivalent, a.is_active
		ORDER BY a.code;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query account balances for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	balances := []domain.AccountBalance{}
	for rows.Next() {
		var b domain.AccountBalance
		err := rows.Scan(
			&b.AccountID,
			&b.Code,
			&b.Name,
			&b.AccountType,
			&b.CashFlowCategory,
			&b.IsCashEquivalent,
			&b.IsActive,
			&b.Balance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account balance row: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account balance rows: %w", err)
	}
	return balances, nil
}

// PostedEntriesInRange returns POSTED and VOIDED entries dated in [from, to]
// with lines populated, ordered by entry number ascending.
func (r *PgxReportingRepository) PostedEntriesInRange(ctx context.Context, tenantID string, from, to time.Time) ([]domain.JournalEntry, error) {
	entryQuery := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE tenant_id = $1
		  AND entry_number IS NOT NULL
		  AND entry_date BETWEEN $2::date AND $3::date
		ORDER BY entry_number;
	`
	rows, err := r.Pool.Query(ctx, entryQuery, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries in range for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	modelEntries := []models.JournalEntry{}
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		modelEntries = append(modelEntries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows: %w", err)
	}
	rows.Close()

	entries := mapping.ToDomainEntrySlice(modelEntries)
	if len(entries) == 0 {
		return entries, nil
	}

	entryIDs := make([]string, len(entries))
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		entryIDs[i] = e.EntryID
		index[e.EntryID] = i
	}

	lineQuery := `
		SELECT ` + lineColumns + `
		FROM journal_lines
		WHERE entry_id = ANY($1)
		ORDER BY entry_id, line_id;
	`
	lineRows, err := r.Pool.Query(ctx, lineQuery, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entries in range: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		m, err := scanLine(lineRows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row: %w", err)
		}
		if i, ok := index[m.EntryID]; ok {
			entries[i].Lines = append(entries[i].Lines, mapping.ToDomainLine(m))
		}
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows: %w", err)
	}
	return entries, nil
}

// LedgerActivityInRange returns per-account line activity for entries dated
// in [from, to], in entry-number order, optionally filtered to one account.
func (r *PgxReportingRepository) LedgerActivityInRange(ctx context.Context, tenantID string, from, to time.Time, accountID *string) ([]domain.LedgerAccountActivity, error) {
	query := `
		SELECT a.account_id, a.code, a.name, a.account_type,
		       e.entry_id, e.entry_number, e.entry_date, e.description,
		       l.direction, l.amount, l.memo
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		JOIN accounts a ON l.account_id = a.account_id AND a.tenant_id = e.tenant_id
		WHERE e.tenant_id = $1
		  AND e.entry_number IS NOT NULL
		  AND e.entry_date BETWEEN $2::date AND $3::date
	`
	args := []interface{}{tenantID, from, to}
	if accountID != nil && *accountID != "" {
		query += ` AND a.account_id = $4`
		args = append(args, *accountID)
	}
	query += ` ORDER BY a.code, e.entry_number, l.line_id;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger activity for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	activity := []domain.LedgerAccountActivity{}
	var current *domain.LedgerAccountActivity
	for rows.Next() {
		var (
			acctID      string
			code        string
			name        string
			accountType domain.AccountType
			line        domain.LedgerLine
		)
		err := rows.Scan(
			&acctID,
			&code,
			&name,
			&accountType,
			&line.EntryID,
			&line.EntryNumber,
			&line.EntryDate,
			&line.Description,
			&line.Direction,
			&line.Amount,
			&line.Memo,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger activity row: %w", err)
		}

		if current == nil || current.AccountID != acctID {
			activity = append(activity, domain.LedgerAccountActivity{
				AccountID:   acctID,
				Code:        code,
				AccountName: name,
				AccountType: accountType,
				Lines:       []domain.LedgerLine{},
			})
			current = &activity[len(activity)-1]
		}
		current.Lines = append(current.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger activity rows: %w", err)
	}
	return activity, nil
}
