package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zenbooks-app/ledger_backend/internal/apperrors"
	"github.com/zenbooks-app/ledger_backend/internal/core/domain"
	portsrepo "github.com/zenbooks-app/ledger_backend/internal/core/ports/repositories"
	"github.com/zenbooks-app/ledger_backend/internal/models"
	"github.com/zenbooks-app/ledger_backend/internal/utils/accounting"
	"github.com/zenbooks-app/ledger_backend/internal/utils/mapping"
	"github.com/zenbooks-app/ledger_backend/internal/utils/pagination"
)

const entryColumns = `entry_id, tenant_id, entry_number, entry_date, description, status,
	       source_ref, original_entry_id, reversing_entry_id, void_reason, posted_at, voided_at,
	       created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, account_id, direction, amount, cost_center_id, memo,
	       created_at, created_by, last_updated_at, last_updated_by`

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal-entry data.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

func scanEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.TenantID,
		&m.EntryNumber,
		&m.EntryDate,
		&m.Description,
		&m.Status,
		&m.SourceRef,
		&m.OriginalEntryID,
		&m.ReversingEntryID,
		&m.VoidReason,
		&m.PostedAt,
		&m.VoidedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanLine(row pgx.Row) (models.JournalLine, error) {
	var m models.JournalLine
	err := row.Scan(
		&m.LineID,
		&m.EntryID,
		&m.AccountID,
		&m.Direction,
		&m.Amount,
		&m.CostCenterID,
		&m.Memo,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveDraft persists a DRAFT entry with its lines. No entry number is
// assigned and no balances change.
func (r *PgxJournalRepository) SaveDraft(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := insertEntryTx(ctx, tx, mapping.ToModelEntry(entry)); err != nil {
		return err
	}
	if err := insertLinesTx(ctx, tx, mapping.ToModelLineSlice(lines)); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateDraft replaces a DRAFT entry's mutable fields and lines.
func (r *PgxJournalRepository) UpdateDraft(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	status, err := lockEntryStatusTx(ctx, tx, entry.TenantID, entry.EntryID)
	if err != nil {
		return err
	}
	if status != models.Draft {
		return fmt.Errorf("%w: entry %s has status %s", apperrors.ErrEntryNotDraft, entry.EntryID, status)
	}

	m := mapping.ToModelEntry(entry)
	updateQuery := `
		UPDATE journal_entries
		SET entry_date = $3, description = $4, source_ref = $5, last_updated_at = $6, last_updated_by = $7
		WHERE tenant_id = $1 AND entry_id = $2;
	`
	_, err = tx.Exec(ctx, updateQuery,
		m.TenantID, m.EntryID, m.EntryDate, m.Description, m.SourceRef, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update draft %s: %w", m.EntryID, err)
	}

	if lines != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id = $1;`, m.EntryID); err != nil {
			return fmt.Errorf("failed to delete lines of draft %s: %w", m.EntryID, err)
		}
		if err := insertLinesTx(ctx, tx, mapping.ToModelLineSlice(lines)); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

// DeleteDraft removes a DRAFT entry and its lines.
func (r *PgxJournalRepository) DeleteDraft(ctx context.Context, tenantID, entryID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	status, err := lockEntryStatusTx(ctx, tx, tenantID, entryID)
	if err != nil {
		return err
	}
	if status != models.Draft {
		return fmt.Errorf("%w: entry %s has status %s", apperrors.ErrEntryNotDraft, entryID, status)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id = $1;`, entryID); err != nil {
		return fmt.Errorf("failed to delete lines of draft %s: %w", entryID, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM journal_entries WHERE tenant_id = $1 AND entry_id = $2;`, tenantID, entryID); err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", entryID, err)
	}

	return r.Commit(ctx, tx)
}

// PostEntry atomically assigns the next gapless entry number, flips the
// entry to POSTED, and folds its lines into the cached balances. The
// tenant's sequence row lock serializes concurrent posts, so the period
// check, the number assignment, and the balance application all happen at
// one consistency point.
func (r *PgxJournalRepository) PostEntry(ctx context.Context, tenantID, entryID, postedBy string, postedAt time.Time) (*domain.JournalEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	entryNumber, err := lockNextEntryNumberTx(ctx, tx, tenantID)
	if err != nil {
		return nil, err
	}

	m, err := scanEntry(tx.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE tenant_id = $1 AND entry_id = $2
		FOR UPDATE;
	`, tenantID, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock entry %s: %w", entryID, err)
	}
	if m.Status != models.Draft {
		return nil, fmt.Errorf("%w: entry %s has status %s", apperrors.ErrEntryNotDraft, entryID, m.Status)
	}

	if err := checkPeriodOpenTx(ctx, tx, tenantID, m.EntryDate); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE journal_entries
		SET entry_number = $3, status = 'POSTED', posted_at = $4, last_updated_at = $4, last_updated_by = $5
		WHERE tenant_id = $1 AND entry_id = $2;
	`, tenantID, entryID, entryNumber, postedAt, postedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to post entry %s: %w", entryID, err)
	}

	lines, err := findLinesTx(ctx, tx, entryID)
	if err != nil {
		return nil, err
	}
	if err := applyLinesTx(ctx, tx, tenantID, entryID, lines, postedAt); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	m.EntryNumber = &entryNumber
	m.Status = models.Posted
	m.PostedAt = &postedAt
	m.LastUpdatedAt = postedAt
	m.LastUpdatedBy = postedBy
	posted := mapping.ToDomainEntry(m)
	posted.Lines = mapping.ToDomainLineSlice(lines)
	return &posted, nil
}

// VoidEntry atomically posts the reversal entry, marks the original VOIDED
// with the reason and back-reference, and folds the reversal lines into the
// cached balances. The original's lines are never altered.
func (r *PgxJournalRepository) VoidEntry(ctx context.Context, original domain.JournalEntry, reversal domain.JournalEntry, reversalLines []domain.JournalLine, reason string, voidedAt time.Time) (*domain.JournalEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	entryNumber, err := lockNextEntryNumberTx(ctx, tx, original.TenantID)
	if err != nil {
		return nil, err
	}

	status, err := lockEntryStatusTx(ctx, tx, original.TenantID, original.EntryID)
	if err != nil {
		return nil, err
	}
	if status != models.Posted {
		return nil, fmt.Errorf("%w: entry %s has status %s", apperrors.ErrEntryNotPosted, original.EntryID, status)
	}

	if err := checkPeriodOpenTx(ctx, tx, reversal.TenantID, reversal.EntryDate); err != nil {
		return nil, err
	}

	mReversal := mapping.ToModelEntry(reversal)
	mReversal.EntryNumber = &entryNumber
	mReversal.Status = models.Posted
	mReversal.PostedAt = &voidedAt
	if err := insertEntryTx(ctx, tx, mReversal); err != nil {
		return nil, err
	}
	mLines := mapping.ToModelLineSlice(reversalLines)
	if err := insertLinesTx(ctx, tx, mLines); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE journal_entries
		SET status = 'VOIDED', reversing_entry_id = $3, void_reason = $4, voided_at = $5,
		    last_updated_at = $5, last_updated_by = $6
		WHERE tenant_id = $1 AND entry_id = $2;
	`, original.TenantID, original.EntryID, reversal.EntryID, reason, voidedAt, reversal.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to void entry %s: %w", original.EntryID, err)
	}

	if err := applyLinesTx(ctx, tx, reversal.TenantID, reversal.EntryID, mLines, voidedAt); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	posted := mapping.ToDomainEntry(mReversal)
	posted.Lines = mapping.ToDomainLineSlice(mLines)
	return &posted, nil
}

// FindEntryByID retrieves a journal entry header scoped to a tenant.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE tenant_id = $1 AND entry_id = $2;
	`
	m, err := scanEntry(r.Pool.QueryRow(ctx, query, tenantID, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry by ID %s: %w", entryID, err)
	}
	d := mapping.ToDomainEntry(m)
	return &d, nil
}

// FindLinesByEntryID retrieves all lines of an entry ordered by line id for
// deterministic output.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `
		SELECT ` + lineColumns + `
		FROM journal_lines
		WHERE entry_id = $1
		ORDER BY line_id;
	`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %s: %w", entryID, err)
	}
	defer rows.Close()

	lines := []models.JournalLine{}
	for rows.Next() {
		m, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row for entry %s: %w", entryID, err)
		}
		lines = append(lines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows for entry %s: %w", entryID, err)
	}
	return mapping.ToDomainLineSlice(lines), nil
}

// ListEntries retrieves a paginated list of entries for a tenant using
// token-based pagination, newest first.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, tenantID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to determine whether there is a next page.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE tenant_id = $1
	`
	// Ordering must be stable: entry_date DESC with created_at DESC as the
	// tie-breaker, matching the token fields.
	orderByClause := `ORDER BY entry_date DESC, created_at DESC`

	args := []interface{}{tenantID}
	query := baseQuery
	if nextToken != nil && *nextToken != "" {
		lastEntryDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, decodeErr)
		}
		query += ` AND (entry_date, created_at) < ($2, $3)`
		args = append(args, lastEntryDate, lastCreatedAt)
	}
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query entries for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating entry rows: %w", err)
	}

	var nextTokenVal *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		nextTokenVal = &token
		entries = entries[:limit]
	}

	return mapping.ToDomainEntrySlice(entries), nextTokenVal, nil
}

func insertEntryTx(ctx context.Context, tx pgx.Tx, m models.JournalEntry) error {
	query := `
		INSERT INTO journal_entries (
			entry_id, tenant_id, entry_number, entry_date, description, status,
			source_ref, original_entry_id, reversing_entry_id, void_reason, posted_at, voided_at,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := tx.Exec(ctx, query,
		m.EntryID,
		m.TenantID,
		m.EntryNumber,
		m.EntryDate,
		m.Description,
		m.Status,
		m.SourceRef,
		m.OriginalEntryID,
		m.ReversingEntryID,
		m.VoidReason,
		m.PostedAt,
		m.VoidedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry %s: %w", m.EntryID, err)
	}
	return nil
}

func insertLinesTx(ctx context.Context, tx pgx.Tx, lines []models.JournalLine) error {
	batch := &pgx.Batch{}
	query := `
		INSERT INTO journal_lines (
			line_id, entry_id, account_id, direction, amount, cost_center_id, memo,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	for _, m := range lines {
		batch.Queue(query,
			m.LineID,
			m.EntryID,
			m.AccountID,
			m.Direction,
			m.Amount,
			m.CostCenterID,
			m.Memo,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to execute line insert batch: %w", err)
	}
	return nil
}

func findLinesTx(ctx context.Context, tx pgx.Tx, entryID string) ([]models.JournalLine, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+lineColumns+`
		FROM journal_lines
		WHERE entry_id = $1
		ORDER BY line_id;
	`, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %s: %w", entryID, err)
	}
	defer rows.Close()

	lines := []models.JournalLine{}
	for rows.Next() {
		m, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row for entry %s: %w", entryID, err)
		}
		lines = append(lines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows for entry %s: %w", entryID, err)
	}
	return lines, nil
}

func lockEntryStatusTx(ctx context.Context, tx pgx.Tx, tenantID, entryID string) (models.EntryStatus, error) {
	var status models.EntryStatus
	err := tx.QueryRow(ctx, `
		SELECT status FROM journal_entries
		WHERE tenant_id = $1 AND entry_id = $2
		FOR UPDATE;
	`, tenantID, entryID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("failed to lock entry %s: %w", entryID, err)
	}
	return status, nil
}

// lockTenantSequenceTx creates the tenant's sequence row if absent and
// locks it until the transaction ends. Posts, voids, and period closes all
// take this lock first: it is the tenant's single serialization point, so
// a post that saw an OPEN period cannot commit after a close does.
func lockTenantSequenceTx(ctx context.Context, tx pgx.Tx, tenantID string) (int64, error) {
	_, err := tx.Exec(ctx, `
		INSERT INTO ledger_sequences (tenant_id, next_entry_number)
		VALUES ($1, 1)
		ON CONFLICT (tenant_id) DO NOTHING;
	`, tenantID)
	if err != nil {
		return 0, fmt.Errorf("failed to seed sequence for tenant %s: %w", tenantID, err)
	}

	var next int64
	err = tx.QueryRow(ctx, `
		SELECT next_entry_number FROM ledger_sequences
		WHERE tenant_id = $1
		FOR UPDATE;
	`, tenantID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to lock sequence for tenant %s: %w", tenantID, err)
	}
	return next, nil
}

// lockNextEntryNumberTx locks the tenant's sequence row and increments it.
// Because the row stays locked until commit, an aborted transaction rolls
// the increment back and the numbering stays gapless.
func lockNextEntryNumberTx(ctx context.Context, tx pgx.Tx, tenantID string) (int64, error) {
	next, err := lockTenantSequenceTx(ctx, tx, tenantID)
	if err != nil {
		return 0, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE ledger_sequences SET next_entry_number = $2 WHERE tenant_id = $1;
	`, tenantID, next+1)
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence for tenant %s: %w", tenantID, err)
	}
	return next, nil
}

// checkPeriodOpenTx re-validates the period inside the posting transaction.
// A date with no covering period is treated the same as a closed one.
func checkPeriodOpenTx(ctx context.Context, tx pgx.Tx, tenantID string, date time.Time) error {
	var status models.PeriodStatus
	err := tx.QueryRow(ctx, `
		SELECT status FROM accounting_periods
		WHERE tenant_id = $1 AND $2::date BETWEEN start_date AND end_date;
	`, tenantID, date).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: no accounting period covers %s", apperrors.ErrPeriodClosed, date.Format("2006-01-02"))
		}
		return fmt.Errorf("failed to check period for date %s: %w", date.Format("2006-01-02"), err)
	}
	if status != models.PeriodOpen {
		return fmt.Errorf("%w: period covering %s is %s", apperrors.ErrPeriodClosed, date.Format("2006-01-02"), status)
	}
	return nil
}

// applyLinesTx folds an entry's lines into the cached balances. The
// applied_entries guard makes the fold idempotent per entry.
func applyLinesTx(ctx context.Context, tx pgx.Tx, tenantID, entryID string, lines []models.JournalLine, appliedAt time.Time) error {
	tag, err := tx.Exec(ctx, `
		INSERT INTO applied_entries (tenant_id, entry_id, applied_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, entry_id) DO NOTHING;
	`, tenantID, entryID, appliedAt)
	if err != nil {
		return fmt.Errorf("failed to record applied entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		// Already folded in, nothing to do.
		return nil
	}

	accountIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		accountIDs = append(accountIDs, line.AccountID)
	}
	accountTypes, err := findAccountTypesTx(ctx, tx, tenantID, accountIDs)
	if err != nil {
		return err
	}

	deltas, err := accounting.BalanceChanges(mapping.ToDomainLineSlice(lines), accountTypes)
	if err != nil {
		return fmt.Errorf("failed to net balance changes for entry %s: %w", entryID, err)
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO account_balances (tenant_id, account_id, balance, last_updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, account_id)
		DO UPDATE SET balance = account_balances.balance + EXCLUDED.balance, last_updated_at = EXCLUDED.last_updated_at;
	`
	for accountID, delta := range deltas {
		batch.Queue(query, tenantID, accountID, delta, appliedAt)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to execute balance upsert batch for entry %s: %w", entryID, err)
	}
	return nil
}

func findAccountTypesTx(ctx context.Context, tx pgx.Tx, tenantID string, accountIDs []string) (map[string]domain.AccountType, error) {
	rows, err := tx.Query(ctx, `
		SELECT account_id, account_type FROM accounts
		WHERE tenant_id = $1 AND account_id = ANY($2);
	`, tenantID, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query account types: %w", err)
	}
	defer rows.Close()

	accountTypes := make(map[string]domain.AccountType, len(accountIDs))
	for rows.Next() {
		var accountID string
		var accountType domain.AccountType
		if err := rows.Scan(&accountID, &accountType); err != nil {
			return nil, fmt.Errorf("failed to scan account type row: %w", err)
		}
		accountTypes[accountID] = accountType
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account type rows: %w", err)
	}
	return accountTypes, nil
}
