package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zenbooks-app/ledger_backend/internal/apperrors"
	"github.com/zenbooks-app/ledger_backend/internal/core/domain"
	portsrepo "github.com/zenbooks-app/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/zenbooks-app/ledger_backend/internal/core/ports/services"
	"github.com/zenbooks-app/ledger_backend/internal/utils/accounting"
)

// currentEarningsLabel names the synthetic equity line that carries
// not-yet-closed revenue minus expenses on the balance sheet.
const currentEarningsLabel = "Current Earnings"

// reportingService derives the financial reports from projected balances
// and the posted-entry log. It asserts the ledger's structural invariants
// (trial balance footer, accounting equation, cash reconciliation) and
// raises ConsistencyError when they fail: those are engine bugs, not
// business conditions.
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
}

// NewReportingService creates a new reporting service.
func NewReportingService(reportingRepo portsrepo.ReportingRepository) portssvc.ReportingSvcFacade {
	return &reportingService{reportingRepo: reportingRepo}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// TrialBalance lists every account's balance as of a date, bucketed into
// a debit or credit column per the account's normal side.
func (s *reportingService) TrialBalance(ctx context.Context, tenantID string, asOf time.Time) (*domain.TrialBalanceReport, error) {
	balances, err := s.reportingRepo.AccountBalancesAsOf(ctx, tenantID, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve trial balance data", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to retrieve trial balance data: %w", err)
	}

	report := &domain.TrialBalanceReport{
		AsOf:        asOf,
		Rows:        []domain.TrialBalanceRow{},
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}

	for _, b := range balances {
		// Inactive accounts only appear while they still carry a balance;
		// dropping them would break the footer.
		if !b.IsActive && b.Balance.IsZero() {
			continue
		}
		row := domain.TrialBalanceRow{
			AccountID:   b.AccountID,
			Code:        b.Code,
			AccountName: b.Name,
			AccountType: b.AccountType,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}
		debit, credit := balanceColumns(b.Balance, b.AccountType)
		row.Debit = debit
		row.Credit = credit
		report.Rows = append(report.Rows, row)
		report.TotalDebit = report.TotalDebit.Add(debit)
		report.TotalCredit = report.TotalCredit.Add(credit)
	}

	if !report.TotalDebit.Equal(report.TotalCredit) {
		cerr := apperrors.NewConsistencyError("trial_balance_footer",
			"total debits %s != total credits %s as of %s",
			report.TotalDebit.String(), report.TotalCredit.String(), asOf.Format("2006-01-02"))
		s.LogAlarm(ctx, cerr, "Trial balance footer mismatch", slog.String("tenant_id", tenantID))
		return nil, cerr
	}

	s.LogInfo(ctx, "Trial balance report generated",
		slog.String("tenant_id", tenantID),
		slog.Int("row_count", len(report.Rows)))
	return report, nil
}

// balanceColumns maps a signed normal-side balance into the debit/credit
// columns: a non-negative balance sits on the account's normal side, a
// negative one flips to the opposite column as a positive figure.
func balanceColumns(balance decimal.Decimal, accountType domain.AccountType) (debit, credit decimal.Decimal) {
	debit = decimal.Zero
	credit = decimal.Zero
	side := accountType.NormalSide()
	if balance.IsNegative() {
		side = side.Mirror()
		balance = balance.Neg()
	}
	if side == domain.Debit {
		debit = balance
	} else {
		credit = balance
	}
	return debit, credit
}

// GeneralJournal lists POSTED and VOIDED entries in a date range ordered
// by entry number ascending, the canonical chronological order.
func (s *reportingService) GeneralJournal(ctx context.Context, tenantID string, from, to time.Time) (*domain.GeneralJournalReport, error) {
	entries, err := s.reportingRepo.PostedEntriesInRange(ctx, tenantID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve general journal data", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to retrieve general journal data: %w", err)
	}
	if entries == nil {
		entries = []domain.JournalEntry{}
	}
	return &domain.GeneralJournalReport{FromDate: from, ToDate: to, Entries: entries}, nil
}

// GeneralLedger returns per-account line activity in range, seeded with
// the balance as of the day before the range.
func (s *reportingService) GeneralLedger(ctx context.Context, tenantID string, from, to time.Time, accountID *string) (*domain.GeneralLedgerReport, error) {
	opening := from.AddDate(0, 0, -1)
	openingBalances, err := s.reportingRepo.AccountBalancesAsOf(ctx, tenantID, opening)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve opening balances", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to retrieve opening balances: %w", err)
	}
	openingByAccount := make(map[string]decimal.Decimal, len(openingBalances))
	for _, b := range openingBalances {
		openingByAccount[b.AccountID] = b.Balance
	}

	activity, err := s.reportingRepo.LedgerActivityInRange(ctx, tenantID, from, to, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve ledger activity", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to retrieve ledger activity: %w", err)
	}

	report := &domain.GeneralLedgerReport{FromDate: from, ToDate: to, Accounts: []domain.GeneralLedgerAccount{}}
	for _, acct := range activity {
		openingBalance, ok := openingByAccount[acct.AccountID]
		if !ok {
			openingBalance = decimal.Zero
		}

		section := domain.GeneralLedgerAccount{
			AccountID:      acct.AccountID,
			Code:           acct.Code,
			AccountName:    acct.AccountName,
			AccountType:    acct.AccountType,
			OpeningBalance: openingBalance,
			Lines:          make([]domain.LedgerLine, 0, len(acct.Lines)),
		}

		running := openingBalance
		for _, line := range acct.Lines {
			signed, err := accounting.SignedAmount(domain.JournalLine{
				AccountID: acct.AccountID,
				Direction: line.Direction,
				Amount:    line.Amount,
			}, acct.AccountType)
			if err != nil {
				s.LogError(ctx, err, "Failed to sign ledger line", slog.String("account_id", acct.AccountID))
				return nil, fmt.Errorf("failed to compute running balance: %w", err)
			}
			running = running.Add(signed)
			line.RunningBalance = running
			section.Lines = append(section.Lines, line)
		}
		section.ClosingBalance = running
		report.Accounts = append(report.Accounts, section)
	}

	s.LogInfo(ctx, "General ledger report generated",
		slog.String("tenant_id", tenantID),
		slog.Int("account_count", len(report.Accounts)))
	return report, nil
}

// BalanceSheet builds the Assets, Liabilities and Equity sections as of a
// date. Revenue and expenses not yet closed to equity are folded into a
// synthetic Current Earnings equity line, so the accounting equation must
// hold exactly.
func (s *reportingService) BalanceSheet(ctx context.Context, tenantID string, asOf time.Time) (*domain.BalanceSheetReport, error) {
	balances, err := s.reportingRepo.AccountBalancesAsOf(ctx, tenantID, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve balance sheet data", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to retrieve balance sheet data: %w", err)
	}

	report := &domain.BalanceSheetReport{
		AsOf:             asOf,
		Assets:           []domain.AccountAmount{},
		Liabilities:      []domain.AccountAmount{},
		Equity:           []domain.AccountAmount{},
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}

	currentEarnings := decimal.Zero
	for _, b := range balances {
		if !b.IsActive && b.Balance.IsZero() {
			continue
		}
		amount := domain.AccountAmount{AccountID: b.AccountID, Code: b.Code, Name: b.Name, Amount: b.Balance}
		switch b.AccountType {
		case domain.Asset:
			report.Assets = append(report.Assets, amount)
			report.TotalAssets = report.TotalAssets.Add(b.Balance)
		case domain.Liability:
			report.Liabilities = append(report.Liabilities, amount)
			report.TotalLiabilities = report.TotalLiabilities.Add(b.Balance)
		case domain.Equity:
			report.Equity = append(report.Equity, amount)
			report.TotalEquity = report.TotalEquity.Add(b.Balance)
		case domain.Revenue:
			currentEarnings = currentEarnings.Add(b.Balance)
		case domain.Expense:
			currentEarnings = currentEarnings.Sub(b.Balance)
		}
	}

	if !currentEarnings.IsZero() {
		report.Equity = append(report.Equity, domain.AccountAmount{Name: currentEarningsLabel, Amount: currentEarnings})
		report.TotalEquity = report.TotalEquity.Add(currentEarnings)
	}

	if !report.TotalAssets.Equal(report.TotalLiabilities.Add(report.TotalEquity)) {
		cerr := apperrors.NewConsistencyError("accounting_equation",
			"assets %s != liabilities %s + equity %s as of %s",
			report.TotalAssets.String(), report.TotalLiabilities.String(),
			report.TotalEquity.String(), asOf.Format("2006-01-02"))
		s.LogAlarm(ctx, cerr, "Balance sheet equation mismatch", slog.String("tenant_id", tenantID))
		return nil, cerr
	}

	s.LogInfo(ctx, "Balance sheet report generated", slog.String("tenant_id", tenantID))
	return report, nil
}

// IncomeStatement reports revenue and expense activity as period deltas:
// balance at the range end minus balance the day before the range start.
func (s *reportingService) IncomeStatement(ctx context.Context, tenantID string, from, to time.Time) (*domain.IncomeStatementReport, error) {
	deltas, meta, err := s.periodDeltas(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	report := &domain.IncomeStatementReport{
		FromDate:      from,
		ToDate:        to,
		Revenue:       []domain.AccountAmount{},
		Expenses:      []domain.AccountAmount{},
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
	}

	for accountID, delta := range deltas {
		b := meta[accountID]
		if delta.IsZero() {
			continue
		}
		amount := domain.AccountAmount{AccountID: b.AccountID, Code: b.Code, Name: b.Name, Amount: delta}
		switch b.AccountType {
		case domain.Revenue:
			report.Revenue = append(report.Revenue, amount)
			report.TotalRevenue = report.TotalRevenue.Add(delta)
		case domain.Expense:
			report.Expenses = append(report.Expenses, amount)
			report.TotalExpenses = report.TotalExpenses.Add(delta)
		}
	}

	sortAccountAmounts(report.Revenue)
	sortAccountAmounts(report.Expenses)
	report.NetResult = report.TotalRevenue.Sub(report.TotalExpenses)

	s.LogInfo(ctx, "Income statement report generated",
		slog.String("tenant_id", tenantID),
		slog.String("net_result", report.NetResult.String()))
	return report, nil
}

// CashFlow derives the indirect-method cash flow statement: the net
// result adjusted by balance sheet deltas of non-cash accounts, bucketed
// by each account's cash flow category. The derived net change must equal
// the literal change in cash-equivalent balances over the range.
func (s *reportingService) CashFlow(ctx context.Context, tenantID string, from, to time.Time) (*domain.CashFlowReport, error) {
	income, err := s.IncomeStatement(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	deltas, meta, err := s.periodDeltas(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	report := &domain.CashFlowReport{
		FromDate:       from,
		ToDate:         to,
		NetResult:      income.NetResult,
		Operating:      []domain.AccountAmount{},
		Investing:      []domain.AccountAmount{},
		Financing:      []domain.AccountAmount{},
		TotalOperating: decimal.Zero,
		TotalInvesting: decimal.Zero,
		TotalFinancing: decimal.Zero,
		OpeningCash:    decimal.Zero,
		ClosingCash:    decimal.Zero,
	}

	cashDelta := decimal.Zero
	for accountID, delta := range deltas {
		b := meta[accountID]
		if b.IsCashEquivalent {
			report.OpeningCash = report.OpeningCash.Add(b.Balance.Sub(delta))
			report.ClosingCash = report.ClosingCash.Add(b.Balance)
			cashDelta = cashDelta.Add(delta)
			continue
		}
		// Revenue and expense movement is already inside the net result.
		if b.AccountType == domain.Revenue || b.AccountType == domain.Expense {
			continue
		}
		if delta.IsZero() {
			continue
		}

		// Indirect-method adjustment: growth in a non-cash asset consumes
		// cash; growth in a liability or equity account provides it.
		adjustment := delta
		if b.AccountType == domain.Asset {
			adjustment = adjustment.Neg()
		}

		amount := domain.AccountAmount{AccountID: b.AccountID, Code: b.Code, Name: b.Name, Amount: adjustment}
		switch b.CashFlowCategory {
		case domain.Investing:
			report.Investing = append(report.Investing, amount)
			report.TotalInvesting = report.TotalInvesting.Add(adjustment)
		case domain.Financing:
			report.Financing = append(report.Financing, amount)
			report.TotalFinancing = report.TotalFinancing.Add(adjustment)
		default:
			report.Operating = append(report.Operating, amount)
			report.TotalOperating = report.TotalOperating.Add(adjustment)
		}
	}

	sortAccountAmounts(report.Operating)
	sortAccountAmounts(report.Investing)
	sortAccountAmounts(report.Financing)

	report.NetChange = report.NetResult.
		Add(report.TotalOperating).
		Add(report.TotalInvesting).
		Add(report.TotalFinancing)

	if !report.NetChange.Equal(cashDelta) {
		cerr := apperrors.NewConsistencyError("cash_flow_reconciliation",
			"derived net change %s != cash balance delta %s for %s to %s",
			report.NetChange.String(), cashDelta.String(),
			from.Format("2006-01-02"), to.Format("2006-01-02"))
		s.LogAlarm(ctx, cerr, "Cash flow reconciliation mismatch", slog.String("tenant_id", tenantID))
		return nil, cerr
	}

	s.LogInfo(ctx, "Cash flow report generated", slog.String("tenant_id", tenantID))
	return report, nil
}

// periodDeltas computes, per account, balance(to) minus balance(from-1d),
// and returns the closing-balance metadata rows keyed by account id.
func (s *reportingService) periodDeltas(ctx context.Context, tenantID string, from, to time.Time) (map[string]decimal.Decimal, map[string]domain.AccountBalance, error) {
	closing, err := s.reportingRepo.AccountBalancesAsOf(ctx, tenantID, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve closing balances", slog.String("tenant_id", tenantID))
		return nil, nil, fmt.Errorf("failed to retrieve closing balances: %w", err)
	}
	opening, err := s.reportingRepo.AccountBalancesAsOf(ctx, tenantID, from.AddDate(0, 0, -1))
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve opening balances", slog.String("tenant_id", tenantID))
		return nil, nil, fmt.Errorf("failed to retrieve opening balances: %w", err)
	}

	openingByAccount := make(map[string]decimal.Decimal, len(opening))
	for _, b := range opening {
		openingByAccount[b.AccountID] = b.Balance
	}

	deltas := make(map[string]decimal.Decimal, len(closing))
	meta := make(map[string]domain.AccountBalance, len(closing))
	for _, b := range closing {
		before, ok := openingByAccount[b.AccountID]
		if !ok {
			before = decimal.Zero
		}
		deltas[b.AccountID] = b.Balance.Sub(before)
		meta[b.AccountID] = b
	}
	return deltas, meta, nil
}

func sortAccountAmounts(amounts []domain.AccountAmount) {
	sort.Slice(amounts, func(i, j int) bool {
		return amounts[i].Code < amounts[j].Code
	})
}
