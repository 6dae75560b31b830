package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow represents a single account row in a trial balance
// report. Exactly one of Debit/Credit is non-zero, per the account's
// normal balance side.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalanceReport lists every active account's balance as of a date.
// TotalDebit must equal TotalCredit; a mismatch is an engine bug.
type TrialBalanceReport struct {
	AsOf        time.Time         `json:"asOf"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
}

// GeneralJournalReport lists posted and voided entries in a date range,
// ordered by entry number ascending (the canonical chronological order,
// since entry dates may tie).
type GeneralJournalReport struct {
	FromDate time.Time      `json:"fromDate"`
	ToDate   time.Time      `json:"toDate"`
	Entries  []JournalEntry `json:"entries"`
}

// LedgerLine is one line of a general ledger account section with the
// running balance after applying it.
type LedgerLine struct {
	EntryID        string          `json:"entryID"`
	EntryNumber    int64           `json:"entryNumber"`
	EntryDate      time.Time       `json:"entryDate"`
	Description    string          `json:"description"`
	Direction      Direction       `json:"direction"`
	Amount         decimal.Decimal `json:"amount"`
	Memo           string          `json:"memo,omitempty"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// GeneralLedgerAccount is the per-account section of a general ledger
// report, seeded with the balance as of the day before the range.
type GeneralLedgerAccount struct {
	AccountID      string          `json:"accountID"`
	Code           string          `json:"code"`
	AccountName    string          `json:"accountName"`
	AccountType    AccountType     `json:"accountType"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Lines          []LedgerLine    `json:"lines"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}

// GeneralLedgerReport groups ledger lines per account for a date range.
type GeneralLedgerReport struct {
	FromDate time.Time              `json:"fromDate"`
	ToDate   time.Time              `json:"toDate"`
	Accounts []GeneralLedgerAccount `json:"accounts"`
}

// AccountBalance is a projection row: an account's metadata with its
// signed balance (normal-side convention) as of a cut-off date.
type AccountBalance struct {
	AccountID        string           `json:"accountID"`
	Code             string           `json:"code"`
	Name             string           `json:"name"`
	AccountType      AccountType      `json:"accountType"`
	CashFlowCategory CashFlowCategory `json:"cashFlowCategory"`
	IsCashEquivalent bool             `json:"isCashEquivalent"`
	IsActive         bool             `json:"isActive"`
	Balance          decimal.Decimal  `json:"balance"`
}

// LedgerAccountActivity is the raw per-account line activity for a date
// range, before running balances are seeded. Lines are ordered by entry
// number ascending.
type LedgerAccountActivity struct {
	AccountID   string       `json:"accountID"`
	Code        string       `json:"code"`
	AccountName string       `json:"accountName"`
	AccountType AccountType  `json:"accountType"`
	Lines       []LedgerLine `json:"lines"`
}

// AccountAmount represents an account with its net amount for financial
// reports.
type AccountAmount struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

// BalanceSheetReport represents the financial position as of a date.
// TotalAssets must equal TotalLiabilities + TotalEquity.
type BalanceSheetReport struct {
	AsOf             time.Time       `json:"asOf"`
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
}

// IncomeStatementReport represents revenue and expense activity over a
// period. Amounts are period deltas, not absolute running balances, since
// revenue and expense accounts conceptually reset each period.
type IncomeStatementReport struct {
	FromDate      time.Time       `json:"fromDate"`
	ToDate        time.Time       `json:"toDate"`
	Revenue       []AccountAmount `json:"revenue"`
	Expenses      []AccountAmount `json:"expenses"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetResult     decimal.Decimal `json:"netResult"`
}

// CashFlowReport is an indirect-method cash flow statement: the net result
// adjusted by balance sheet deltas of non-cash accounts, bucketed by each
// account's cash flow category. NetChange must reconcile to the literal
// change in cash-equivalent balances over the range.
type CashFlowReport struct {
	FromDate       time.Time       `json:"fromDate"`
	ToDate         time.Time       `json:"toDate"`
	NetResult      decimal.Decimal `json:"netResult"`
	Operating      []AccountAmount `json:"operating"`
	Investing      []AccountAmount `json:"investing"`
	Financing      []AccountAmount `json:"financing"`
	TotalOperating decimal.Decimal `json:"totalOperating"`
	TotalInvesting decimal.Decimal `json:"totalInvesting"`
	TotalFinancing decimal.Decimal `json:"totalFinancing"`
	OpeningCash    decimal.Decimal `json:"openingCash"`
	ClosingCash    decimal.Decimal `json:"closingCash"`
	NetChange      decimal.Decimal `json:"netChange"`
}
