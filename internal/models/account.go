package models

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// CashFlowCategory buckets an account for the cash flow statement.
type CashFlowCategory string

const (
	Operating CashFlowCategory = "OPERATING"
	Investing CashFlowCategory = "INVESTING"
	Financing CashFlowCategory = "FINANCING"
)

// Account represents a chart-of-accounts row.
// Note: ParentAccountID uses string for nullable foreign key; empty means root.
type Account struct {
	AccountID        string           `db:"account_id"`
	TenantID         string           `db:"tenant_id"`
	Code             string           `db:"code"` // Unique per tenant
	Name             string           `db:"name"`
	AccountType      AccountType      `db:"account_type"`
	ParentAccountID  string           `db:"parent_account_id"` // Nullable
	Description      string           `db:"description"`
	CashFlowCategory CashFlowCategory `db:"cash_flow_category"`
	IsCashEquivalent bool             `db:"is_cash_equivalent"`
	IsActive         bool             `db:"is_active"`
	AuditFields
}
