package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsValid reports whether t is one of the five known account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// NormalSide returns the direction in which an account of this type
// conventionally increases. It is derived from the type and never stored,
// so an account cannot drift out of sync with its type.
func (t AccountType) NormalSide() Direction {
	switch t {
	case Asset, Expense:
		return Debit
	default:
		return Credit
	}
}

// CashFlowCategory buckets an account for the indirect-method cash flow
// statement.
type CashFlowCategory string

const (
	Operating CashFlowCategory = "OPERATING"
	Investing CashFlowCategory = "INVESTING"
	Financing CashFlowCategory = "FINANCING"
)

// IsValid reports whether c is a known cash flow category.
func (c CashFlowCategory) IsValid() bool {
	switch c {
	case Operating, Investing, Financing:
		return true
	}
	return false
}

// Account represents a node in the chart of accounts.
// Accounts are never deleted once referenced by a posted line; they are
// deactivated instead so historical postings stay resolvable.
type Account struct {
	AccountID        string           `json:"accountID"`        // Primary Key (UUID)
	TenantID         string           `json:"tenantID"`         // Owning tenant (Not Null)
	Code             string           `json:"code"`             // Unique per tenant, display/ordering key
	Name             string           `json:"name"`             // User-defined name
	AccountType      AccountType      `json:"accountType"`      // ASSET, LIABILITY, etc.
	ParentAccountID  string           `json:"parentAccountID"`  // Nullable self-reference; child type must match parent
	Description      string           `json:"description"`      // Nullable user description
	CashFlowCategory CashFlowCategory `json:"cashFlowCategory"` // OPERATING, INVESTING or FINANCING
	IsCashEquivalent bool             `json:"isCashEquivalent"` // Counts toward the cash line of the cash flow statement
	IsActive         bool             `json:"isActive"`         // Soft-deactivate flag
	AuditFields
}

// AccountNode is an account decorated with projected balances for tree
// queries. AggregateBalance is the node's own balance plus the balances of
// every descendant.
type AccountNode struct {
	Account
	Balance          decimal.Decimal `json:"balance"`
	AggregateBalance decimal.Decimal `json:"aggregateBalance"`
	Children         []*AccountNode  `json:"children,omitempty"`
}
