package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zenbooks-app/ledger_backend/internal/core/domain"
)

// CreateAccountRequest defines the payload for creating an account.
// The normal balance side is derived from the account type and is not
// accepted as input.
type CreateAccountRequest struct {
	Code             string  `json:"code" binding:"required,max=32"`
	Name             string  `json:"name" binding:"required,max=255"`
	AccountType      string  `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	ParentAccountID  *string `json:"parentAccountID,omitempty"`
	Description      string  `json:"description,omitempty"`
	CashFlowCategory string  `json:"cashFlowCategory,omitempty" binding:"omitempty,oneof=OPERATING INVESTING FINANCING"`
	IsCashEquivalent bool    `json:"isCashEquivalent,omitempty"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID        string    `json:"accountID"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	AccountType      string    `json:"accountType"`
	NormalSide       string    `json:"normalSide"`
	ParentAccountID  string    `json:"parentAccountID,omitempty"`
	Description      string    `json:"description,omitempty"`
	CashFlowCategory string    `json:"cashFlowCategory"`
	IsCashEquivalent bool      `json:"isCashEquivalent"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
}

// AccountNodeResponse is one node of the account tree with aggregated
// balances.
type AccountNodeResponse struct {
	AccountResponse
	Balance          decimal.Decimal       `json:"balance"`
	AggregateBalance decimal.Decimal       `json:"aggregateBalance"`
	Children         []AccountNodeResponse `json:"children,omitempty"`
}

// ListAccountsResponse wraps a list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// AccountTreeResponse wraps the root nodes of the account tree.
type AccountTreeResponse struct {
	AsOf  time.Time             `json:"asOf"`
	Roots []AccountNodeResponse `json:"roots"`
}

// ToAccountResponse converts a domain.Account to an AccountResponse DTO.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:        a.AccountID,
		Code:             a.Code,
		Name:             a.Name,
		AccountType:      string(a.AccountType),
		NormalSide:       string(a.AccountType.NormalSide()),
		ParentAccountID:  a.ParentAccountID,
		Description:      a.Description,
		CashFlowCategory: string(a.CashFlowCategory),
		IsCashEquivalent: a.IsCashEquivalent,
		IsActive:         a.IsActive,
		CreatedAt:        a.CreatedAt,
	}
}

// ToAccountResponses converts a slice of domain.Account to DTOs.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses
}

// ToAccountNodeResponse converts a domain.AccountNode tree recursively.
func ToAccountNodeResponse(n *domain.AccountNode) AccountNodeResponse {
	resp := AccountNodeResponse{
		AccountResponse:  ToAccountResponse(&n.Account),
		Balance:          n.Balance,
		AggregateBalance: n.AggregateBalance,
	}
	for _, child := range n.Children {
		resp.Children = append(resp.Children, ToAccountNodeResponse(child))
	}
	return resp
}

// ToAccountTreeResponse converts the root nodes of an account tree.
func ToAccountTreeResponse(roots []*domain.AccountNode, asOf time.Time) AccountTreeResponse {
	resp := AccountTreeResponse{AsOf: asOf, Roots: make([]AccountNodeResponse, 0, len(roots))}
	for _, root := range roots {
		resp.Roots = append(resp.Roots, ToAccountNodeResponse(root))
	}
	return resp
}
