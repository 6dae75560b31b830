package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zenbooks-app/ledger_backend/internal/core/domain"
)

func TestAccountType_NormalSide(t *testing.T) {
	tests := []struct {
		accountType domain.AccountType
		want        domain.Direction
	}{
		{domain.Asset, domain.Debit},
		{domain.Expense, domain.Debit},
		{domain.Liability, domain.Credit},
		{domain.Equity, domain.Credit},
		{domain.Revenue, domain.Credit},
	}

	for _, tt := range tests {
		t.Run(string(tt.accountType), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.accountType.NormalSide())
		})
	}
}

func TestAccountType_IsValid(t *testing.T) {
	for _, valid := range []domain.AccountType{domain.Asset, domain.Liability, domain.Equity, domain.Revenue, domain.Expense} {
		assert.True(t, valid.IsValid(), string(valid))
	}
	assert.False(t, domain.AccountType("").IsValid())
	assert.False(t, domain.AccountType("SAVINGS").IsValid())
}

func TestCashFlowCategory_IsValid(t *testing.T) {
	for _, valid := range []domain.CashFlowCategory{domain.Operating, domain.Investing, domain.Financing} {
		assert.True(t, valid.IsValid(), string(valid))
	}
	assert.False(t, domain.CashFlowCategory("OTHER").IsValid())
}
