package accounting_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zenbooks-app/ledger_backend/internal/apperrors"
	"github.com/zenbooks-app/ledger_backend/internal/core/domain"
	"github.com/zenbooks-app/ledger_backend/internal/utils/accounting"
)

func TestSignedAmount(t *testing.T) {
	amount := decimal.NewFromInt(250)

	tests := []struct {
		name        string
		direction   domain.Direction
		accountType domain.AccountType
		want        decimal.Decimal
	}{
		{"debit to asset increases", domain.Debit, domain.Asset, amount},
		{"credit to asset decreases", domain.Credit, domain.Asset, amount.Neg()},
		{"debit to expense increases", domain.Debit, domain.Expense, amount},
		{"debit to liability decreases", domain.Debit, domain.Liability, amount.Neg()},
		{"credit to revenue increases", domain.Credit, domain.Revenue, amount},
		{"debit to equity decreases", domain.Debit, domain.Equity, amount.Neg()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := domain.JournalLine{AccountID: "acc-1", Direction: tt.direction, Amount: amount}
			got, err := accounting.SignedAmount(line, tt.accountType)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestSignedAmount_UnknownAccountType(t *testing.T) {
	line := domain.JournalLine{AccountID: "acc-1", Direction: domain.Debit, Amount: decimal.NewFromInt(10)}
	_, err := accounting.SignedAmount(line, domain.AccountType("BOGUS"))
	assert.Error(t, err)
}

func TestValidateEntryLines(t *testing.T) {
	balanced := []domain.JournalLine{
		{AccountID: "acc-cash", Direction: domain.Debit, Amount: decimal.NewFromInt(1000)},
		{AccountID: "acc-sales", Direction: domain.Credit, Amount: decimal.NewFromInt(1000)},
	}

	tests := []struct {
		name    string
		lines   []domain.JournalLine
		wantErr error
	}{
		{
			name:    "balanced two lines",
			lines:   balanced,
			wantErr: nil,
		},
		{
			name: "balanced split credit",
			lines: []domain.JournalLine{
				{AccountID: "acc-cash", Direction: domain.Debit, Amount: decimal.RequireFromString("100.50")},
				{AccountID: "acc-sales", Direction: domain.Credit, Amount: decimal.RequireFromString("90.25")},
				{AccountID: "acc-tax", Direction: domain.Credit, Amount: decimal.RequireFromString("10.25")},
			},
			wantErr: nil,
		},
		{
			name: "single line",
			lines: []domain.JournalLine{
				{AccountID: "acc-cash", Direction: domain.Debit, Amount: decimal.NewFromInt(100)},
			},
			wantErr: apperrors.ErrUnbalancedEntry,
		},
		{
			name: "only one distinct account",
			lines: []domain.JournalLine{
				{AccountID: "acc-cash", Direction: domain.Debit, Amount: decimal.NewFromInt(100)},
				{AccountID: "acc-cash", Direction: domain.Credit, Amount: decimal.NewFromInt(100)},
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "zero amount",
			lines: []domain.JournalLine{
				{AccountID: "acc-cash", Direction: domain.Debit, Amount: decimal.Zero},
				{AccountID: "acc-sales", Direction: domain.Credit, Amount: decimal.Zero},
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "negative amount",
			lines: []domain.JournalLine{
				{AccountID: "acc-cash", Direction: domain.Debit, Amount: decimal.NewFromInt(-50)},
				{AccountID: "acc-sales", Direction: domain.Credit, Amount: decimal.NewFromInt(-50)},
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "unknown direction",
			lines: []domain.JournalLine{
				{AccountID: "acc-cash", Direction: domain.Direction("BOTH"), Amount: decimal.NewFromInt(100)},
				{AccountID: "acc-sales", Direction: domain.Credit, Amount: decimal.NewFromInt(100)},
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "unbalanced by a cent",
			lines: []domain.JournalLine{
				{AccountID: "acc-cash", Direction: domain.Debit, Amount: decimal.RequireFromString("100.00")},
				{AccountID: "acc-sales", Direction: domain.Credit, Amount: decimal.RequireFromString("99.99")},
			},
			wantErr: apperrors.ErrUnbalancedEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := accounting.ValidateEntryLines(tt.lines)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestBalanceChanges(t *testing.T) {
	lines := []domain.JournalLine{
		{AccountID: "acc-cash", Direction: domain.Debit, Amount: decimal.NewFromInt(1000)},
		{AccountID: "acc-cash", Direction: domain.Credit, Amount: decimal.NewFromInt(200)},
		{AccountID: "acc-sales", Direction: domain.Credit, Amount: decimal.NewFromInt(800)},
	}
	accountTypes := map[string]domain.AccountType{
		"acc-cash":  domain.Asset,
		"acc-sales": domain.Revenue,
	}

	changes, err := accounting.BalanceChanges(lines, accountTypes)
	require.NoError(t, err)

	assert.True(t, changes["acc-cash"].Equal(decimal.NewFromInt(800)))
	assert.True(t, changes["acc-sales"].Equal(decimal.NewFromInt(800)))
}

func TestBalanceChanges_MissingAccountType(t *testing.T) {
	lines := []domain.JournalLine{
		{AccountID: "acc-unknown", Direction: domain.Debit, Amount: decimal.NewFromInt(10)},
	}

	_, err := accounting.BalanceChanges(lines, map[string]domain.AccountType{})
	assert.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidAccount)
}
