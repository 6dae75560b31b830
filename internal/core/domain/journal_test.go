package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/zenbooks-app/ledger_backend/internal/core/domain"
)

func TestDirection_Mirror(t *testing.T) {
	assert.Equal(t, domain.Credit, domain.Debit.Mirror())
	assert.Equal(t, domain.Debit, domain.Credit.Mirror())
}

func TestMirrorLines(t *testing.T) {
	costCenter := "cc-42"
	lines := []domain.JournalLine{
		{
			LineID:    "line-1",
			EntryID:   "entry-1",
			AccountID: "acc-cash",
			Direction: domain.Debit,
			Amount:    decimal.NewFromInt(1000),
			Memo:      "cash received",
		},
		{
			LineID:       "line-2",
			EntryID:      "entry-1",
			AccountID:    "acc-sales",
			Direction:    domain.Credit,
			Amount:       decimal.NewFromInt(1000),
			CostCenterID: &costCenter,
		},
	}

	mirrored := domain.MirrorLines(lines)

	assert.Len(t, mirrored, 2)

	assert.Equal(t, "acc-cash", mirrored[0].AccountID)
	assert.Equal(t, domain.Credit, mirrored[0].Direction)
	assert.True(t, mirrored[0].Amount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, "cash received", mirrored[0].Memo)

	assert.Equal(t, "acc-sales", mirrored[1].AccountID)
	assert.Equal(t, domain.Debit, mirrored[1].Direction)
	assert.Equal(t, &costCenter, mirrored[1].CostCenterID)

	// Mirroring builds fresh lines; ids are assigned at save time.
	assert.Empty(t, mirrored[0].LineID)
	assert.Empty(t, mirrored[0].EntryID)

	// The originals are untouched.
	assert.Equal(t, domain.Debit, lines[0].Direction)
	assert.Equal(t, "line-1", lines[0].LineID)
}

func TestJournalEntry_IsReversal(t *testing.T) {
	originalID := "entry-original"

	assert.False(t, domain.JournalEntry{}.IsReversal())
	assert.True(t, domain.JournalEntry{OriginalEntryID: &originalID}.IsReversal())
}
