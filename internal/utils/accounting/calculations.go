package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/zenbooks-app/ledger_backend/internal/apperrors"
	"github.com/zenbooks-app/ledger_backend/internal/core/domain"
)

// SignedAmount applies the account's normal-side sign convention to a line
// amount. A line on the account's normal side increases the balance; the
// opposite side decreases it. Services and repositories share this so
// balances are computed identically everywhere.
//
// DEBIT to ASSET/EXPENSE -> Positive (+)
// CREDIT to ASSET/EXPENSE -> Negative (-)
// DEBIT to LIABILITY/EQUITY/REVENUE -> Negative (-)
// CREDIT to LIABILITY/EQUITY/REVENUE -> Positive (+)
func SignedAmount(line domain.JournalLine, accountType domain.AccountType) (decimal.Decimal, error) {
	if !accountType.IsValid() {
		return decimal.Zero, fmt.Errorf("unknown account type %q for account %s", accountType, line.AccountID)
	}
	if line.Direction == accountType.NormalSide() {
		return line.Amount, nil
	}
	return line.Amount.Neg(), nil
}

// ValidateEntryLines enforces the structural rules for a journal entry's
// lines: at least two lines, at least two distinct accounts, every amount
// strictly positive, and total debits equal to total credits at full
// decimal precision with zero tolerance.
func ValidateEntryLines(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: entry must have at least two lines", apperrors.ErrUnbalancedEntry)
	}

	accounts := make(map[string]struct{}, len(lines))
	debits := decimal.Zero
	credits := decimal.Zero

	for _, line := range lines {
		if line.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: line amount must be positive for account %s", apperrors.ErrValidation, line.AccountID)
		}
		if line.Direction != domain.Debit && line.Direction != domain.Credit {
			return fmt.Errorf("%w: unknown direction %q for account %s", apperrors.ErrValidation, line.Direction, line.AccountID)
		}
		accounts[line.AccountID] = struct{}{}
		if line.Direction == domain.Debit {
			debits = debits.Add(line.Amount)
		} else {
			credits = credits.Add(line.Amount)
		}
	}

	if len(accounts) < 2 {
		return fmt.Errorf("%w: entry must affect at least two different accounts", apperrors.ErrValidation)
	}

	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits sum to %s, credits sum to %s",
			apperrors.ErrUnbalancedEntry, debits.String(), credits.String())
	}

	return nil
}

// BalanceChanges nets the signed effect of an entry's lines per account,
// using each account's type for the sign convention.
func BalanceChanges(lines []domain.JournalLine, accountTypes map[string]domain.AccountType) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(lines))
	for _, line := range lines {
		accountType, ok := accountTypes[line.AccountID]
		if !ok {
			return nil, fmt.Errorf("%w: no account type for account %s", apperrors.ErrInvalidAccount, line.AccountID)
		}
		signed, err := SignedAmount(line, accountType)
		if err != nil {
			return nil, err
		}
		changes[line.AccountID] = changes[line.AccountID].Add(signed)
	}
	return changes, nil
}
