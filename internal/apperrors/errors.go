package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// Named ledger validation failures. These are expected, caller-recoverable
// conditions and are surfaced verbatim to the collaborator that attempted
// the operation; none are retried internally.
var (
	// ErrDuplicateCode indicates the account code is already taken within the tenant.
	ErrDuplicateCode = errors.New("account code already exists")

	// ErrInvalidParent indicates the parent account is missing, inactive, or of a different type.
	ErrInvalidParent = errors.New("invalid parent account")

	// ErrAccountInUse indicates the account has posted lines within an open period.
	ErrAccountInUse = errors.New("account has posted lines in an open period")

	// ErrPeriodOverlap indicates the new period intersects an existing one.
	ErrPeriodOverlap = errors.New("accounting period overlaps an existing period")

	// ErrPeriodGap indicates the new period does not abut the latest period's end.
	ErrPeriodGap = errors.New("accounting period leaves a gap in the calendar")

	// ErrPeriodNotOpen indicates a close/reopen was attempted on a period in the wrong state.
	ErrPeriodNotOpen = errors.New("accounting period is not open")

	// ErrEarlierPeriodOpen indicates an earlier period is still open; periods close in order.
	ErrEarlierPeriodOpen = errors.New("an earlier accounting period is still open")

	// ErrUnbalancedEntry indicates debit and credit totals differ.
	ErrUnbalancedEntry = errors.New("journal entry debits and credits do not balance")

	// ErrInvalidAccount indicates a referenced account is missing, inactive, or cross-tenant.
	ErrInvalidAccount = errors.New("invalid account reference")

	// ErrEntryNotDraft indicates a post was attempted on a non-draft entry.
	ErrEntryNotDraft = errors.New("journal entry is not a draft")

	// ErrEntryNotPosted indicates a void was attempted on a non-posted entry.
	ErrEntryNotPosted = errors.New("journal entry is not posted")

	// ErrPeriodClosed indicates the relevant date falls in a closed (or missing) period.
	ErrPeriodClosed = errors.New("accounting period is closed for this date")
)

// ConsistencyError indicates an internal invariant of the ledger failed:
// the trial balance footer not balancing, the accounting equation not
// holding, or the projector disagreeing with the posted log. It signals a
// bug in the engine or projector, never a business condition, so it must
// be alarmed and never retried or swallowed.
type ConsistencyError struct {
	Check  string // which invariant failed, e.g. "trial_balance_footer"
	Detail string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("ledger consistency failure [%s]: %s", e.Check, e.Detail)
}

// NewConsistencyError builds a ConsistencyError for the named check.
func NewConsistencyError(check, format string, args ...any) *ConsistencyError {
	return &ConsistencyError{Check: check, Detail: fmt.Sprintf(format, args...)}
}

// IsConsistencyError reports whether err is (or wraps) a ConsistencyError.
func IsConsistencyError(err error) bool {
	var ce *ConsistencyError
	return errors.As(err, &ce)
}
