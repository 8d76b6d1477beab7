package ledger

import "errors"

// Validation errors returned by the ledger rules. Callers map them to
// user-facing validation failures; none of them means persisted state changed.
var (
	ErrNonPositiveAmount  = errors.New("amount must be greater than zero")
	ErrExceedsRemaining   = errors.New("payment amount exceeds the remaining amount")
	ErrEntryNotFound      = errors.New("ledger entry not found")
	ErrAlreadyVoided      = errors.New("ledger entry has already been voided")
	ErrVoidOfVoid         = errors.New("a void entry cannot be voided")
	ErrVoidOverpays       = errors.New("voiding this addition would leave the account overpaid")
	ErrPrincipalBelowPaid = errors.New("amount is below what has already been paid")
)
