// Package ledger holds the balance and dashboard rules of the back office.
// Every function here is a pure function of its arguments: balances are
// derived from the append-only ledgers on each call and never cached.
package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the derived settlement state of a debt or expense.
type Status string

const (
	StatusPending       Status = "pending"
	StatusPartiallyPaid Status = "partially_paid"
	StatusPaid          Status = "paid"

	// statusPartialLegacy is an older spelling still present in imported records.
	statusPartialLegacy Status = "partial"
)

// NormalizeStatus maps stored or client-supplied status strings onto the
// three canonical values. Unknown values fall back to pending.
func NormalizeStatus(s string) Status {
	switch Status(s) {
	case StatusPaid:
		return StatusPaid
	case StatusPartiallyPaid, statusPartialLegacy:
		return StatusPartiallyPaid
	default:
		return StatusPending
	}
}

// ParseStatus is the strict form of NormalizeStatus used for client input.
// It reports false for anything other than a canonical or legacy spelling.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusPaid, StatusPartiallyPaid, statusPartialLegacy:
		return NormalizeStatus(s), true
	default:
		return "", false
	}
}

// Entry is one append-only ledger row (a payment or an addition).
// A row with ReversesID set is a void entry cancelling the row it points to;
// its Amount repeats the amount of the cancelled row.
type Entry struct {
	ID         uuid.UUID
	Amount     decimal.Decimal
	ReversesID *uuid.UUID
}

// IsVoid reports whether the entry cancels another entry.
func (e Entry) IsVoid() bool {
	return e.ReversesID != nil
}

// Account is the ledger view of a debt or an expense.
// Revolving accounts (loan expenses) grow with additions; for every other
// account the additions ledger is ignored.
type Account struct {
	Principal decimal.Decimal
	Revolving bool
	Additions []Entry
	Payments  []Entry
}

// Balance is the full derived financial state of an account.
type Balance struct {
	Total     decimal.Decimal `json:"total_amount"`
	Paid      decimal.Decimal `json:"total_paid"`
	Remaining decimal.Decimal `json:"remaining_amount"`
	Status    Status          `json:"status"`
}

// Net sums a ledger, subtracting void entries from the rows they cancel.
func Net(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.IsVoid() {
			total = total.Sub(e.Amount)
			continue
		}
		total = total.Add(e.Amount)
	}
	return total
}

// TotalAmount returns what is owed in total: the principal, plus the net
// additions for revolving accounts.
func TotalAmount(a Account) decimal.Decimal {
	if !a.Revolving {
		return a.Principal
	}
	return a.Principal.Add(Net(a.Additions))
}

// TotalPaid returns the net of the payments ledger.
func TotalPaid(a Account) decimal.Decimal {
	return Net(a.Payments)
}

// Remaining returns TotalAmount - TotalPaid. It is negative for overpaid accounts.
func Remaining(a Account) decimal.Decimal {
	return TotalAmount(a).Sub(TotalPaid(a))
}

// StatusOf derives the settlement status of an account.
func StatusOf(a Account) Status {
	total := TotalAmount(a)
	paid := TotalPaid(a)
	return statusFor(total, paid, total.Sub(paid))
}

func statusFor(total, paid, remaining decimal.Decimal) Status {
	switch {
	case !remaining.IsPositive():
		return StatusPaid
	case paid.IsPositive() && paid.LessThan(total):
		return StatusPartiallyPaid
	default:
		return StatusPending
	}
}

// Compute derives every balance figure of an account in one pass.
func Compute(a Account) Balance {
	total := TotalAmount(a)
	paid := TotalPaid(a)
	remaining := total.Sub(paid)
	return Balance{
		Total:     total,
		Paid:      paid,
		Remaining: remaining,
		Status:    statusFor(total, paid, remaining),
	}
}

// ValidatePayment checks a new payment against the current account state.
// Zero and negative amounts are rejected, and so is any amount larger than
// what remains.
func ValidatePayment(a Account, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if amount.GreaterThan(Remaining(a)) {
		return ErrExceedsRemaining
	}
	return nil
}

// ValidateAddition checks a new addition amount.
func ValidateAddition(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	return nil
}

// VoidTarget finds the entry with the given id and checks it can be voided:
// it must exist, must not itself be a void entry and must not be voided already.
func VoidTarget(entries []Entry, id uuid.UUID) (Entry, error) {
	var target *Entry
	for i := range entries {
		e := entries[i]
		if e.ReversesID != nil && *e.ReversesID == id {
			return Entry{}, ErrAlreadyVoided
		}
		if e.ID == id {
			target = &entries[i]
		}
	}
	if target == nil {
		return Entry{}, ErrEntryNotFound
	}
	if target.IsVoid() {
		return Entry{}, ErrVoidOfVoid
	}
	return *target, nil
}

// ValidateAdditionVoid checks that removing an addition of the given amount
// does not push the account below what has already been paid.
func ValidateAdditionVoid(a Account, amount decimal.Decimal) error {
	if Remaining(a).Sub(amount).IsNegative() {
		return ErrVoidOverpays
	}
	return nil
}

// ValidatePrincipal checks a replacement principal for an existing account.
// The new principal must be positive and must still cover the net payments.
func ValidatePrincipal(a Account, principal decimal.Decimal) error {
	if !principal.IsPositive() {
		return ErrNonPositiveAmount
	}
	a.Principal = principal
	if Remaining(a).IsNegative() {
		return ErrPrincipalBelowPaid
	}
	return nil
}
