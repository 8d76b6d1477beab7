package ledger

import "github.com/shopspring/decimal"

// ShiftFigures are the cash figures of one shift.
type ShiftFigures struct {
	Sales      decimal.Decimal
	Expenses   decimal.Decimal
	Cash       decimal.Decimal
	ActualCash decimal.Decimal
}

// DebtFigures is a debt as seen by the dashboard.
type DebtFigures struct {
	BusinessLoan bool
	Account      Account
}

// ExpenseFigures is an expense as seen by the dashboard. Loan expenses are
// the ones whose Account is revolving.
type ExpenseFigures struct {
	Account Account
}

// Summary holds the top-of-dashboard totals together with the intermediate
// sums they are built from.
type Summary struct {
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalExpenses  decimal.Decimal `json:"total_expenses"`
	RemainingCash  decimal.Decimal `json:"remaining_cash"`
	RemainingDebts decimal.Decimal `json:"remaining_debts"`
	NetProfitLoss  decimal.Decimal `json:"net_profit_loss"`

	ShiftExpenses   decimal.Decimal `json:"shift_expenses"`
	ShiftCash       decimal.Decimal `json:"shift_cash"`
	NonLoanExpenses decimal.Decimal `json:"non_loan_expenses"`
	LoanRemaining   decimal.Decimal `json:"loan_remaining"`
	DebtPayments    decimal.Decimal `json:"debt_payments"`
	BusinessLoans   decimal.Decimal `json:"business_loans"`
}

// shiftCash counts the recorded cash of a shift, falling back to the counted
// cash when none was recorded.
func shiftCash(s ShiftFigures) decimal.Decimal {
	if !s.Cash.IsZero() {
		return s.Cash
	}
	return s.ActualCash
}

// Summarize aggregates shifts, debts and expenses into the dashboard totals:
//
//	totalExpenses  = shift expenses + non-loan expenses + loan remaining + debt payments
//	remainingCash  = (shift cash + business loans) - (non-loan expenses + loan remaining + debt payments)
//	remainingDebts = sum of remaining over every debt
//	netProfitLoss  = (remainingCash + loan remaining) - remainingDebts
func Summarize(shifts []ShiftFigures, debts []DebtFigures, expenses []ExpenseFigures) Summary {
	var s Summary
	for _, sh := range shifts {
		s.TotalSales = s.TotalSales.Add(sh.Sales)
		s.ShiftExpenses = s.ShiftExpenses.Add(sh.Expenses)
		s.ShiftCash = s.ShiftCash.Add(shiftCash(sh))
	}

	for _, e := range expenses {
		if e.Account.Revolving {
			s.LoanRemaining = s.LoanRemaining.Add(Remaining(e.Account))
			continue
		}
		s.NonLoanExpenses = s.NonLoanExpenses.Add(e.Account.Principal)
	}

	for _, d := range debts {
		s.DebtPayments = s.DebtPayments.Add(TotalPaid(d.Account))
		s.RemainingDebts = s.RemainingDebts.Add(Remaining(d.Account))
		if d.BusinessLoan {
			s.BusinessLoans = s.BusinessLoans.Add(d.Account.Principal)
		}
	}

	outflow := s.NonLoanExpenses.Add(s.LoanRemaining).Add(s.DebtPayments)
	s.TotalExpenses = s.ShiftExpenses.Add(outflow)
	s.RemainingCash = s.ShiftCash.Add(s.BusinessLoans).Sub(outflow)
	s.NetProfitLoss = s.RemainingCash.Add(s.LoanRemaining).Sub(s.RemainingDebts)
	return s
}
