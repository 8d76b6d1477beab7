package ledger

import "testing"

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, nil, nil)
	if !s.TotalSales.IsZero() || !s.TotalExpenses.IsZero() || !s.RemainingCash.IsZero() ||
		!s.RemainingDebts.IsZero() || !s.NetProfitLoss.IsZero() {
		t.Errorf("Summarize(nil) = %+v, want all zero", s)
	}
}

func TestSummarize_ShiftExpenseBusinessLoan(t *testing.T) {
	shifts := []ShiftFigures{{Sales: d("1000"), Cash: d("800")}}
	expenses := []ExpenseFigures{{Account: Account{Principal: d("100")}}}
	debts := []DebtFigures{{BusinessLoan: true, Account: Account{Principal: d("300")}}}

	s := Summarize(shifts, debts, expenses)

	checks := []struct {
		name string
		got  string
		want string
	}{
		{"TotalSales", s.TotalSales.String(), "1000"},
		{"TotalExpenses", s.TotalExpenses.String(), "100"},
		{"RemainingCash", s.RemainingCash.String(), "1000"},
		{"RemainingDebts", s.RemainingDebts.String(), "300"},
		{"NetProfitLoss", s.NetProfitLoss.String(), "700"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}
}

func TestSummarize_AllComponents(t *testing.T) {
	shifts := []ShiftFigures{
		{Sales: d("1200"), Expenses: d("150"), Cash: d("1050")},
		// no recorded cash: the counted cash is used
		{Sales: d("900"), Expenses: d("100"), ActualCash: d("790")},
	}
	loan := Account{
		Principal: d("500"),
		Revolving: true,
		Additions: []Entry{entry("200")},
		Payments:  []Entry{entry("300")},
	}
	expenses := []ExpenseFigures{
		{Account: Account{Principal: d("80")}},
		{Account: Account{Principal: d("20"), Payments: []Entry{entry("20")}}},
		{Account: loan},
	}
	debts := []DebtFigures{
		{Account: Account{Principal: d("1000"), Payments: []Entry{entry("400")}}},
		{BusinessLoan: true, Account: Account{Principal: d("250"), Payments: []Entry{entry("50")}}},
	}

	s := Summarize(shifts, debts, expenses)

	// shift expenses 250, non-loan 100, loan remaining 400, debt payments 450
	if got := s.TotalExpenses.String(); got != "1200" {
		t.Errorf("TotalExpenses = %s, want 1200", got)
	}
	// (1050 + 790 + 250) - (100 + 400 + 450) = 1140
	if got := s.RemainingCash.String(); got != "1140" {
		t.Errorf("RemainingCash = %s, want 1140", got)
	}
	// 600 + 200
	if got := s.RemainingDebts.String(); got != "800" {
		t.Errorf("RemainingDebts = %s, want 800", got)
	}
	// (1140 + 400) - 800
	if got := s.NetProfitLoss.String(); got != "740" {
		t.Errorf("NetProfitLoss = %s, want 740", got)
	}
	if got := s.TotalSales.String(); got != "2100" {
		t.Errorf("TotalSales = %s, want 2100", got)
	}
}

func TestSummarize_VoidedDebtPaymentNotCounted(t *testing.T) {
	p := entry("100")
	debts := []DebtFigures{{Account: Account{Principal: d("100"), Payments: []Entry{p, voidOf(p)}}}}
	s := Summarize(nil, debts, nil)
	if !s.DebtPayments.IsZero() {
		t.Errorf("DebtPayments = %s, want 0", s.DebtPayments)
	}
	if got := s.RemainingDebts.String(); got != "100" {
		t.Errorf("RemainingDebts = %s, want 100", got)
	}
}
