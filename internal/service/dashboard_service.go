package service

import (
	"context"

	"backoffice/internal/ledger"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/apperror"
)

type DashboardResponse struct {
	TotalSales     string `json:"total_sales"`
	TotalExpenses  string `json:"total_expenses"`
	RemainingCash  string `json:"remaining_cash"`
	RemainingDebts string `json:"remaining_debts"`
	NetProfitLoss  string `json:"net_profit_loss"`

	Breakdown DashboardBreakdown `json:"breakdown"`

	ShiftCount   int     `json:"shift_count"`
	DebtCount    int     `json:"debt_count"`
	ExpenseCount int     `json:"expense_count"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
}

// DashboardBreakdown exposes the intermediate sums the totals are built from.
type DashboardBreakdown struct {
	ShiftExpenses   string `json:"shift_expenses"`
	ShiftCash       string `json:"shift_cash"`
	NonLoanExpenses string `json:"non_loan_expenses"`
	LoanRemaining   string `json:"loan_remaining"`
	DebtPayments    string `json:"debt_payments"`
	BusinessLoans   string `json:"business_loans"`
}

type DashboardService interface {
	GetDashboard(ctx context.Context, startDate, endDate string) (DashboardResponse, error)
}

type dashboardService struct {
	shiftRepo   repository.ShiftRepository
	debtRepo    repository.DebtRepository
	expenseRepo repository.ExpenseRepository
}

func NewDashboardService(
	shiftRepo repository.ShiftRepository,
	debtRepo repository.DebtRepository,
	expenseRepo repository.ExpenseRepository,
) DashboardService {
	return &dashboardService{
		shiftRepo:   shiftRepo,
		debtRepo:    debtRepo,
		expenseRepo: expenseRepo,
	}
}

// GetDashboard derives the dashboard totals from the ledgers at read time.
// Nothing here is stored; remaining cash in particular has no counter of its own.
func (s *dashboardService) GetDashboard(ctx context.Context, startDate, endDate string) (DashboardResponse, error) {
	from, err := parseOptionalDate("start_date", startDate)
	if err != nil {
		return DashboardResponse{}, err
	}
	to, err := parseOptionalDate("end_date", endDate)
	if err != nil {
		return DashboardResponse{}, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return DashboardResponse{}, apperror.NewValidationError("end_date must not be before start_date",
			apperror.FieldError{Field: "end_date", Message: "must be on or after start_date"})
	}

	shifts, err := s.shiftRepo.ListAll(ctx, from, to)
	if err != nil {
		return DashboardResponse{}, repoError("Shift", "list", err)
	}
	debts, err := s.debtRepo.ListAll(ctx, from, to)
	if err != nil {
		return DashboardResponse{}, repoError("Debt", "list", err)
	}
	expenses, err := s.expenseRepo.ListAll(ctx, from, to)
	if err != nil {
		return DashboardResponse{}, repoError("Expense", "list", err)
	}

	summary := ledger.Summarize(shiftFigures(shifts), debtFigures(debts), expenseFigures(expenses))

	return DashboardResponse{
		TotalSales:     money(summary.TotalSales),
		TotalExpenses:  money(summary.TotalExpenses),
		RemainingCash:  money(summary.RemainingCash),
		RemainingDebts: money(summary.RemainingDebts),
		NetProfitLoss:  money(summary.NetProfitLoss),
		Breakdown: DashboardBreakdown{
			ShiftExpenses:   money(summary.ShiftExpenses),
			ShiftCash:       money(summary.ShiftCash),
			NonLoanExpenses: money(summary.NonLoanExpenses),
			LoanRemaining:   money(summary.LoanRemaining),
			DebtPayments:    money(summary.DebtPayments),
			BusinessLoans:   money(summary.BusinessLoans),
		},
		ShiftCount:   len(shifts),
		DebtCount:    len(debts),
		ExpenseCount: len(expenses),
		StartDate:    formatOptionalDate(from),
		EndDate:      formatOptionalDate(to),
	}, nil
}

func shiftFigures(shifts []model.Shift) []ledger.ShiftFigures {
	out := make([]ledger.ShiftFigures, 0, len(shifts))
	for _, s := range shifts {
		f := ledger.ShiftFigures{Sales: s.Sales, Expenses: s.Expenses, Cash: s.Cash}
		if s.ActualCash != nil {
			f.ActualCash = *s.ActualCash
		}
		out = append(out, f)
	}
	return out
}

func debtFigures(debts []model.Debt) []ledger.DebtFigures {
	out := make([]ledger.DebtFigures, 0, len(debts))
	for i := range debts {
		out = append(out, ledger.DebtFigures{
			BusinessLoan: debts[i].IsBusinessLoan(),
			Account:      debts[i].Account(),
		})
	}
	return out
}

func expenseFigures(expenses []model.Expense) []ledger.ExpenseFigures {
	out := make([]ledger.ExpenseFigures, 0, len(expenses))
	for i := range expenses {
		out = append(out, ledger.ExpenseFigures{Account: expenses[i].Account()})
	}
	return out
}
