package service

import (
	"context"
	"errors"
	"testing"

	"backoffice/internal/ledger"
	"backoffice/internal/model"
	"backoffice/pkg/apperror"
)

func newExpenseFixture() (ExpenseService, *fakeExpenseRepo, *fakeAuditRepo) {
	repo := newFakeExpenseRepo()
	audit := &fakeAuditRepo{}
	return NewExpenseService(repo, audit, fakeTx{}, &fakePublisher{}, fixedClock("2024-05-02")), repo, audit
}

func createExpense(t *testing.T, svc ExpenseService, category, amount string) ExpenseResponse {
	t.Helper()
	res, err := svc.CreateExpense(context.Background(), "", CreateExpenseRequest{
		Name:     "Gas",
		Amount:   amount,
		Category: category,
	})
	if err != nil {
		t.Fatalf("CreateExpense() error: %v", err)
	}
	return res
}

func TestCreateExpense_DefaultsDate(t *testing.T) {
	svc, _, _ := newExpenseFixture()
	res := createExpense(t, svc, "utilities", "120.5")

	if res.Date != "2024-05-02" {
		t.Errorf("Date = %s, want 2024-05-02", res.Date)
	}
	if res.Amount != "120.50" || res.IsLoan {
		t.Errorf("CreateExpense() = amount %s loan %v, want 120.50 false", res.Amount, res.IsLoan)
	}
}

func TestLoanExpense_AdditionsAndPayments(t *testing.T) {
	svc, _, audit := newExpenseFixture()
	ctx := context.Background()
	loan := createExpense(t, svc, model.LoanCategory, "500")
	if !loan.IsLoan {
		t.Fatal("expense in loan category is not a loan")
	}

	res, err := svc.AddAddition(ctx, "", loan.ID, AdditionRequest{Amount: "200"})
	if err != nil {
		t.Fatalf("AddAddition() error: %v", err)
	}
	if res.TotalAmount != "700.00" || res.RemainingAmount != "700.00" {
		t.Errorf("after addition: total %s remaining %s, want 700.00 700.00", res.TotalAmount, res.RemainingAmount)
	}

	res, err = svc.AddPayment(ctx, "", loan.ID, PaymentRequest{Amount: "300"})
	if err != nil {
		t.Fatalf("AddPayment() error: %v", err)
	}
	if res.RemainingAmount != "400.00" || res.Status != string(ledger.StatusPartiallyPaid) {
		t.Errorf("after payment: remaining %s status %s, want 400.00 partially_paid", res.RemainingAmount, res.Status)
	}

	if _, err := svc.AddPayment(ctx, "", loan.ID, PaymentRequest{Amount: "400.01"}); !errors.Is(err, ledger.ErrExceedsRemaining) {
		t.Errorf("overpayment error = %v, want %v", err, ledger.ErrExceedsRemaining)
	}

	want := []string{model.ActionCreateExpense, model.ActionAddAddition, model.ActionAddPayment}
	got := audit.actions()
	if len(got) != len(want) {
		t.Fatalf("audit actions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("audit[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestAddAddition_NonLoanRejected(t *testing.T) {
	svc, repo, _ := newExpenseFixture()
	expense := createExpense(t, svc, "rent", "900")

	_, err := svc.AddAddition(context.Background(), "", expense.ID, AdditionRequest{Amount: "10"})
	if !apperror.IsKind(err, apperror.KindValidation) {
		t.Errorf("AddAddition() error = %v, want validation error", err)
	}
	if len(repo.additions) != 0 {
		t.Errorf("stored %d additions, want 0", len(repo.additions))
	}
}

func TestVoidAddition(t *testing.T) {
	svc, _, _ := newExpenseFixture()
	ctx := context.Background()
	loan := createExpense(t, svc, model.LoanCategory, "100")

	res, err := svc.AddAddition(ctx, "", loan.ID, AdditionRequest{Amount: "100"})
	if err != nil {
		t.Fatalf("AddAddition() error: %v", err)
	}
	additionID := res.Additions[0].ID

	if _, err := svc.AddPayment(ctx, "", loan.ID, PaymentRequest{Amount: "150"}); err != nil {
		t.Fatalf("AddPayment() error: %v", err)
	}

	// 200 owed, 150 paid: dropping the 100 addition would leave the loan overpaid
	if _, err := svc.VoidAddition(ctx, "", loan.ID, additionID, VoidRequest{}); !errors.Is(err, ledger.ErrVoidOverpays) {
		t.Errorf("VoidAddition() error = %v, want %v", err, ledger.ErrVoidOverpays)
	}
}

func TestVoidAddition_RestoresTotal(t *testing.T) {
	svc, _, _ := newExpenseFixture()
	ctx := context.Background()
	loan := createExpense(t, svc, model.LoanCategory, "100")

	res, err := svc.AddAddition(ctx, "", loan.ID, AdditionRequest{Amount: "40"})
	if err != nil {
		t.Fatalf("AddAddition() error: %v", err)
	}

	res, err = svc.VoidAddition(ctx, "", loan.ID, res.Additions[0].ID, VoidRequest{Notes: "wrong loan"})
	if err != nil {
		t.Fatalf("VoidAddition() error: %v", err)
	}
	if res.TotalAmount != "100.00" || !res.Additions[0].Voided {
		t.Errorf("after void: total %s voided %v, want 100.00 true", res.TotalAmount, res.Additions[0].Voided)
	}
}

func TestVoidExpensePayment(t *testing.T) {
	svc, _, _ := newExpenseFixture()
	ctx := context.Background()
	expense := createExpense(t, svc, "supplies", "80")

	res, err := svc.AddPayment(ctx, "", expense.ID, PaymentRequest{Amount: "80"})
	if err != nil {
		t.Fatalf("AddPayment() error: %v", err)
	}
	if res.Status != string(ledger.StatusPaid) {
		t.Errorf("Status = %s, want paid", res.Status)
	}

	res, err = svc.VoidPayment(ctx, "", expense.ID, res.Payments[0].ID, VoidRequest{})
	if err != nil {
		t.Fatalf("VoidPayment() error: %v", err)
	}
	if res.Status != string(ledger.StatusPending) || res.RemainingAmount != "80.00" {
		t.Errorf("after void: status %s remaining %s, want pending 80.00", res.Status, res.RemainingAmount)
	}
}

func TestUpdateExpense_CategoryChangeChecksPayments(t *testing.T) {
	svc, _, _ := newExpenseFixture()
	ctx := context.Background()
	loan := createExpense(t, svc, model.LoanCategory, "100")
	if _, err := svc.AddAddition(ctx, "", loan.ID, AdditionRequest{Amount: "100"}); err != nil {
		t.Fatalf("AddAddition() error: %v", err)
	}
	if _, err := svc.AddPayment(ctx, "", loan.ID, PaymentRequest{Amount: "150"}); err != nil {
		t.Fatalf("AddPayment() error: %v", err)
	}

	// outside the loan category the additions stop counting: 100 owed < 150 paid
	category := "rent"
	_, err := svc.UpdateExpense(ctx, "", loan.ID, UpdateExpenseRequest{Category: &category})
	if !errors.Is(err, ledger.ErrPrincipalBelowPaid) {
		t.Errorf("UpdateExpense() error = %v, want %v", err, ledger.ErrPrincipalBelowPaid)
	}

	name := "Cash advance"
	res, err := svc.UpdateExpense(ctx, "", loan.ID, UpdateExpenseRequest{Name: &name})
	if err != nil {
		t.Fatalf("UpdateExpense(name) error: %v", err)
	}
	if res.Name != name || res.Category != model.LoanCategory {
		t.Errorf("UpdateExpense() = %s/%s, want %s/%s", res.Name, res.Category, name, model.LoanCategory)
	}
}

func TestGetExpenses_LoansOnly(t *testing.T) {
	svc, _, _ := newExpenseFixture()
	createExpense(t, svc, "rent", "10")
	loan := createExpense(t, svc, model.LoanCategory, "20")

	res, total, err := svc.GetExpenses(context.Background(), ExpenseListQuery{LoansOnly: true}, 1, 20)
	if err != nil {
		t.Fatalf("GetExpenses() error: %v", err)
	}
	if total != 1 || res[0].ID != loan.ID {
		t.Errorf("GetExpenses(loans) = %d, want only %s", total, loan.ID)
	}
}

func TestDeleteExpense_NotFound(t *testing.T) {
	svc, _, _ := newExpenseFixture()
	if err := svc.DeleteExpense(context.Background(), "", "not-a-uuid"); !apperror.IsKind(err, apperror.KindNotFound) {
		t.Errorf("DeleteExpense() error = %v, want not found", err)
	}
}
