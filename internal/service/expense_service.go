package service

import (
	"context"
	"errors"
	"strings"

	"backoffice/internal/ledger"
	"backoffice/internal/metrics"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/apperror"
)

// --- DTOs ---

type CreateExpenseRequest struct {
	Name     string `json:"name" binding:"required"`
	Amount   string `json:"amount" binding:"required"` // Decimal string
	Category string `json:"category" binding:"required"`
	Date     string `json:"date"` // YYYY-MM-DD, defaults to today
	Notes    string `json:"notes"`
}

// UpdateExpenseRequest overwrites only the fields present in the payload.
type UpdateExpenseRequest struct {
	Name     *string `json:"name"`
	Amount   *string `json:"amount"`
	Category *string `json:"category"`
	Date     *string `json:"date"`
	Notes    *string `json:"notes"`
}

type ExpenseListQuery struct {
	Category  string
	LoansOnly bool
	Search    string
	StartDate string
	EndDate   string
}

type ExpenseResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Amount          string          `json:"amount"`
	Category        string          `json:"category"`
	IsLoan          bool            `json:"is_loan"`
	Date            string          `json:"date"`
	Notes           string          `json:"notes"`
	TotalAmount     string          `json:"total_amount"`
	TotalPaid       string          `json:"total_paid"`
	RemainingAmount string          `json:"remaining_amount"`
	Status          string          `json:"status"`
	Payments        []EntryResponse `json:"payments"`
	Additions       []EntryResponse `json:"additions"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

// --- Interface ---

type ExpenseService interface {
	CreateExpense(ctx context.Context, userID string, req CreateExpenseRequest) (ExpenseResponse, error)
	GetExpenses(ctx context.Context, query ExpenseListQuery, page, limit int) ([]ExpenseResponse, int64, error)
	GetExpense(ctx context.Context, id string) (ExpenseResponse, error)
	UpdateExpense(ctx context.Context, userID, id string, req UpdateExpenseRequest) (ExpenseResponse, error)
	DeleteExpense(ctx context.Context, userID, id string) error
	AddPayment(ctx context.Context, userID, id string, req PaymentRequest) (ExpenseResponse, error)
	VoidPayment(ctx context.Context, userID, id, paymentID string, req VoidRequest) (ExpenseResponse, error)
	AddAddition(ctx context.Context, userID, id string, req AdditionRequest) (ExpenseResponse, error)
	VoidAddition(ctx context.Context, userID, id, additionID string, req VoidRequest) (ExpenseResponse, error)
}

type expenseService struct {
	expenseRepo repository.ExpenseRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	publisher   EventPublisher
	now         Clock
}

func NewExpenseService(
	expenseRepo repository.ExpenseRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	publisher EventPublisher,
	now Clock,
) ExpenseService {
	return &expenseService{
		expenseRepo: expenseRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		publisher:   publisherOrNop(publisher),
		now:         clockOrNow(now),
	}
}

var errAdditionOnNonLoan = apperror.NewValidationError("additions are only allowed on loan expenses",
	apperror.FieldError{Field: "category", Message: "must be " + model.LoanCategory})

func toExpenseResponse(e *model.Expense) ExpenseResponse {
	b := ledger.Compute(e.Account())
	return ExpenseResponse{
		ID:              e.ID.String(),
		Name:            e.Name,
		Amount:          money(e.Amount),
		Category:        e.Category,
		IsLoan:          e.IsLoan(),
		Date:            formatDate(e.Date),
		Notes:           e.Notes,
		TotalAmount:     money(b.Total),
		TotalPaid:       money(b.Paid),
		RemainingAmount: money(b.Remaining),
		Status:          string(b.Status),
		Payments:        entryResponses(paymentRows(e.Payments)),
		Additions:       entryResponses(additionRows(e.Additions)),
		CreatedAt:       e.CreatedAt.Format(dateTimeLayout),
		UpdatedAt:       e.UpdatedAt.Format(dateTimeLayout),
	}
}

func (s *expenseService) notify(e *model.Expense, action string) {
	s.publisher.Publish(EventLedgerUpdated, map[string]interface{}{
		"entity": "expense",
		"id":     e.ID.String(),
		"action": action,
	})
}

// mutate locks the expense, lets fn change it and append ledger rows, then
// recomputes the derived columns, saves and audits, all in one transaction.
func (s *expenseService) mutate(ctx context.Context, userID, id, action string, fn func(txCtx context.Context, e *model.Expense) (interface{}, error)) (*model.Expense, error) {
	expenseID, err := parseID("Expense", id)
	if err != nil {
		return nil, err
	}

	var expense *model.Expense
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		e, err := s.expenseRepo.FindByIDForUpdate(txCtx, expenseID)
		if err != nil {
			return repoError("Expense", "load", err)
		}
		details, err := fn(txCtx, e)
		if err != nil {
			return err
		}
		e.Refresh()
		if err := s.expenseRepo.Save(txCtx, e); err != nil {
			return repoError("Expense", "update", err)
		}
		expense = e
		return writeAudit(txCtx, s.auditRepo, userID, action, e.ID.String(), e.Name, details)
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// --- Implementation ---

func (s *expenseService) CreateExpense(ctx context.Context, userID string, req CreateExpenseRequest) (ExpenseResponse, error) {
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return ExpenseResponse{}, err
	}
	if err := ledger.ValidateAddition(amount); err != nil {
		return ExpenseResponse{}, ledgerError("expense", err)
	}
	date, err := dateOrToday("date", req.Date, s.now)
	if err != nil {
		return ExpenseResponse{}, err
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Category) == "" {
		return ExpenseResponse{}, apperror.NewValidationError("name and category are required")
	}

	expense := &model.Expense{
		Name:      strings.TrimSpace(req.Name),
		Amount:    amount,
		Category:  strings.TrimSpace(req.Category),
		Date:      date,
		Notes:     req.Notes,
		CreatedBy: parseUserID(userID),
	}
	expense.Refresh()

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.expenseRepo.Create(txCtx, expense); err != nil {
			return repoError("Expense", "create", err)
		}
		return writeAudit(txCtx, s.auditRepo, userID, model.ActionCreateExpense, expense.ID.String(), expense.Name, req)
	})
	if err != nil {
		return ExpenseResponse{}, err
	}

	s.notify(expense, "created")
	return toExpenseResponse(expense), nil
}

func (s *expenseService) GetExpenses(ctx context.Context, query ExpenseListQuery, page, limit int) ([]ExpenseResponse, int64, error) {
	from, err := parseOptionalDate("start_date", query.StartDate)
	if err != nil {
		return nil, 0, err
	}
	to, err := parseOptionalDate("end_date", query.EndDate)
	if err != nil {
		return nil, 0, err
	}

	expenses, total, err := s.expenseRepo.List(ctx, repository.ExpenseFilter{
		Category: query.Category,
		LoanOnly: query.LoansOnly,
		Search:   strings.TrimSpace(query.Search),
		From:     from,
		To:       to,
	}, page, limit)
	if err != nil {
		return nil, 0, repoError("Expense", "list", err)
	}

	res := make([]ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		res = append(res, toExpenseResponse(&expenses[i]))
	}
	return res, total, nil
}

func (s *expenseService) GetExpense(ctx context.Context, id string) (ExpenseResponse, error) {
	expenseID, err := parseID("Expense", id)
	if err != nil {
		return ExpenseResponse{}, err
	}
	expense, err := s.expenseRepo.FindByID(ctx, expenseID)
	if err != nil {
		return ExpenseResponse{}, repoError("Expense", "load", err)
	}
	return toExpenseResponse(expense), nil
}

func (s *expenseService) UpdateExpense(ctx context.Context, userID, id string, req UpdateExpenseRequest) (ExpenseResponse, error) {
	expense, err := s.mutate(ctx, userID, id, model.ActionUpdateExpense, func(_ context.Context, e *model.Expense) (interface{}, error) {
		return req, applyExpensePatch(e, req)
	})
	if err != nil {
		return ExpenseResponse{}, err
	}
	s.notify(expense, "updated")
	return toExpenseResponse(expense), nil
}

// applyExpensePatch copies the supplied fields onto e. Amount and category
// both change what is owed, so the result is checked against the payments.
func applyExpensePatch(e *model.Expense, req UpdateExpenseRequest) error {
	if req.Amount != nil {
		amount, err := parseAmount("amount", *req.Amount)
		if err != nil {
			return err
		}
		e.Amount = amount
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return apperror.NewValidationError("category is required",
				apperror.FieldError{Field: "category", Message: "must not be blank"})
		}
		e.Category = category
	}
	if req.Amount != nil || req.Category != nil {
		if err := ledger.ValidatePrincipal(e.Account(), e.Amount); err != nil {
			return ledgerError("expense", err)
		}
	}
	if req.Date != nil {
		date, err := parseDate("date", *req.Date)
		if err != nil {
			return err
		}
		e.Date = date
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return apperror.NewValidationError("name is required",
				apperror.FieldError{Field: "name", Message: "must not be blank"})
		}
		e.Name = name
	}
	if req.Notes != nil {
		e.Notes = *req.Notes
	}
	return nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, userID, id string) error {
	expenseID, err := parseID("Expense", id)
	if err != nil {
		return err
	}

	var expense *model.Expense
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		e, err := s.expenseRepo.FindByIDForUpdate(txCtx, expenseID)
		if err != nil {
			return repoError("Expense", "load", err)
		}
		if err := s.expenseRepo.Delete(txCtx, expenseID); err != nil {
			return repoError("Expense", "delete", err)
		}
		expense = e
		return writeAudit(txCtx, s.auditRepo, userID, model.ActionDeleteExpense, e.ID.String(), e.Name, map[string]interface{}{
			"amount":    money(e.Amount),
			"category":  e.Category,
			"remaining": money(e.RemainingAmount),
			"payments":  len(e.Payments),
			"additions": len(e.Additions),
		})
	})
	if err != nil {
		return err
	}

	s.notify(expense, "deleted")
	return nil
}

func (s *expenseService) AddPayment(ctx context.Context, userID, id string, req PaymentRequest) (ExpenseResponse, error) {
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return ExpenseResponse{}, err
	}
	date, err := dateOrToday("date", req.Date, s.now)
	if err != nil {
		return ExpenseResponse{}, err
	}

	expense, err := s.mutate(ctx, userID, id, model.ActionAddPayment, func(txCtx context.Context, e *model.Expense) (interface{}, error) {
		if err := ledger.ValidatePayment(e.Account(), amount); err != nil {
			return nil, ledgerError("expense", err)
		}
		payment := model.Payment{
			ExpenseID:    &e.ID,
			Amount:       amount,
			Date:         date,
			Notes:        req.Notes,
			ReceiptImage: req.ReceiptImage,
			CreatedBy:    parseUserID(userID),
		}
		if err := s.expenseRepo.AddPayment(txCtx, &payment); err != nil {
			return nil, repoError("Payment", "save", err)
		}
		e.Payments = append(e.Payments, payment)
		return map[string]interface{}{"payment_id": payment.ID.String(), "amount": money(amount)}, nil
	})
	if err != nil {
		return ExpenseResponse{}, err
	}

	metrics.LedgerEntries.WithLabelValues("expense", "payment").Inc()
	s.notify(expense, "payment")
	return toExpenseResponse(expense), nil
}

func (s *expenseService) VoidPayment(ctx context.Context, userID, id, paymentID string, req VoidRequest) (ExpenseResponse, error) {
	targetID, err := parseID("Payment", paymentID)
	if err != nil {
		return ExpenseResponse{}, err
	}

	expense, err := s.mutate(ctx, userID, id, model.ActionVoidPayment, func(txCtx context.Context, e *model.Expense) (interface{}, error) {
		target, err := ledger.VoidTarget(model.PaymentEntries(e.Payments), targetID)
		if err != nil {
			return nil, ledgerError("expense", err)
		}
		void := model.Payment{
			ExpenseID:  &e.ID,
			Amount:     target.Amount,
			Date:       truncateDay(s.now()),
			Notes:      req.Notes,
			ReversesID: &target.ID,
			CreatedBy:  parseUserID(userID),
		}
		if err := s.expenseRepo.AddPayment(txCtx, &void); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, ledgerError("expense", ledger.ErrAlreadyVoided)
			}
			return nil, repoError("Payment", "void", err)
		}
		e.Payments = append(e.Payments, void)
		return map[string]interface{}{"payment_id": target.ID.String(), "void_id": void.ID.String(), "amount": money(target.Amount), "notes": req.Notes}, nil
	})
	if err != nil {
		return ExpenseResponse{}, err
	}

	metrics.LedgerEntries.WithLabelValues("expense", "payment_void").Inc()
	s.notify(expense, "payment_void")
	return toExpenseResponse(expense), nil
}

// AddAddition raises the principal of a loan expense (a new loan taken on top
// of an existing one).
func (s *expenseService) AddAddition(ctx context.Context, userID, id string, req AdditionRequest) (ExpenseResponse, error) {
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return ExpenseResponse{}, err
	}
	date, err := dateOrToday("date", req.Date, s.now)
	if err != nil {
		return ExpenseResponse{}, err
	}

	expense, err := s.mutate(ctx, userID, id, model.ActionAddAddition, func(txCtx context.Context, e *model.Expense) (interface{}, error) {
		if !e.IsLoan() {
			return nil, errAdditionOnNonLoan
		}
		if err := ledger.ValidateAddition(amount); err != nil {
			return nil, ledgerError("expense", err)
		}
		addition := model.Addition{
			ExpenseID: e.ID,
			Amount:    amount,
			Date:      date,
			Notes:     req.Notes,
			CreatedBy: parseUserID(userID),
		}
		if err := s.expenseRepo.AddAddition(txCtx, &addition); err != nil {
			return nil, repoError("Addition", "save", err)
		}
		e.Additions = append(e.Additions, addition)
		return map[string]interface{}{"addition_id": addition.ID.String(), "amount": money(amount)}, nil
	})
	if err != nil {
		return ExpenseResponse{}, err
	}

	metrics.LedgerEntries.WithLabelValues("expense", "addition").Inc()
	s.notify(expense, "addition")
	return toExpenseResponse(expense), nil
}

func (s *expenseService) VoidAddition(ctx context.Context, userID, id, additionID string, req VoidRequest) (ExpenseResponse, error) {
	targetID, err := parseID("Addition", additionID)
	if err != nil {
		return ExpenseResponse{}, err
	}

	expense, err := s.mutate(ctx, userID, id, model.ActionVoidAddition, func(txCtx context.Context, e *model.Expense) (interface{}, error) {
		target, err := ledger.VoidTarget(model.AdditionEntries(e.Additions), targetID)
		if err != nil {
			return nil, ledgerError("expense", err)
		}
		if err := ledger.ValidateAdditionVoid(e.Account(), target.Amount); err != nil {
			return nil, ledgerError("expense", err)
		}
		void := model.Addition{
			ExpenseID:  e.ID,
			Amount:     target.Amount,
			Date:       truncateDay(s.now()),
			Notes:      req.Notes,
			ReversesID: &target.ID,
			CreatedBy:  parseUserID(userID),
		}
		if err := s.expenseRepo.AddAddition(txCtx, &void); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, ledgerError("expense", ledger.ErrAlreadyVoided)
			}
			return nil, repoError("Addition", "void", err)
		}
		e.Additions = append(e.Additions, void)
		return map[string]interface{}{"addition_id": target.ID.String(), "void_id": void.ID.String(), "amount": money(target.Amount), "notes": req.Notes}, nil
	})
	if err != nil {
		return ExpenseResponse{}, err
	}

	metrics.LedgerEntries.WithLabelValues("expense", "addition_void").Inc()
	s.notify(expense, "addition_void")
	return toExpenseResponse(expense), nil
}
