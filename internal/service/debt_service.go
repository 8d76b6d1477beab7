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

type CreateDebtRequest struct {
	DebtorName      string `json:"debtor_name" binding:"required"`
	Phone           string `json:"phone"`
	Amount          string `json:"amount" binding:"required"`   // Decimal string
	DebtDate        string `json:"debt_date" binding:"required"` // YYYY-MM-DD
	DueDate         string `json:"due_date"`
	DebtType        string `json:"debt_type" binding:"omitempty,oneof=regular business_loan"`
	BusinessPurpose string `json:"business_purpose"`
	InvoiceImage    string `json:"invoice_image"`
	Notes           string `json:"notes"`
}

// UpdateDebtRequest overwrites only the fields present in the payload.
type UpdateDebtRequest struct {
	DebtorName      *string `json:"debtor_name"`
	Phone           *string `json:"phone"`
	Amount          *string `json:"amount"`
	DebtDate        *string `json:"debt_date"`
	DueDate         *string `json:"due_date"` // empty string clears the due date
	DebtType        *string `json:"debt_type" binding:"omitempty,oneof=regular business_loan"`
	BusinessPurpose *string `json:"business_purpose"`
	InvoiceImage    *string `json:"invoice_image"`
	Notes           *string `json:"notes"`
}

type DebtListQuery struct {
	Status    string
	DebtType  string
	Search    string
	StartDate string
	EndDate   string
}

type DebtResponse struct {
	ID              string          `json:"id"`
	DebtorName      string          `json:"debtor_name"`
	Phone           string          `json:"phone"`
	Amount          string          `json:"amount"`
	DebtDate        string          `json:"debt_date"`
	DueDate         *string         `json:"due_date"`
	DebtType        string          `json:"debt_type"`
	BusinessPurpose string          `json:"business_purpose"`
	InvoiceImage    string          `json:"invoice_image,omitempty"`
	Notes           string          `json:"notes"`
	TotalAmount     string          `json:"total_amount"`
	TotalPaid       string          `json:"total_paid"`
	RemainingAmount string          `json:"remaining_amount"`
	Status          string          `json:"status"`
	Payments        []EntryResponse `json:"payments"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

// --- Interface ---

type DebtService interface {
	CreateDebt(ctx context.Context, userID string, req CreateDebtRequest) (DebtResponse, error)
	GetDebts(ctx context.Context, query DebtListQuery, page, limit int) ([]DebtResponse, int64, error)
	GetDebt(ctx context.Context, id string) (DebtResponse, error)
	UpdateDebt(ctx context.Context, userID, id string, req UpdateDebtRequest) (DebtResponse, error)
	DeleteDebt(ctx context.Context, userID, id string) error
	AddPayment(ctx context.Context, userID, id string, req PaymentRequest) (DebtResponse, error)
	VoidPayment(ctx context.Context, userID, id, paymentID string, req VoidRequest) (DebtResponse, error)
}

type debtService struct {
	debtRepo  repository.DebtRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	publisher EventPublisher
	now       Clock
}

func NewDebtService(
	debtRepo repository.DebtRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	publisher EventPublisher,
	now Clock,
) DebtService {
	return &debtService{
		debtRepo:  debtRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		publisher: publisherOrNop(publisher),
		now:       clockOrNow(now),
	}
}

func toDebtResponse(d *model.Debt) DebtResponse {
	b := ledger.Compute(d.Account())
	return DebtResponse{
		ID:              d.ID.String(),
		DebtorName:      d.DebtorName,
		Phone:           d.Phone,
		Amount:          money(d.Amount),
		DebtDate:        formatDate(d.DebtDate),
		DueDate:         formatOptionalDate(d.DueDate),
		DebtType:        d.DebtType,
		BusinessPurpose: d.BusinessPurpose,
		InvoiceImage:    d.InvoiceImage,
		Notes:           d.Notes,
		TotalAmount:     money(b.Total),
		TotalPaid:       money(b.Paid),
		RemainingAmount: money(b.Remaining),
		Status:          string(b.Status),
		Payments:        entryResponses(paymentRows(d.Payments)),
		CreatedAt:       d.CreatedAt.Format(dateTimeLayout),
		UpdatedAt:       d.UpdatedAt.Format(dateTimeLayout),
	}
}

func (s *debtService) notify(d *model.Debt, action string) {
	s.publisher.Publish(EventLedgerUpdated, map[string]interface{}{
		"entity": "debt",
		"id":     d.ID.String(),
		"action": action,
	})
}

// --- Implementation ---

func (s *debtService) CreateDebt(ctx context.Context, userID string, req CreateDebtRequest) (DebtResponse, error) {
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return DebtResponse{}, err
	}
	if err := ledger.ValidateAddition(amount); err != nil {
		return DebtResponse{}, ledgerError("debt", err)
	}
	debtDate, err := parseDate("debt_date", req.DebtDate)
	if err != nil {
		return DebtResponse{}, err
	}
	dueDate, err := parseOptionalDate("due_date", req.DueDate)
	if err != nil {
		return DebtResponse{}, err
	}
	if strings.TrimSpace(req.DebtorName) == "" {
		return DebtResponse{}, apperror.NewValidationError("debtor_name is required",
			apperror.FieldError{Field: "debtor_name", Message: "must not be blank"})
	}

	debtType := req.DebtType
	if debtType == "" {
		debtType = model.DebtTypeRegular
	}

	debt := &model.Debt{
		DebtorName:      strings.TrimSpace(req.DebtorName),
		Phone:           req.Phone,
		Amount:          amount,
		DebtDate:        debtDate,
		DueDate:         dueDate,
		DebtType:        debtType,
		BusinessPurpose: req.BusinessPurpose,
		InvoiceImage:    req.InvoiceImage,
		Notes:           req.Notes,
		CreatedBy:       parseUserID(userID),
	}
	debt.Refresh()

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.debtRepo.Create(txCtx, debt); err != nil {
			return repoError("Debt", "create", err)
		}
		return writeAudit(txCtx, s.auditRepo, userID, model.ActionCreateDebt, debt.ID.String(), debt.DebtorName, req)
	})
	if err != nil {
		return DebtResponse{}, err
	}

	s.notify(debt, "created")
	return toDebtResponse(debt), nil
}

func (s *debtService) GetDebts(ctx context.Context, query DebtListQuery, page, limit int) ([]DebtResponse, int64, error) {
	from, err := parseOptionalDate("start_date", query.StartDate)
	if err != nil {
		return nil, 0, err
	}
	to, err := parseOptionalDate("end_date", query.EndDate)
	if err != nil {
		return nil, 0, err
	}

	filter := repository.DebtFilter{
		DebtType: query.DebtType,
		Search:   strings.TrimSpace(query.Search),
		From:     from,
		To:       to,
	}
	if query.Status != "" {
		status, ok := ledger.ParseStatus(query.Status)
		if !ok {
			return nil, 0, apperror.NewValidationError("invalid status",
				apperror.FieldError{Field: "status", Message: "must be one of pending, partially_paid, paid"})
		}
		filter.Status = string(status)
	}

	debts, total, err := s.debtRepo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, repoError("Debt", "list", err)
	}

	res := make([]DebtResponse, 0, len(debts))
	for i := range debts {
		res = append(res, toDebtResponse(&debts[i]))
	}
	return res, total, nil
}

func (s *debtService) GetDebt(ctx context.Context, id string) (DebtResponse, error) {
	debtID, err := parseID("Debt", id)
	if err != nil {
		return DebtResponse{}, err
	}
	debt, err := s.debtRepo.FindByID(ctx, debtID)
	if err != nil {
		return DebtResponse{}, repoError("Debt", "load", err)
	}
	return toDebtResponse(debt), nil
}

func (s *debtService) UpdateDebt(ctx context.Context, userID, id string, req UpdateDebtRequest) (DebtResponse, error) {
	debtID, err := parseID("Debt", id)
	if err != nil {
		return DebtResponse{}, err
	}

	var debt *model.Debt
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		d, err := s.debtRepo.FindByIDForUpdate(txCtx, debtID)
		if err != nil {
			return repoError("Debt", "load", err)
		}
		if err := applyDebtPatch(d, req); err != nil {
			return err
		}
		d.Refresh()
		if err := s.debtRepo.Save(txCtx, d); err != nil {
			return repoError("Debt", "update", err)
		}
		if err := writeAudit(txCtx, s.auditRepo, userID, model.ActionUpdateDebt, d.ID.String(), d.DebtorName, req); err != nil {
			return err
		}
		debt = d
		return nil
	})
	if err != nil {
		return DebtResponse{}, err
	}

	s.notify(debt, "updated")
	return toDebtResponse(debt), nil
}

// applyDebtPatch copies the supplied fields onto d. A new amount keeps the
// payments ledger intact: remaining becomes newAmount minus what was paid.
func applyDebtPatch(d *model.Debt, req UpdateDebtRequest) error {
	if req.Amount != nil {
		amount, err := parseAmount("amount", *req.Amount)
		if err != nil {
			return err
		}
		if err := ledger.ValidatePrincipal(d.Account(), amount); err != nil {
			return ledgerError("debt", err)
		}
		d.Amount = amount
	}
	if req.DebtDate != nil {
		date, err := parseDate("debt_date", *req.DebtDate)
		if err != nil {
			return err
		}
		d.DebtDate = date
	}
	if req.DueDate != nil {
		due, err := parseOptionalDate("due_date", *req.DueDate)
		if err != nil {
			return err
		}
		d.DueDate = due
	}
	if req.DebtorName != nil {
		name := strings.TrimSpace(*req.DebtorName)
		if name == "" {
			return apperror.NewValidationError("debtor_name is required",
				apperror.FieldError{Field: "debtor_name", Message: "must not be blank"})
		}
		d.DebtorName = name
	}
	if req.DebtType != nil && *req.DebtType != "" {
		d.DebtType = *req.DebtType
	}
	if req.Phone != nil {
		d.Phone = *req.Phone
	}
	if req.BusinessPurpose != nil {
		d.BusinessPurpose = *req.BusinessPurpose
	}
	if req.InvoiceImage != nil {
		d.InvoiceImage = *req.InvoiceImage
	}
	if req.Notes != nil {
		d.Notes = *req.Notes
	}
	return nil
}

func (s *debtService) DeleteDebt(ctx context.Context, userID, id string) error {
	debtID, err := parseID("Debt", id)
	if err != nil {
		return err
	}

	var debt *model.Debt
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		d, err := s.debtRepo.FindByIDForUpdate(txCtx, debtID)
		if err != nil {
			return repoError("Debt", "load", err)
		}
		if err := s.debtRepo.Delete(txCtx, debtID); err != nil {
			return repoError("Debt", "delete", err)
		}
		debt = d
		return writeAudit(txCtx, s.auditRepo, userID, model.ActionDeleteDebt, d.ID.String(), d.DebtorName, map[string]interface{}{
			"amount":    money(d.Amount),
			"remaining": money(d.RemainingAmount),
			"payments":  len(d.Payments),
		})
	})
	if err != nil {
		return err
	}

	s.notify(debt, "deleted")
	return nil
}

func (s *debtService) AddPayment(ctx context.Context, userID, id string, req PaymentRequest) (DebtResponse, error) {
	debtID, err := parseID("Debt", id)
	if err != nil {
		return DebtResponse{}, err
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return DebtResponse{}, err
	}
	date, err := dateOrToday("date", req.Date, s.now)
	if err != nil {
		return DebtResponse{}, err
	}

	var debt *model.Debt
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		d, err := s.debtRepo.FindByIDForUpdate(txCtx, debtID)
		if err != nil {
			return repoError("Debt", "load", err)
		}
		if err := ledger.ValidatePayment(d.Account(), amount); err != nil {
			return ledgerError("debt", err)
		}

		payment := model.Payment{
			DebtID:       &d.ID,
			Amount:       amount,
			Date:         date,
			Notes:        req.Notes,
			ReceiptImage: req.ReceiptImage,
			CreatedBy:    parseUserID(userID),
		}
		if err := s.debtRepo.AddPayment(txCtx, &payment); err != nil {
			return repoError("Payment", "save", err)
		}
		d.Payments = append(d.Payments, payment)
		d.Refresh()
		if err := s.debtRepo.Save(txCtx, d); err != nil {
			return repoError("Debt", "update", err)
		}
		debt = d
		return writeAudit(txCtx, s.auditRepo, userID, model.ActionAddPayment, d.ID.String(), d.DebtorName, map[string]interface{}{
			"payment_id": payment.ID.String(),
			"amount":     money(amount),
			"remaining":  money(d.RemainingAmount),
			"status":     d.Status,
		})
	})
	if err != nil {
		return DebtResponse{}, err
	}

	metrics.LedgerEntries.WithLabelValues("debt", "payment").Inc()
	s.notify(debt, "payment")
	return toDebtResponse(debt), nil
}

func (s *debtService) VoidPayment(ctx context.Context, userID, id, paymentID string, req VoidRequest) (DebtResponse, error) {
	debtID, err := parseID("Debt", id)
	if err != nil {
		return DebtResponse{}, err
	}
	targetID, err := parseID("Payment", paymentID)
	if err != nil {
		return DebtResponse{}, err
	}

	var debt *model.Debt
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		d, err := s.debtRepo.FindByIDForUpdate(txCtx, debtID)
		if err != nil {
			return repoError("Debt", "load", err)
		}
		target, err := ledger.VoidTarget(model.PaymentEntries(d.Payments), targetID)
		if err != nil {
			return ledgerError("debt", err)
		}

		void := model.Payment{
			DebtID:     &d.ID,
			Amount:     target.Amount,
			Date:       truncateDay(s.now()),
			Notes:      req.Notes,
			ReversesID: &target.ID,
			CreatedBy:  parseUserID(userID),
		}
		if err := s.debtRepo.AddPayment(txCtx, &void); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ledgerError("debt", ledger.ErrAlreadyVoided)
			}
			return repoError("Payment", "void", err)
		}
		d.Payments = append(d.Payments, void)
		d.Refresh()
		if err := s.debtRepo.Save(txCtx, d); err != nil {
			return repoError("Debt", "update", err)
		}
		debt = d
		return writeAudit(txCtx, s.auditRepo, userID, model.ActionVoidPayment, d.ID.String(), d.DebtorName, map[string]interface{}{
			"payment_id": target.ID.String(),
			"void_id":    void.ID.String(),
			"amount":     money(target.Amount),
			"notes":      req.Notes,
		})
	})
	if err != nil {
		return DebtResponse{}, err
	}

	metrics.LedgerEntries.WithLabelValues("debt", "payment_void").Inc()
	s.notify(debt, "payment_void")
	return toDebtResponse(debt), nil
}
