package service

import (
	"context"
	"errors"

	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type ShiftRequest struct {
	Date       string  `json:"date" binding:"required"` // YYYY-MM-DD
	Type       string  `json:"type" binding:"required,oneof=morning evening"`
	Sales      string  `json:"sales"`
	Expenses   string  `json:"expenses"`
	Cash       string  `json:"cash"`
	ActualCash *string `json:"actual_cash"`
	Notes      string  `json:"notes"`
}

type ShiftResponse struct {
	ID         string  `json:"id"`
	Date       string  `json:"date"`
	Type       string  `json:"type"`
	Sales      string  `json:"sales"`
	Expenses   string  `json:"expenses"`
	Cash       string  `json:"cash"`
	ActualCash *string `json:"actual_cash"`
	Difference string  `json:"difference"`
	Notes      string  `json:"notes"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

// --- Interface ---

type ShiftService interface {
	CreateShift(ctx context.Context, userID string, req ShiftRequest) (ShiftResponse, error)
	GetShifts(ctx context.Context, startDate, endDate string, page, limit int) ([]ShiftResponse, int64, error)
	GetShift(ctx context.Context, id string) (ShiftResponse, error)
	UpdateShift(ctx context.Context, userID, id string, req ShiftRequest) (ShiftResponse, error)
	DeleteShift(ctx context.Context, userID, id string) error
}

type shiftService struct {
	shiftRepo repository.ShiftRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	publisher EventPublisher
}

func NewShiftService(
	shiftRepo repository.ShiftRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	publisher EventPublisher,
) ShiftService {
	return &shiftService{
		shiftRepo: shiftRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		publisher: publisherOrNop(publisher),
	}
}

var errDuplicateShift = apperror.NewConflictError("a shift already exists for this date and type")

func toShiftResponse(s *model.Shift) ShiftResponse {
	res := ShiftResponse{
		ID:         s.ID.String(),
		Date:       formatDate(s.Date),
		Type:       s.Type,
		Sales:      money(s.Sales),
		Expenses:   money(s.Expenses),
		Cash:       money(s.Cash),
		Difference: money(s.Difference),
		Notes:      s.Notes,
		CreatedAt:  s.CreatedAt.Format(dateTimeLayout),
		UpdatedAt:  s.UpdatedAt.Format(dateTimeLayout),
	}
	if s.ActualCash != nil {
		v := money(*s.ActualCash)
		res.ActualCash = &v
	}
	return res
}

// amountOrZero parses an optional non-negative figure.
func amountOrZero(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	amount, err := parseAmount(field, value)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.IsNegative() {
		return decimal.Zero, apperror.NewValidationError("invalid "+field,
			apperror.FieldError{Field: field, Message: "must not be negative"})
	}
	return amount, nil
}

// fillShift copies the request onto s and recomputes the difference.
func fillShift(s *model.Shift, req ShiftRequest) error {
	date, err := parseDate("date", req.Date)
	if err != nil {
		return err
	}
	if req.Type != model.ShiftMorning && req.Type != model.ShiftEvening {
		return apperror.NewValidationError("invalid type",
			apperror.FieldError{Field: "type", Message: "must be morning or evening"})
	}
	if s.Sales, err = amountOrZero("sales", req.Sales); err != nil {
		return err
	}
	if s.Expenses, err = amountOrZero("expenses", req.Expenses); err != nil {
		return err
	}
	if s.Cash, err = amountOrZero("cash", req.Cash); err != nil {
		return err
	}
	s.ActualCash = nil
	if req.ActualCash != nil && *req.ActualCash != "" {
		actual, err := amountOrZero("actual_cash", *req.ActualCash)
		if err != nil {
			return err
		}
		s.ActualCash = &actual
	}
	s.Date = date
	s.Type = req.Type
	s.Notes = req.Notes
	s.Reconcile()
	return nil
}

// ensureUnique rejects a (date, type) pair already held by another shift.
func (s *shiftService) ensureUnique(ctx context.Context, shift *model.Shift, self uuid.UUID) error {
	existing, err := s.shiftRepo.FindByDateAndType(ctx, shift.Date, shift.Type)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return repoError("Shift", "load", err)
	case existing.ID != self:
		return errDuplicateShift
	default:
		return nil
	}
}

func (s *shiftService) notify(shift *model.Shift, action string) {
	s.publisher.Publish(EventShiftUpdated, map[string]interface{}{
		"id":     shift.ID.String(),
		"date":   formatDate(shift.Date),
		"type":   shift.Type,
		"action": action,
	})
}

// --- Implementation ---

func (s *shiftService) CreateShift(ctx context.Context, userID string, req ShiftRequest) (ShiftResponse, error) {
	shift := &model.Shift{CreatedBy: parseUserID(userID)}
	if err := fillShift(shift, req); err != nil {
		return ShiftResponse{}, err
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ensureUnique(txCtx, shift, uuid.Nil); err != nil {
			return err
		}
		if err := s.shiftRepo.Create(txCtx, shift); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return errDuplicateShift
			}
			return repoError("Shift", "create", err)
		}
		return writeAudit(txCtx, s.auditRepo, userID, model.ActionCreateShift, shift.ID.String(), formatDate(shift.Date)+" "+shift.Type, req)
	})
	if err != nil {
		return ShiftResponse{}, err
	}

	s.notify(shift, "created")
	return toShiftResponse(shift), nil
}

func (s *shiftService) GetShifts(ctx context.Context, startDate, endDate string, page, limit int) ([]ShiftResponse, int64, error) {
	from, err := parseOptionalDate("start_date", startDate)
	if err != nil {
		return nil, 0, err
	}
	to, err := parseOptionalDate("end_date", endDate)
	if err != nil {
		return nil, 0, err
	}

	shifts, total, err := s.shiftRepo.List(ctx, from, to, page, limit)
	if err != nil {
		return nil, 0, repoError("Shift", "list", err)
	}

	res := make([]ShiftResponse, 0, len(shifts))
	for i := range shifts {
		res = append(res, toShiftResponse(&shifts[i]))
	}
	return res, total, nil
}

func (s *shiftService) GetShift(ctx context.Context, id string) (ShiftResponse, error) {
	shiftID, err := parseID("Shift", id)
	if err != nil {
		return ShiftResponse{}, err
	}
	shift, err := s.shiftRepo.FindByID(ctx, shiftID)
	if err != nil {
		return ShiftResponse{}, repoError("Shift", "load", err)
	}
	return toShiftResponse(shift), nil
}

func (s *shiftService) UpdateShift(ctx context.Context, userID, id string, req ShiftRequest) (ShiftResponse, error) {
	shiftID, err := parseID("Shift", id)
	if err != nil {
		return ShiftResponse{}, err
	}

	var shift *model.Shift
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		sh, err := s.shiftRepo.FindByID(txCtx, shiftID)
		if err != nil {
			return repoError("Shift", "load", err)
		}
		if err := fillShift(sh, req); err != nil {
			return err
		}
		if err := s.ensureUnique(txCtx, sh, sh.ID); err != nil {
			return err
		}
		if err := s.shiftRepo.Save(txCtx, sh); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return errDuplicateShift
			}
			return repoError("Shift", "update", err)
		}
		shift = sh
		return writeAudit(txCtx, s.auditRepo, userID, model.ActionUpdateShift, sh.ID.String(), formatDate(sh.Date)+" "+sh.Type, req)
	})
	if err != nil {
		return ShiftResponse{}, err
	}

	s.notify(shift, "updated")
	return toShiftResponse(shift), nil
}

func (s *shiftService) DeleteShift(ctx context.Context, userID, id string) error {
	shiftID, err := parseID("Shift", id)
	if err != nil {
		return err
	}

	var shift *model.Shift
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		sh, err := s.shiftRepo.FindByID(txCtx, shiftID)
		if err != nil {
			return repoError("Shift", "load", err)
		}
		if err := s.shiftRepo.Delete(txCtx, shiftID); err != nil {
			return repoError("Shift", "delete", err)
		}
		shift = sh
		return writeAudit(txCtx, s.auditRepo, userID, model.ActionDeleteShift, sh.ID.String(), formatDate(sh.Date)+" "+sh.Type, map[string]interface{}{
			"sales": money(sh.Sales),
			"cash":  money(sh.Cash),
		})
	})
	if err != nil {
		return err
	}

	s.notify(shift, "deleted")
	return nil
}
