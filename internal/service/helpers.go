package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/ledger"
	"backoffice/internal/metrics"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05Z07:00"
)

// Realtime event names pushed through the EventPublisher.
const (
	EventLedgerUpdated = "ledger.updated"
	EventShiftUpdated  = "shift.updated"
	EventStockUpdated  = "stock.updated"
	EventDebtsDue      = "debts.due"
)

// EventPublisher pushes realtime events to connected dashboards.
type EventPublisher interface {
	Publish(event string, data interface{})
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, interface{}) {}

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

// Clock returns the current time; services take one so tests can pin "today".
type Clock func() time.Time

func clockOrNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, apperror.NewValidationError("invalid "+field,
			apperror.FieldError{Field: field, Message: "must be a date in YYYY-MM-DD format"})
	}
	return t, nil
}

// parseOptionalDate returns nil for an empty value.
func parseOptionalDate(field, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := parseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// dateOrToday parses value, defaulting to the clock's current day.
func dateOrToday(field, value string, now Clock) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return truncateDay(now()), nil
	}
	return parseDate(field, value)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Largest values the decimal(18,2) and decimal(18,3) columns can hold.
var (
	maxAmount   = decimal.RequireFromString("9999999999999999.99")
	maxQuantity = decimal.RequireFromString("999999999999999.999")
)

// Exponent bounds checked before rounding, which costs time proportional to
// the exponent.
const (
	maxDecimalExponent = 18
	minDecimalExponent = -18
)

// parseDecimal reads value, rounds it to places and rejects anything whose
// magnitude is beyond limit.
func parseDecimal(field, value string, places int32, limit decimal.Decimal) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, apperror.NewValidationError("invalid "+field,
			apperror.FieldError{Field: field, Message: "must be a decimal number"})
	}
	outOfRange := apperror.NewValidationError("invalid "+field,
		apperror.FieldError{Field: field, Message: "must not exceed " + limit.String() + " or have more than 18 decimal places"})
	if exp := d.Exponent(); exp > maxDecimalExponent || exp < minDecimalExponent {
		return decimal.Zero, outOfRange
	}
	d = d.Round(places)
	if d.Abs().GreaterThan(limit) {
		return decimal.Zero, outOfRange
	}
	return d, nil
}

func parseAmount(field, value string) (decimal.Decimal, error) {
	return parseDecimal(field, value, 2, maxAmount)
}

func parseID(resource, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, apperror.NewNotFoundError(resource)
	}
	return id, nil
}

func parseUserID(userID string) *uuid.UUID {
	if parsed, err := uuid.Parse(userID); err == nil {
		return &parsed
	}
	return nil
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// repoError maps a repository failure onto an AppError.
func repoError(resource, op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NewNotFoundError(resource)
	case errors.Is(err, repository.ErrDuplicate):
		return apperror.NewConflictError(resource + " already exists")
	default:
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return apperror.Persistence(fmt.Sprintf("failed to %s %s", op, strings.ToLower(resource)), err)
	}
}

// ledgerError turns a ledger rule violation into a validation error and
// counts the rejection.
func ledgerError(owner string, err error) error {
	metrics.LedgerRejections.WithLabelValues(owner, rejectionReason(err)).Inc()
	return apperror.Validation(err)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ledger.ErrNonPositiveAmount):
		return "non_positive_amount"
	case errors.Is(err, ledger.ErrExceedsRemaining):
		return "exceeds_remaining"
	case errors.Is(err, ledger.ErrEntryNotFound):
		return "entry_not_found"
	case errors.Is(err, ledger.ErrAlreadyVoided):
		return "already_voided"
	case errors.Is(err, ledger.ErrVoidOfVoid):
		return "void_of_void"
	case errors.Is(err, ledger.ErrVoidOverpays):
		return "void_overpays"
	case errors.Is(err, ledger.ErrPrincipalBelowPaid):
		return "principal_below_paid"
	default:
		return "other"
	}
}

func writeAudit(ctx context.Context, repo repository.AuditRepository, userID, action, entityID, entityName string, details interface{}) error {
	payload, err := json.Marshal(details)
	if err != nil {
		payload = []byte("{}")
	}
	entry := &model.AuditLog{
		UserID:     parseUserID(userID),
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
	}
	if err := repo.Log(ctx, entry); err != nil {
		return apperror.Persistence("failed to write audit log", err)
	}
	return nil
}

// ─── Ledger DTOs shared by debts and expenses ───────────────────────────────

type PaymentRequest struct {
	Amount       string `json:"amount" binding:"required"` // Decimal string
	Date         string `json:"date"`                      // YYYY-MM-DD, defaults to today
	Notes        string `json:"notes"`
	ReceiptImage string `json:"receipt_image"`
}

type AdditionRequest struct {
	Amount string `json:"amount" binding:"required"`
	Date   string `json:"date"`
	Notes  string `json:"notes"`
}

type VoidRequest struct {
	Notes string `json:"notes"`
}

type EntryResponse struct {
	ID           string  `json:"id"`
	Amount       string  `json:"amount"`
	Date         string  `json:"date"`
	Notes        string  `json:"notes"`
	ReceiptImage string  `json:"receipt_image,omitempty"`
	ReversesID   *string `json:"reverses_id,omitempty"`
	Voided       bool    `json:"voided"`
	CreatedAt    string  `json:"created_at"`
}

type ledgerRow struct {
	id           uuid.UUID
	amount       decimal.Decimal
	date         time.Time
	notes        string
	receiptImage string
	reversesID   *uuid.UUID
	createdAt    time.Time
}

func entryResponses(rows []ledgerRow) []EntryResponse {
	voided := make(map[uuid.UUID]bool)
	for _, r := range rows {
		if r.reversesID != nil {
			voided[*r.reversesID] = true
		}
	}
	res := make([]EntryResponse, 0, len(rows))
	for _, r := range rows {
		e := EntryResponse{
			ID:           r.id.String(),
			Amount:       money(r.amount),
			Date:         formatDate(r.date),
			Notes:        r.notes,
			ReceiptImage: r.receiptImage,
			Voided:       voided[r.id],
			CreatedAt:    r.createdAt.Format(dateTimeLayout),
		}
		if r.reversesID != nil {
			s := r.reversesID.String()
			e.ReversesID = &s
		}
		res = append(res, e)
	}
	return res
}

func paymentRows(ps []model.Payment) []ledgerRow {
	rows := make([]ledgerRow, 0, len(ps))
	for _, p := range ps {
		rows = append(rows, ledgerRow{p.ID, p.Amount, p.Date, p.Notes, p.ReceiptImage, p.ReversesID, p.CreatedAt})
	}
	return rows
}

func additionRows(as []model.Addition) []ledgerRow {
	rows := make([]ledgerRow, 0, len(as))
	for _, a := range as {
		rows = append(rows, ledgerRow{a.ID, a.Amount, a.Date, a.Notes, "", a.ReversesID, a.CreatedAt})
	}
	return rows
}
