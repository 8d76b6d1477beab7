package handler

import (
	"context"
	"net/http"
	"testing"

	"backoffice/internal/ledger"
	"backoffice/internal/service"
	"backoffice/pkg/apperror"
	"backoffice/pkg/response"
)

type fakeDebtService struct {
	service.DebtService
	createdBy  string
	created    service.CreateDebtRequest
	query      service.DebtListQuery
	paymentErr error
}

func (f *fakeDebtService) CreateDebt(_ context.Context, userID string, req service.CreateDebtRequest) (service.DebtResponse, error) {
	f.createdBy = userID
	f.created = req
	return service.DebtResponse{ID: "d1", DebtorName: req.DebtorName, Amount: "500.00", Status: "pending"}, nil
}

func (f *fakeDebtService) GetDebts(_ context.Context, q service.DebtListQuery, page, limit int) ([]service.DebtResponse, int64, error) {
	f.query = q
	return []service.DebtResponse{{ID: "d1"}}, 7, nil
}

func (f *fakeDebtService) GetDebt(_ context.Context, id string) (service.DebtResponse, error) {
	return service.DebtResponse{}, apperror.NewNotFoundError("Debt")
}

func (f *fakeDebtService) AddPayment(_ context.Context, _, _ string, _ service.PaymentRequest) (service.DebtResponse, error) {
	if f.paymentErr != nil {
		return service.DebtResponse{}, f.paymentErr
	}
	return service.DebtResponse{ID: "d1", Status: "partially_paid"}, nil
}

type fakeReminderService struct {
	service.ReminderService
}

func (fakeReminderService) DueDebts(context.Context) ([]service.DueDebtResponse, error) {
	return []service.DueDebtResponse{{DebtResponse: service.DebtResponse{ID: "d9"}, DaysUntilDue: -2, Overdue: true}}, nil
}

func TestDebtHandler_CreateDebt(t *testing.T) {
	svc := &fakeDebtService{}
	r := newRouter(t, NewDebtHandler(svc, fakeReminderService{}))

	w, env := call(t, r, http.MethodPost, "/api/debts", "editor", map[string]string{
		"debtor_name": "Ali",
		"amount":      "500",
		"debt_date":   "2024-03-01",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", w.Code, w.Body.String())
	}
	if svc.createdBy != testUserID {
		t.Errorf("createdBy = %q, want %q", svc.createdBy, testUserID)
	}
	var debt service.DebtResponse
	decodeData(t, env, &debt)
	if debt.DebtorName != "Ali" || debt.Status != "pending" {
		t.Errorf("debt = %+v", debt)
	}
}

func TestDebtHandler_CreateDebtMissingFields(t *testing.T) {
	r := newRouter(t, NewDebtHandler(&fakeDebtService{}, fakeReminderService{}))

	w, env := call(t, r, http.MethodPost, "/api/debts", "editor", map[string]string{"debtor_name": "Ali"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if env.Kind != string(apperror.KindValidation) {
		t.Errorf("kind = %q, want validation", env.Kind)
	}
}

func TestDebtHandler_Permissions(t *testing.T) {
	r := newRouter(t, NewDebtHandler(&fakeDebtService{}, fakeReminderService{}))

	if w, _ := call(t, r, http.MethodGet, "/api/debts", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", w.Code)
	}
	if w, _ := call(t, r, http.MethodPost, "/api/debts", "viewer", map[string]string{}); w.Code != http.StatusForbidden {
		t.Errorf("viewer create status = %d, want 403", w.Code)
	}
	if w, _ := call(t, r, http.MethodDelete, "/api/debts/d1", "editor", nil); w.Code != http.StatusForbidden {
		t.Errorf("editor delete status = %d, want 403", w.Code)
	}
}

func TestDebtHandler_GetDebtsPassesFilters(t *testing.T) {
	svc := &fakeDebtService{}
	r := newRouter(t, NewDebtHandler(svc, fakeReminderService{}))

	w, env := call(t, r, http.MethodGet, "/api/debts?status=paid&search=ali&start_date=2024-01-01&page=2&limit=5", "viewer", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if svc.query.Status != "paid" || svc.query.Search != "ali" || svc.query.StartDate != "2024-01-01" {
		t.Errorf("query = %+v", svc.query)
	}
	var page response.Page
	decodeData(t, env, &page)
	if page.Total != 7 || page.Page != 2 || page.Limit != 5 {
		t.Errorf("page = %+v", page)
	}
}

func TestDebtHandler_ErrorMapping(t *testing.T) {
	svc := &fakeDebtService{paymentErr: apperror.Validation(ledger.ErrExceedsRemaining)}
	r := newRouter(t, NewDebtHandler(svc, fakeReminderService{}))

	w, env := call(t, r, http.MethodPost, "/api/debts/d1/payments", "editor", map[string]string{"amount": "900"})
	if w.Code != http.StatusBadRequest || env.Kind != string(apperror.KindValidation) {
		t.Errorf("overpayment = %d/%s, want 400/validation", w.Code, env.Kind)
	}

	svc.paymentErr = apperror.Persistence("failed to add payment", context.DeadlineExceeded)
	w, env = call(t, r, http.MethodPost, "/api/debts/d1/payments", "editor", map[string]string{"amount": "100"})
	if w.Code != http.StatusInternalServerError || env.Kind != string(apperror.KindPersistence) {
		t.Errorf("persistence failure = %d/%s, want 500/persistence", w.Code, env.Kind)
	}

	w, _ = call(t, r, http.MethodGet, "/api/debts/missing", "viewer", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown debt status = %d, want 404", w.Code)
	}
}

func TestDebtHandler_DueDebtsRouteNotShadowedByID(t *testing.T) {
	r := newRouter(t, NewDebtHandler(&fakeDebtService{}, fakeReminderService{}))

	w, env := call(t, r, http.MethodGet, "/api/debts/due", "viewer", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var due []service.DueDebtResponse
	decodeData(t, env, &due)
	if len(due) != 1 || !due[0].Overdue || due[0].ID != "d9" {
		t.Errorf("due = %+v", due)
	}
}
