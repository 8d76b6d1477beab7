package handler

import (
	"context"
	"net/http"
	"testing"

	"backoffice/internal/service"
	"backoffice/pkg/apperror"
)

type fakeDashboardService struct {
	start, end string
}

func (f *fakeDashboardService) GetDashboard(_ context.Context, start, end string) (service.DashboardResponse, error) {
	f.start, f.end = start, end
	if start == "bad" {
		return service.DashboardResponse{}, apperror.NewValidationError("invalid start_date")
	}
	return service.DashboardResponse{TotalSales: "1000.00", NetProfitLoss: "300.00"}, nil
}

func TestDashboardHandler(t *testing.T) {
	svc := &fakeDashboardService{}
	r := newRouter(t, NewDashboardHandler(svc))

	w, env := call(t, r, http.MethodGet, "/api/dashboard?start_date=2024-01-01&end_date=2024-01-31", "viewer", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if svc.start != "2024-01-01" || svc.end != "2024-01-31" {
		t.Errorf("range = %s..%s", svc.start, svc.end)
	}
	var res service.DashboardResponse
	decodeData(t, env, &res)
	if res.TotalSales != "1000.00" || res.NetProfitLoss != "300.00" {
		t.Errorf("dashboard = %+v", res)
	}

	w, _ = call(t, r, http.MethodGet, "/api/dashboard?start_date=bad", "viewer", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad date status = %d, want 400", w.Code)
	}
}
