package handler

import (
	"context"
	"net/http"
	"testing"

	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/internal/service"

	"github.com/shopspring/decimal"
)

type fakeInventoryService struct {
	service.InventoryService
	filter    repository.ProductFilter
	productID string
}

func (f *fakeInventoryService) GetProducts(_ context.Context, filter repository.ProductFilter, _, _ int) ([]service.ProductResponse, int64, error) {
	f.filter = filter
	return []service.ProductResponse{}, 0, nil
}

func (f *fakeInventoryService) GetMovements(_ context.Context, productID string, _, _ int) ([]service.MovementResponse, int64, error) {
	f.productID = productID
	return []service.MovementResponse{}, 0, nil
}

func (f *fakeInventoryService) GetProductStats(context.Context) (*model.ProductStats, error) {
	return &model.ProductStats{TotalProducts: 3, TotalStockValue: decimal.NewFromInt(120), TopMoved: []model.ProductRanking{}}, nil
}

func TestInventoryHandler_ProductFilters(t *testing.T) {
	svc := &fakeInventoryService{}
	r := newRouter(t, NewInventoryHandler(svc))

	catID := "0d3c2b1a-9f8e-4d7c-8b6a-5f4e3d2c1b0a"
	w, _ := call(t, r, http.MethodGet, "/api/products?search=rice&low_stock=true&category_id="+catID, "viewer", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if svc.filter.Search != "rice" || !svc.filter.LowStock || svc.filter.CategoryID == nil || svc.filter.CategoryID.String() != catID {
		t.Errorf("filter = %+v", svc.filter)
	}

	w, _ = call(t, r, http.MethodGet, "/api/products?category_id=nope", "viewer", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad category status = %d, want 400", w.Code)
	}
}

func TestInventoryHandler_StatsAndMovements(t *testing.T) {
	svc := &fakeInventoryService{}
	r := newRouter(t, NewInventoryHandler(svc))

	w, env := call(t, r, http.MethodGet, "/api/products/stats", "viewer", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats status = %d, want 200", w.Code)
	}
	var stats model.ProductStats
	decodeData(t, env, &stats)
	if stats.TotalProducts != 3 {
		t.Errorf("stats = %+v", stats)
	}

	if w, _ := call(t, r, http.MethodGet, "/api/movements/product/p42", "viewer", nil); w.Code != http.StatusOK {
		t.Fatalf("movements status = %d, want 200", w.Code)
	}
	if svc.productID != "p42" {
		t.Errorf("productID = %q, want p42", svc.productID)
	}

	if w, _ := call(t, r, http.MethodPost, "/api/movements", "viewer", map[string]string{}); w.Code != http.StatusForbidden {
		t.Errorf("viewer movement status = %d, want 403", w.Code)
	}
}
