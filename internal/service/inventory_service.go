package service

import (
	"context"
	"strings"

	"backoffice/internal/metrics"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DTOs
type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UnitRequest struct {
	Name   string `json:"name" binding:"required"`
	Symbol string `json:"symbol"`
}

type CreateProductRequest struct {
	SKU          string `json:"sku" binding:"required"`
	Name         string `json:"name" binding:"required"`
	CategoryID   string `json:"category_id"`
	UnitID       string `json:"unit_id"`
	Price        string `json:"price"`         // Decimal string
	MinStock     string `json:"min_stock"`     // Decimal string
	InitialStock string `json:"initial_stock"` // recorded as an "in" movement
}

type UpdateProductRequest struct {
	SKU        string `json:"sku" binding:"required"`
	Name       string `json:"name" binding:"required"`
	CategoryID string `json:"category_id"`
	UnitID     string `json:"unit_id"`
	Price      string `json:"price"`
	MinStock   string `json:"min_stock"`
}

type MovementRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Type      string `json:"type" binding:"required,oneof=in out"`
	Quantity  string `json:"quantity" binding:"required"` // Decimal string
	Note      string `json:"note"`
}

type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UnitResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

type ProductResponse struct {
	ID           string  `json:"id"`
	SKU          string  `json:"sku"`
	Name         string  `json:"name"`
	CategoryID   *string `json:"category_id"`
	CategoryName string  `json:"category_name,omitempty"`
	UnitID       *string `json:"unit_id"`
	UnitName     string  `json:"unit_name,omitempty"`
	CurrentStock string  `json:"current_stock"`
	MinStock     string  `json:"min_stock"`
	Price        string  `json:"price"`
	LowStock     bool    `json:"low_stock"`
}

type MovementResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Type        string `json:"type"`
	Quantity    string `json:"quantity"`
	StockAfter  string `json:"stock_after"`
	Note        string `json:"note"`
	CreatedAt   string `json:"created_at"`
}

type InventoryService interface {
	GetCategories(ctx context.Context) ([]CategoryResponse, error)
	CreateCategory(ctx context.Context, userID string, req CategoryRequest) (CategoryResponse, error)
	GetUnits(ctx context.Context) ([]UnitResponse, error)
	CreateUnit(ctx context.Context, userID string, req UnitRequest) (UnitResponse, error)
	GetProducts(ctx context.Context, filter repository.ProductFilter, page, limit int) ([]ProductResponse, int64, error)
	CreateProduct(ctx context.Context, userID string, req CreateProductRequest) (ProductResponse, error)
	UpdateProduct(ctx context.Context, userID, id string, req UpdateProductRequest) (ProductResponse, error)
	DeleteProduct(ctx context.Context, userID, id string) error
	GetMovements(ctx context.Context, productID string, page, limit int) ([]MovementResponse, int64, error)
	RecordMovement(ctx context.Context, userID string, req MovementRequest) (MovementResponse, error)
	GetProductStats(ctx context.Context) (*model.ProductStats, error)
}

type inventoryService struct {
	categoryRepo repository.CategoryRepository
	unitRepo     repository.UnitRepository
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	statsRepo    repository.StatisticsRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	publisher    EventPublisher
}

func NewInventoryService(
	categoryRepo repository.CategoryRepository,
	unitRepo repository.UnitRepository,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	statsRepo repository.StatisticsRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	publisher EventPublisher,
) InventoryService {
	return &inventoryService{
		categoryRepo: categoryRepo,
		unitRepo:     unitRepo,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		statsRepo:    statsRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		publisher:    publisherOrNop(publisher),
	}
}

var errInsufficientStock = apperror.NewValidationError("insufficient stock for this movement",
	apperror.FieldError{Field: "quantity", Message: "exceeds current stock"})

func toProductResponse(p *model.Product) ProductResponse {
	res := ProductResponse{
		ID:           p.ID.String(),
		SKU:          p.SKU,
		Name:         p.Name,
		CurrentStock: p.CurrentStock.String(),
		MinStock:     p.MinStock.String(),
		Price:        money(p.Price),
		LowStock:     p.IsLowStock(),
	}
	if p.CategoryID != nil {
		id := p.CategoryID.String()
		res.CategoryID = &id
	}
	if p.Category != nil {
		res.CategoryName = p.Category.Name
	}
	if p.UnitID != nil {
		id := p.UnitID.String()
		res.UnitID = &id
	}
	if p.Unit != nil {
		res.UnitName = p.Unit.Name
	}
	return res
}

func toMovementResponse(m *model.StockMovement) MovementResponse {
	res := MovementResponse{
		ID:         m.ID.String(),
		ProductID:  m.ProductID.String(),
		Type:       m.Type,
		Quantity:   m.Quantity.String(),
		StockAfter: m.StockAfter.String(),
		Note:       m.Note,
		CreatedAt:  m.CreatedAt.Format(dateTimeLayout),
	}
	if m.Product != nil {
		res.ProductName = m.Product.Name
	}
	return res
}

func optionalID(resource, value string) (*uuid.UUID, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, apperror.NewValidationError("invalid "+strings.ToLower(resource)+" id")
	}
	return &id, nil
}

// quantity parses a stock figure; stock keeps three decimal places.
func quantity(field, value string, allowZero bool) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		value = "0"
	}
	q, err := parseDecimal(field, value, 3, maxQuantity)
	if err != nil {
		return decimal.Zero, err
	}
	if q.IsNegative() || (!allowZero && q.IsZero()) {
		return decimal.Zero, apperror.NewValidationError("invalid "+field,
			apperror.FieldError{Field: field, Message: "must be greater than zero"})
	}
	return q, nil
}

func (s *inventoryService) GetCategories(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, repoError("Category", "list", err)
	}
	res := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		res = append(res, CategoryResponse{ID: c.ID.String(), Name: c.Name, Description: c.Description})
	}
	return res, nil
}

func (s *inventoryService) CreateCategory(ctx context.Context, userID string, req CategoryRequest) (CategoryResponse, error) {
	category := model.Category{Name: strings.TrimSpace(req.Name), Description: req.Description}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.categoryRepo.Create(txCtx, &category); err != nil {
			return repoError("Category", "create", err)
		}
		return writeAudit(txCtx, s.auditRepo, userID, model.ActionCreateCategory, category.ID.String(), category.Name, req)
	})
	if err != nil {
		return CategoryResponse{}, err
	}
	return CategoryResponse{ID: category.ID.String(), Name: category.Name, Description: category.Description}, nil
}

func (s *inventoryService) GetUnits(ctx context.Context) ([]UnitResponse, error) {
	units, err := s.unitRepo.List(ctx)
	if err != nil {
		return nil, repoError("Unit", "list", err)
	}
	res := make([]UnitResponse, 0, len(units))
	for _, u := range units {
		res = append(res, UnitResponse{ID: u.ID.String(), Name: u.Name, Symbol: u.Symbol})
	}
	return res, nil
}

func (s *inventoryService) CreateUnit(ctx context.Context, userID string, req UnitRequest) (UnitResponse, error) {
	unit := model.Unit{Name: strings.TrimSpace(req.Name), Symbol: req.Symbol}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.unitRepo.Create(txCtx, &unit); err != nil {
			return repoError("Unit", "create", err)
		}
		return writeAudit(txCtx, s.auditRepo, userID, model.ActionCreateUnit, unit.ID.String(), unit.Name, req)
	})
	if err != nil {
		return UnitResponse{}, err
	}
	return UnitResponse{ID: unit.ID.String(), Name: unit.Name, Symbol: unit.Symbol}, nil
}

func (s *inventoryService) GetProducts(ctx context.Context, filter repository.ProductFilter, page, limit int) ([]ProductResponse, int64, error) {
	products, total, err := s.productRepo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, repoError("Product", "list", err)
	}

	res := make([]ProductResponse, 0, len(products))
	for i := range products {
		res = append(res, toProductResponse(&products[i]))
	}
	return res, total, nil
}

func (s *inventoryService) CreateProduct(ctx context.Context, userID string, req CreateProductRequest) (ProductResponse, error) {
	product := model.Product{SKU: strings.TrimSpace(req.SKU), Name: strings.TrimSpace(req.Name)}
	if err := fillProduct(&product, req.CategoryID, req.UnitID, req.Price, req.MinStock); err != nil {
		return ProductResponse{}, err
	}
	initial, err := quantity("initial_stock", req.InitialStock, true)
	if err != nil {
		return ProductResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.Create(txCtx, &product); err != nil {
			return repoError("Product", "create", err)
		}
		if initial.IsPositive() {
			if _, err := s.applyMovement(txCtx, userID, &product, model.MovementIn, initial, "initial stock"); err != nil {
				return err
			}
		}
		return writeAudit(txCtx, s.auditRepo, userID, model.ActionCreateProduct, product.ID.String(), product.Name, req)
	})
	if err != nil {
		return ProductResponse{}, err
	}

	return toProductResponse(&product), nil
}

func fillProduct(p *model.Product, categoryID, unitID, price, minStock string) error {
	var err error
	if p.CategoryID, err = optionalID("Category", categoryID); err != nil {
		return err
	}
	if p.UnitID, err = optionalID("Unit", unitID); err != nil {
		return err
	}
	if p.Price, err = amountOrZero("price", price); err != nil {
		return err
	}
	if p.MinStock, err = quantity("min_stock", minStock, true); err != nil {
		return err
	}
	return nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, userID, id string, req UpdateProductRequest) (ProductResponse, error) {
	productID, err := parseID("Product", id)
	if err != nil {
		return ProductResponse{}, err
	}

	var product *model.Product
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		p, err := s.productRepo.FindByIDForUpdate(txCtx, productID)
		if err != nil {
			return repoError("Product", "load", err)
		}
		p.SKU = strings.TrimSpace(req.SKU)
		p.Name = strings.TrimSpace(req.Name)
		if err := fillProduct(p, req.CategoryID, req.UnitID, req.Price, req.MinStock); err != nil {
			return err
		}
		if err := s.productRepo.Update(txCtx, p); err != nil {
			return repoError("Product", "update", err)
		}
		product = p
		return writeAudit(txCtx, s.auditRepo, userID, model.ActionUpdateProduct, p.ID.String(), p.Name, req)
	})
	if err != nil {
		return ProductResponse{}, err
	}

	return toProductResponse(product), nil
}

func (s *inventoryService) DeleteProduct(ctx context.Context, userID, id string) error {
	productID, err := parseID("Product", id)
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, err := s.productRepo.FindByID(txCtx, productID)
		if err != nil {
			return repoError("Product", "load", err)
		}
		if err := s.productRepo.Delete(txCtx, productID); err != nil {
			return repoError("Product", "delete", err)
		}
		return writeAudit(txCtx, s.auditRepo, userID, model.ActionDeleteProduct, product.ID.String(), product.Name,
			map[string]interface{}{"deleted": true})
	})
}

func (s *inventoryService) GetMovements(ctx context.Context, productID string, page, limit int) ([]MovementResponse, int64, error) {
	var pid *uuid.UUID
	if productID != "" {
		id, err := parseID("Product", productID)
		if err != nil {
			return nil, 0, err
		}
		pid = &id
	}

	movements, total, err := s.movementRepo.List(ctx, pid, page, limit)
	if err != nil {
		return nil, 0, repoError("Movement", "list", err)
	}

	res := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		res = append(res, toMovementResponse(&movements[i]))
	}
	return res, total, nil
}

// RecordMovement applies a stock change under a row lock on the product.
func (s *inventoryService) RecordMovement(ctx context.Context, userID string, req MovementRequest) (MovementResponse, error) {
	productID, err := parseID("Product", req.ProductID)
	if err != nil {
		return MovementResponse{}, err
	}
	qty, err := quantity("quantity", req.Quantity, false)
	if err != nil {
		return MovementResponse{}, err
	}

	var movement *model.StockMovement
	var product *model.Product
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		p, err := s.productRepo.FindByIDForUpdate(txCtx, productID)
		if err != nil {
			return repoError("Product", "load", err)
		}
		m, err := s.applyMovement(txCtx, userID, p, req.Type, qty, req.Note)
		if err != nil {
			return err
		}
		movement, product = m, p
		return nil
	})
	if err != nil {
		return MovementResponse{}, err
	}

	metrics.StockMovements.WithLabelValues(movement.Type).Inc()
	s.publisher.Publish(EventStockUpdated, map[string]interface{}{
		"product_id":    product.ID.String(),
		"current_stock": product.CurrentStock.String(),
		"low_stock":     product.IsLowStock(),
	})
	movement.Product = product
	return toMovementResponse(movement), nil
}

// applyMovement must run inside a transaction holding the product row.
func (s *inventoryService) applyMovement(txCtx context.Context, userID string, p *model.Product, movementType string, qty decimal.Decimal, note string) (*model.StockMovement, error) {
	stock := p.CurrentStock
	action := model.ActionStockIn
	switch movementType {
	case model.MovementIn:
		stock = stock.Add(qty)
	case model.MovementOut:
		if qty.GreaterThan(stock) {
			return nil, errInsufficientStock
		}
		stock = stock.Sub(qty)
		action = model.ActionStockOut
	default:
		return nil, apperror.NewValidationError("invalid movement type",
			apperror.FieldError{Field: "type", Message: "must be in or out"})
	}

	if err := s.productRepo.UpdateStock(txCtx, p.ID, stock); err != nil {
		return nil, repoError("Product", "update", err)
	}
	p.CurrentStock = stock

	movement := &model.StockMovement{
		ProductID:  p.ID,
		Type:       movementType,
		Quantity:   qty,
		StockAfter: stock,
		Note:       note,
		CreatedBy:  parseUserID(userID),
	}
	if err := s.movementRepo.Create(txCtx, movement); err != nil {
		return nil, repoError("Movement", "create", err)
	}

	if err := writeAudit(txCtx, s.auditRepo, userID, action, p.ID.String(), p.Name, map[string]interface{}{
		"movement_id": movement.ID.String(),
		"quantity":    qty.String(),
		"stock_after": stock.String(),
		"note":        note,
	}); err != nil {
		return nil, err
	}
	return movement, nil
}

func (s *inventoryService) GetProductStats(ctx context.Context) (*model.ProductStats, error) {
	stats, err := s.statsRepo.GetProductStats(ctx)
	if err != nil {
		return nil, apperror.Persistence("failed to load product statistics", err)
	}
	top, err := s.statsRepo.GetTopMovedProducts(ctx, model.MovementOut, 5)
	if err != nil {
		return nil, apperror.Persistence("failed to load product statistics", err)
	}
	stats.TopMoved = top
	if stats.TopMoved == nil {
		stats.TopMoved = []model.ProductRanking{}
	}
	return stats, nil
}
