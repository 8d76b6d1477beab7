package repository

import (
	"context"
	"fmt"

	"backoffice/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StatisticsRepository interface {
	GetProductStats(ctx context.Context) (*model.ProductStats, error)
	GetTopMovedProducts(ctx context.Context, movementType string, limit int) ([]model.ProductRanking, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) GetProductStats(ctx context.Context) (*model.ProductStats, error) {
	db := GetDB(ctx, r.db)
	stats := &model.ProductStats{}

	var products struct {
		Total    int64
		LowStock int64
		Value    string
	}
	if err := db.Model(&model.Product{}).
		Select("COUNT(*) as total, " +
			"COUNT(*) FILTER (WHERE min_stock > 0 AND current_stock <= min_stock) as low_stock, " +
			"COALESCE(CAST(SUM(current_stock * price) AS TEXT), '0') as value").
		Scan(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to query product totals: %w", err)
	}
	stats.TotalProducts = products.Total
	stats.LowStockProducts = products.LowStock
	value, err := decimal.NewFromString(products.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stock value %q: %w", products.Value, err)
	}
	stats.TotalStockValue = value.Round(2)

	var movements []struct {
		Type  string
		Count int64
	}
	if err := db.Model(&model.StockMovement{}).Select("type, COUNT(*) as count").
		Group("type").Scan(&movements).Error; err != nil {
		return nil, fmt.Errorf("failed to query movement counts: %w", err)
	}
	for _, m := range movements {
		switch m.Type {
		case model.MovementIn:
			stats.MovementsIn = m.Count
		case model.MovementOut:
			stats.MovementsOut = m.Count
		}
	}

	return stats, nil
}

func (r *statisticsRepository) GetTopMovedProducts(ctx context.Context, movementType string, limit int) ([]model.ProductRanking, error) {
	var rankings []model.ProductRanking
	if err := GetDB(ctx, r.db).Table("stock_movements").
		Select("products.id as product_id, products.name as product_name, products.sku as product_sku, SUM(stock_movements.quantity) as total_quantity, COUNT(*) as movements").
		Joins("JOIN products ON products.id = stock_movements.product_id").
		Where("stock_movements.type = ?", movementType).
		Group("products.id, products.name, products.sku").
		Order("total_quantity DESC").
		Limit(limit).
		Scan(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	return rankings, nil
}
