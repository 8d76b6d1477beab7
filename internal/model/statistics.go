package model

import "github.com/shopspring/decimal"

// ProductStats summarises the inventory for GET /api/products/stats
type ProductStats struct {
	TotalProducts    int64            `json:"total_products"`
	LowStockProducts int64            `json:"low_stock_products"`
	TotalStockValue  decimal.Decimal  `json:"total_stock_value"`
	MovementsIn      int64            `json:"movements_in"`
	MovementsOut     int64            `json:"movements_out"`
	TopMoved         []ProductRanking `json:"top_moved"`
}

// ProductRanking represents a product ranked by moved quantity
type ProductRanking struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	ProductSKU    string          `json:"product_sku"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	Movements     int64           `json:"movements"`
}
