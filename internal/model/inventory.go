package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups products (e.g. "Vegetables", "Drinks")
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Unit is a unit of measure (kg, piece, box)
type Unit struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Symbol    string    `gorm:"type:varchar(10)" json:"symbol"`
	CreatedAt time.Time `json:"created_at"`
}

// Product is a stocked kitchen or bar item
type Product struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SKU          string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"sku"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	CategoryID   *uuid.UUID      `gorm:"type:uuid;index" json:"category_id"`
	Category     *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	UnitID       *uuid.UUID      `gorm:"type:uuid;index" json:"unit_id"`
	Unit         *Unit           `gorm:"foreignKey:UnitID" json:"unit,omitempty"`
	CurrentStock decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0" json:"current_stock"`
	MinStock     decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0" json:"min_stock"`
	Price        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"price"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

// IsLowStock reports whether stock has fallen to the reorder level.
func (p *Product) IsLowStock() bool {
	return p.MinStock.IsPositive() && p.CurrentStock.LessThanOrEqual(p.MinStock)
}

// Movement directions
const (
	MovementIn  = "in"
	MovementOut = "out"
)

// StockMovement records one stock change; StockAfter is the product stock
// once the movement was applied.
type StockMovement struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product    *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Type       string          `gorm:"type:varchar(10);not null" json:"type"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,3);not null" json:"quantity"`
	StockAfter decimal.Decimal `gorm:"type:decimal(18,3);not null" json:"stock_after"`
	Note       string          `gorm:"type:text" json:"note"`
	CreatedBy  *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt  time.Time       `gorm:"index" json:"created_at"`
}
