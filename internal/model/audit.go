package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateDebt    = "CREATE_DEBT"
	ActionUpdateDebt    = "UPDATE_DEBT"
	ActionDeleteDebt    = "DELETE_DEBT"
	ActionCreateExpense = "CREATE_EXPENSE"
	ActionUpdateExpense = "UPDATE_EXPENSE"
	ActionDeleteExpense = "DELETE_EXPENSE"
	ActionAddPayment    = "ADD_PAYMENT"
	ActionVoidPayment   = "VOID_PAYMENT"
	ActionAddAddition   = "ADD_ADDITION"
	ActionVoidAddition  = "VOID_ADDITION"

	ActionCreateShift = "CREATE_SHIFT"
	ActionUpdateShift = "UPDATE_SHIFT"
	ActionDeleteShift = "DELETE_SHIFT"

	ActionCreateCategory = "CREATE_CATEGORY"
	ActionCreateUnit     = "CREATE_UNIT"
	ActionCreateProduct  = "CREATE_PRODUCT"
	ActionUpdateProduct  = "UPDATE_PRODUCT"
	ActionDeleteProduct  = "DELETE_PRODUCT"
	ActionStockIn        = "STOCK_IN"
	ActionStockOut       = "STOCK_OUT"

	ActionCreateUser = "CREATE_USER"
	ActionUpdateUser = "UPDATE_USER"
	ActionDeleteUser = "DELETE_USER"
)

// AuditLog tracks Who, What, and When for every ledger, shift and stock change
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nil for background jobs
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
