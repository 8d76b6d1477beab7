package model

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user role with associated permissions
type Role struct {
	ID          uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	IsSystem    bool         `gorm:"default:false" json:"is_system"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Permission represents a single permission that can be assigned to roles
type Permission struct {
	ID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code  string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"code"` // e.g. "debts.write"
	Name  string    `gorm:"type:varchar(255);not null" json:"name"`
	Group string    `gorm:"type:varchar(50);not null;index" json:"group"`
}

// Permission codes
const (
	PermDebtsRead      = "debts.read"
	PermDebtsWrite     = "debts.write"
	PermDebtsDelete    = "debts.delete"
	PermExpensesRead   = "expenses.read"
	PermExpensesWrite  = "expenses.write"
	PermExpensesDelete = "expenses.delete"
	PermShiftsRead     = "shifts.read"
	PermShiftsWrite    = "shifts.write"
	PermShiftsDelete   = "shifts.delete"
	PermDashboardRead  = "dashboard.read"
	PermInventoryRead  = "inventory.read"
	PermInventoryWrite = "inventory.write"
	PermUsersRead      = "users.read"
	PermUsersWrite     = "users.write"
	PermUsersDelete    = "users.delete"
	PermRolesRead      = "roles.read"
	PermAuditRead      = "audit.read"
)

// PermissionCatalog lists every permission with its display name and group.
var PermissionCatalog = []Permission{
	{Code: PermDebtsRead, Name: "View debts", Group: "debts"},
	{Code: PermDebtsWrite, Name: "Create and pay debts", Group: "debts"},
	{Code: PermDebtsDelete, Name: "Delete debts", Group: "debts"},
	{Code: PermExpensesRead, Name: "View expenses", Group: "expenses"},
	{Code: PermExpensesWrite, Name: "Create and pay expenses", Group: "expenses"},
	{Code: PermExpensesDelete, Name: "Delete expenses", Group: "expenses"},
	{Code: PermShiftsRead, Name: "View shifts", Group: "shifts"},
	{Code: PermShiftsWrite, Name: "Record shifts", Group: "shifts"},
	{Code: PermShiftsDelete, Name: "Delete shifts", Group: "shifts"},
	{Code: PermDashboardRead, Name: "View dashboard", Group: "dashboard"},
	{Code: PermInventoryRead, Name: "View inventory", Group: "inventory"},
	{Code: PermInventoryWrite, Name: "Manage inventory", Group: "inventory"},
	{Code: PermUsersRead, Name: "View users", Group: "users"},
	{Code: PermUsersWrite, Name: "Manage users", Group: "users"},
	{Code: PermUsersDelete, Name: "Delete users", Group: "users"},
	{Code: PermRolesRead, Name: "View roles", Group: "roles"},
	{Code: PermAuditRead, Name: "View audit log", Group: "audit"},
}

// DefaultRolePermissions is the fixed permission set of each built-in role.
var DefaultRolePermissions = map[string][]string{
	RoleAdmin: allPermissionCodes(),
	RoleEditor: {
		PermDebtsRead, PermDebtsWrite,
		PermExpensesRead, PermExpensesWrite,
		PermShiftsRead, PermShiftsWrite,
		PermDashboardRead,
		PermInventoryRead, PermInventoryWrite,
	},
	RoleViewer: {
		PermDebtsRead, PermExpensesRead, PermShiftsRead,
		PermDashboardRead, PermInventoryRead,
	},
}

func allPermissionCodes() []string {
	codes := make([]string, 0, len(PermissionCatalog))
	for _, p := range PermissionCatalog {
		codes = append(codes, p.Code)
	}
	return codes
}

// IsValidRole reports whether name is one of the built-in roles.
func IsValidRole(name string) bool {
	_, ok := DefaultRolePermissions[name]
	return ok
}
