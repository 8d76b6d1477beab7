// Package app wires repositories and services for both binaries.
package app

import (
	"backoffice/internal/config"
	"backoffice/internal/repository"
	"backoffice/internal/service"

	"gorm.io/gorm"
)

// Services bundles every business service (Repository -> Service)
type Services struct {
	Debt      service.DebtService
	Expense   service.ExpenseService
	Shift     service.ShiftService
	Dashboard service.DashboardService
	Inventory service.InventoryService
	Reminder  service.ReminderService
	User      service.UserService
	Role      service.RoleService
	Audit     service.AuditService
}

// NewServices builds the services on top of db. publisher may be nil when no
// realtime clients can be connected, as in the admin CLI.
func NewServices(db *gorm.DB, cfg *config.Config, publisher service.EventPublisher) *Services {
	txManager := repository.NewTransactionManager(db)
	auditRepo := repository.NewAuditRepository(db)
	debtRepo := repository.NewDebtRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)

	tokens := service.TokenConfig{Secret: cfg.JWT.Secret, Expiry: cfg.JWT.ExpiryHours}

	return &Services{
		Debt:      service.NewDebtService(debtRepo, auditRepo, txManager, publisher, nil),
		Expense:   service.NewExpenseService(expenseRepo, auditRepo, txManager, publisher, nil),
		Shift:     service.NewShiftService(shiftRepo, auditRepo, txManager, publisher),
		Dashboard: service.NewDashboardService(shiftRepo, debtRepo, expenseRepo),
		Inventory: service.NewInventoryService(
			repository.NewCategoryRepository(db),
			repository.NewUnitRepository(db),
			repository.NewProductRepository(db),
			repository.NewStockMovementRepository(db),
			repository.NewStatisticsRepository(db),
			auditRepo,
			txManager,
			publisher,
		),
		Reminder: service.NewReminderService(debtRepo, publisher, cfg.Reminder.WindowDays, nil),
		User:     service.NewUserService(userRepo, auditRepo, txManager, tokens, nil),
		Role:     service.NewRoleService(roleRepo, txManager),
		Audit:    service.NewAuditService(auditRepo),
	}
}
