package repository

import (
	"context"
	"time"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExpenseFilter struct {
	Category string
	LoanOnly bool
	Search   string
	From     *time.Time
	To       *time.Time
}

type ExpenseRepository interface {
	Create(ctx context.Context, expense *model.Expense) error
	Save(ctx context.Context, expense *model.Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Expense, error)
	List(ctx context.Context, filter ExpenseFilter, page, limit int) ([]model.Expense, int64, error)
	ListAll(ctx context.Context, from, to *time.Time) ([]model.Expense, error)
	AddPayment(ctx context.Context, payment *model.Payment) error
	AddAddition(ctx context.Context, addition *model.Addition) error
}

type expenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func orderedAdditions(db *gorm.DB) *gorm.DB {
	return db.Order("additions.created_at asc")
}

func (r *expenseRepository) Create(ctx context.Context, expense *model.Expense) error {
	return translate(GetDB(ctx, r.db).Omit(clause.Associations).Create(expense).Error)
}

func (r *expenseRepository) Save(ctx context.Context, expense *model.Expense) error {
	return translate(GetDB(ctx, r.db).Omit(clause.Associations).Save(expense).Error)
}

func (r *expenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("expense_id = ?", id).Delete(&model.Payment{}).Error; err != nil {
		return err
	}
	if err := db.Where("expense_id = ?", id).Delete(&model.Addition{}).Error; err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&model.Expense{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *expenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	var expense model.Expense
	if err := GetDB(ctx, r.db).
		Preload("Payments", orderedPayments).
		Preload("Additions", orderedAdditions).
		First(&expense, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &expense, nil
}

func (r *expenseRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	db := GetDB(ctx, r.db)
	var expense model.Expense
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&expense).Error; err != nil {
		return nil, translate(err)
	}
	if err := db.Where("expense_id = ?", id).Order("created_at asc").Find(&expense.Payments).Error; err != nil {
		return nil, err
	}
	if err := db.Where("expense_id = ?", id).Order("created_at asc").Find(&expense.Additions).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *expenseRepository) List(ctx context.Context, filter ExpenseFilter, page, limit int) ([]model.Expense, int64, error) {
	var expenses []model.Expense
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Expense{})
	if filter.Category != "" {
		db = db.Where("category = ?", filter.Category)
	}
	if filter.LoanOnly {
		db = db.Where("category = ?", model.LoanCategory)
	}
	if filter.Search != "" {
		db = db.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	db = dateRange(db, "date", filter.From, filter.To)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Payments", orderedPayments).Preload("Additions", orderedAdditions).
		Order("date desc, created_at desc").Offset(offset).Limit(limit).Find(&expenses).Error; err != nil {
		return nil, 0, err
	}

	return expenses, total, nil
}

func (r *expenseRepository) ListAll(ctx context.Context, from, to *time.Time) ([]model.Expense, error) {
	var expenses []model.Expense
	db := dateRange(GetDB(ctx, r.db), "date", from, to)
	if err := db.Preload("Payments").Preload("Additions").Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *expenseRepository) AddPayment(ctx context.Context, payment *model.Payment) error {
	return translate(GetDB(ctx, r.db).Create(payment).Error)
}

func (r *expenseRepository) AddAddition(ctx context.Context, addition *model.Addition) error {
	return translate(GetDB(ctx, r.db).Create(addition).Error)
}
