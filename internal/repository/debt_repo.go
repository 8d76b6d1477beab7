package repository

import (
	"context"
	"time"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DebtFilter narrows List results. Zero values mean "any".
type DebtFilter struct {
	Status   string
	DebtType string
	Search   string
	From     *time.Time
	To       *time.Time
}

type DebtRepository interface {
	Create(ctx context.Context, debt *model.Debt) error
	Save(ctx context.Context, debt *model.Debt) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Debt, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Debt, error)
	List(ctx context.Context, filter DebtFilter, page, limit int) ([]model.Debt, int64, error)
	ListAll(ctx context.Context, from, to *time.Time) ([]model.Debt, error)
	ListDue(ctx context.Context, before time.Time) ([]model.Debt, error)
	AddPayment(ctx context.Context, payment *model.Payment) error
}

type debtRepository struct {
	db *gorm.DB
}

func NewDebtRepository(db *gorm.DB) DebtRepository {
	return &debtRepository{db: db}
}

func orderedPayments(db *gorm.DB) *gorm.DB {
	return db.Order("payments.created_at asc")
}

func (r *debtRepository) Create(ctx context.Context, debt *model.Debt) error {
	return translate(GetDB(ctx, r.db).Omit("Payments").Create(debt).Error)
}

// Save writes the debt's own columns. Ledger rows are only ever appended via AddPayment.
func (r *debtRepository) Save(ctx context.Context, debt *model.Debt) error {
	return translate(GetDB(ctx, r.db).Omit(clause.Associations).Save(debt).Error)
}

func (r *debtRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("debt_id = ?", id).Delete(&model.Payment{}).Error; err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&model.Debt{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *debtRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Debt, error) {
	var debt model.Debt
	if err := GetDB(ctx, r.db).Preload("Payments", orderedPayments).First(&debt, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &debt, nil
}

// FindByIDForUpdate locks the debt row for the rest of the transaction and
// then loads its ledger.
func (r *debtRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Debt, error) {
	db := GetDB(ctx, r.db)
	var debt model.Debt
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&debt).Error; err != nil {
		return nil, translate(err)
	}
	if err := db.Where("debt_id = ?", id).Order("created_at asc").Find(&debt.Payments).Error; err != nil {
		return nil, err
	}
	return &debt, nil
}

func (r *debtRepository) List(ctx context.Context, filter DebtFilter, page, limit int) ([]model.Debt, int64, error) {
	var debts []model.Debt
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Debt{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.DebtType != "" {
		db = db.Where("debt_type = ?", filter.DebtType)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		db = db.Where("debtor_name ILIKE ? OR phone ILIKE ?", like, like)
	}
	db = dateRange(db, "debt_date", filter.From, filter.To)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Payments", orderedPayments).Order("debt_date desc, created_at desc").
		Offset(offset).Limit(limit).Find(&debts).Error; err != nil {
		return nil, 0, err
	}

	return debts, total, nil
}

func (r *debtRepository) ListAll(ctx context.Context, from, to *time.Time) ([]model.Debt, error) {
	var debts []model.Debt
	db := dateRange(GetDB(ctx, r.db), "debt_date", from, to)
	if err := db.Preload("Payments").Find(&debts).Error; err != nil {
		return nil, err
	}
	return debts, nil
}

// ListDue returns debts whose due date is on or before the given day. The
// stored status is not consulted; callers settle paid-ness from the ledger.
func (r *debtRepository) ListDue(ctx context.Context, before time.Time) ([]model.Debt, error) {
	var debts []model.Debt
	if err := GetDB(ctx, r.db).Preload("Payments", orderedPayments).
		Where("due_date IS NOT NULL AND due_date <= ?", before).
		Order("due_date asc").Find(&debts).Error; err != nil {
		return nil, err
	}
	return debts, nil
}

func (r *debtRepository) AddPayment(ctx context.Context, payment *model.Payment) error {
	return translate(GetDB(ctx, r.db).Create(payment).Error)
}

func dateRange(db *gorm.DB, column string, from, to *time.Time) *gorm.DB {
	if from != nil {
		db = db.Where(column+" >= ?", *from)
	}
	if to != nil {
		db = db.Where(column+" <= ?", *to)
	}
	return db
}
