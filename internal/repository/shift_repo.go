package repository

import (
	"context"
	"time"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShiftRepository interface {
	Create(ctx context.Context, shift *model.Shift) error
	Save(ctx context.Context, shift *model.Shift) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Shift, error)
	FindByDateAndType(ctx context.Context, date time.Time, shiftType string) (*model.Shift, error)
	List(ctx context.Context, from, to *time.Time, page, limit int) ([]model.Shift, int64, error)
	ListAll(ctx context.Context, from, to *time.Time) ([]model.Shift, error)
}

type shiftRepository struct {
	db *gorm.DB
}

func NewShiftRepository(db *gorm.DB) ShiftRepository {
	return &shiftRepository{db: db}
}

func (r *shiftRepository) Create(ctx context.Context, shift *model.Shift) error {
	return translate(GetDB(ctx, r.db).Create(shift).Error)
}

func (r *shiftRepository) Save(ctx context.Context, shift *model.Shift) error {
	return translate(GetDB(ctx, r.db).Save(shift).Error)
}

func (r *shiftRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Shift{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *shiftRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Shift, error) {
	var shift model.Shift
	if err := GetDB(ctx, r.db).First(&shift, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &shift, nil
}

func (r *shiftRepository) FindByDateAndType(ctx context.Context, date time.Time, shiftType string) (*model.Shift, error) {
	var shift model.Shift
	if err := GetDB(ctx, r.db).Where("date = ? AND type = ?", date, shiftType).First(&shift).Error; err != nil {
		return nil, translate(err)
	}
	return &shift, nil
}

func (r *shiftRepository) List(ctx context.Context, from, to *time.Time, page, limit int) ([]model.Shift, int64, error) {
	var shifts []model.Shift
	var total int64

	db := dateRange(GetDB(ctx, r.db).Model(&model.Shift{}), "date", from, to)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("date desc, type asc").Offset(offset).Limit(limit).Find(&shifts).Error; err != nil {
		return nil, 0, err
	}

	return shifts, total, nil
}

func (r *shiftRepository) ListAll(ctx context.Context, from, to *time.Time) ([]model.Shift, error) {
	var shifts []model.Shift
	if err := dateRange(GetDB(ctx, r.db), "date", from, to).Find(&shifts).Error; err != nil {
		return nil, err
	}
	return shifts, nil
}
