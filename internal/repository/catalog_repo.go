package repository

import (
	"context"

	"backoffice/internal/model"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	List(ctx context.Context) ([]model.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	return translate(GetDB(ctx, r.db).Create(category).Error)
}

func (r *categoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := GetDB(ctx, r.db).Order("name asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

type UnitRepository interface {
	Create(ctx context.Context, unit *model.Unit) error
	List(ctx context.Context) ([]model.Unit, error)
}

type unitRepository struct {
	db *gorm.DB
}

func NewUnitRepository(db *gorm.DB) UnitRepository {
	return &unitRepository{db: db}
}

func (r *unitRepository) Create(ctx context.Context, unit *model.Unit) error {
	return translate(GetDB(ctx, r.db).Create(unit).Error)
}

func (r *unitRepository) List(ctx context.Context) ([]model.Unit, error) {
	var units []model.Unit
	if err := GetDB(ctx, r.db).Order("name asc").Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}
