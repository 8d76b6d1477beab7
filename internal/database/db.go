package database

import (
	"log"
	"time"

	"backoffice/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewConnection initializes a new connection pool using GORM. Driver errors
// are translated so unique violations surface as gorm.ErrDuplicatedKey.
func NewConnection(dsn string, debug bool) (*gorm.DB, error) {
	level := logger.Warn
	if debug {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// Migrate creates or updates every table the service uses
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		log.Println("WARNING: could not enable pgcrypto:", err)
	}

	return db.AutoMigrate(
		&model.Role{},
		&model.Permission{},
		&model.User{},
		&model.AuditLog{},
		&model.Debt{},
		&model.Expense{},
		&model.Payment{},
		&model.Addition{},
		&model.Shift{},
		&model.Category{},
		&model.Unit{},
		&model.Product{},
		&model.StockMovement{},
	)
}
