package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ShiftMorning = "morning"
	ShiftEvening = "evening"
)

// Shift is one till session. At most one shift exists per (date, type).
type Shift struct {
	ID         uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Date       time.Time        `gorm:"type:date;not null;uniqueIndex:idx_shift_date_type" json:"date"`
	Type       string           `gorm:"type:varchar(10);not null;uniqueIndex:idx_shift_date_type" json:"type"`
	Sales      decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0" json:"sales"`
	Expenses   decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0" json:"expenses"`
	Cash       decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0" json:"cash"`
	ActualCash *decimal.Decimal `gorm:"type:decimal(18,2)" json:"actual_cash"`
	Difference decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0" json:"difference"`
	Notes      string           `gorm:"type:text" json:"notes"`
	CreatedBy  *uuid.UUID       `gorm:"type:uuid" json:"created_by"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// Reconcile recomputes Difference: counted cash minus recorded cash, or zero
// while the till has not been counted.
func (s *Shift) Reconcile() {
	if s.ActualCash == nil {
		s.Difference = decimal.Zero
		return
	}
	s.Difference = s.ActualCash.Sub(s.Cash)
}
