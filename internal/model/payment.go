package model

import (
	"time"

	"backoffice/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is an append-only row of a debt's or an expense's payments ledger.
// Exactly one of DebtID and ExpenseID is set. Rows are never updated; a
// mistaken payment is cancelled by a second row whose ReversesID points at it.
type Payment struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DebtID       *uuid.UUID      `gorm:"type:uuid;index" json:"debt_id,omitempty"`
	ExpenseID    *uuid.UUID      `gorm:"type:uuid;index" json:"expense_id,omitempty"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Date         time.Time       `gorm:"type:date;not null" json:"date"`
	Notes        string          `gorm:"type:text" json:"notes"`
	ReceiptImage string          `gorm:"type:text" json:"receipt_image,omitempty"`
	ReversesID   *uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"reverses_id,omitempty"`
	CreatedBy    *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Addition is an append-only row raising the principal of a loan expense.
type Addition struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ExpenseID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"expense_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Date       time.Time       `gorm:"type:date;not null" json:"date"`
	Notes      string          `gorm:"type:text" json:"notes"`
	ReversesID *uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"reverses_id,omitempty"`
	CreatedBy  *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt  time.Time       `json:"created_at"`
}

func PaymentEntries(ps []Payment) []ledger.Entry {
	entries := make([]ledger.Entry, 0, len(ps))
	for _, p := range ps {
		entries = append(entries, ledger.Entry{ID: p.ID, Amount: p.Amount, ReversesID: p.ReversesID})
	}
	return entries
}

func AdditionEntries(as []Addition) []ledger.Entry {
	entries := make([]ledger.Entry, 0, len(as))
	for _, a := range as {
		entries = append(entries, ledger.Entry{ID: a.ID, Amount: a.Amount, ReversesID: a.ReversesID})
	}
	return entries
}
