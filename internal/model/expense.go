package model

import (
	"time"

	"backoffice/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanCategory marks an expense as a revolving loan taken from the shop till.
const LoanCategory = "سلف من المحل"

// Expense is a treasury expense. Expenses in LoanCategory carry their own
// additions and payments ledgers; RemainingAmount and Status are derived.
type Expense struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"` // principal
	Category        string          `gorm:"type:varchar(100);not null;index" json:"category"`
	Date            time.Time       `gorm:"type:date;not null;index" json:"date"`
	Notes           string          `gorm:"type:text" json:"notes"`
	Status          string          `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"remaining_amount"`
	CreatedBy       *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	Payments        []Payment       `gorm:"foreignKey:ExpenseID;constraint:OnDelete:CASCADE" json:"payments"`
	Additions       []Addition      `gorm:"foreignKey:ExpenseID;constraint:OnDelete:CASCADE" json:"additions"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (e *Expense) IsLoan() bool {
	return e.Category == LoanCategory
}

// Account returns the ledger view of the expense.
func (e *Expense) Account() ledger.Account {
	return ledger.Account{
		Principal: e.Amount,
		Revolving: e.IsLoan(),
		Additions: AdditionEntries(e.Additions),
		Payments:  PaymentEntries(e.Payments),
	}
}

// Refresh rewrites the derived columns from the ledgers.
func (e *Expense) Refresh() ledger.Balance {
	b := ledger.Compute(e.Account())
	e.RemainingAmount = b.Remaining
	e.Status = string(b.Status)
	return b
}
