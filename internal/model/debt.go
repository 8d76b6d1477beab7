package model

import (
	"time"

	"backoffice/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebtType constants
const (
	DebtTypeRegular      = "regular"
	DebtTypeBusinessLoan = "business_loan"
)

// Debt is money owed by a debtor. RemainingAmount and Status are derived from
// Amount and the payments ledger and rewritten on every mutation.
type Debt struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DebtorName      string          `gorm:"type:varchar(255);not null;index" json:"debtor_name"`
	Phone           string          `gorm:"type:varchar(30)" json:"phone"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	DebtDate        time.Time       `gorm:"type:date;not null;index" json:"debt_date"`
	DueDate         *time.Time      `gorm:"type:date;index" json:"due_date"`
	Status          string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"remaining_amount"`
	DebtType        string          `gorm:"type:varchar(20);not null;default:'regular'" json:"debt_type"`
	BusinessPurpose string          `gorm:"type:text" json:"business_purpose"`
	InvoiceImage    string          `gorm:"type:text" json:"invoice_image"`
	Notes           string          `gorm:"type:text" json:"notes"`
	CreatedBy       *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	Payments        []Payment       `gorm:"foreignKey:DebtID;constraint:OnDelete:CASCADE" json:"payments"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// IsBusinessLoan reports whether the debt is money lent to the business.
func (d *Debt) IsBusinessLoan() bool {
	return d.DebtType == DebtTypeBusinessLoan
}

// Account returns the ledger view of the debt. Debts never revolve.
func (d *Debt) Account() ledger.Account {
	return ledger.Account{
		Principal: d.Amount,
		Payments:  PaymentEntries(d.Payments),
	}
}

// Refresh rewrites the derived columns from the ledger.
func (d *Debt) Refresh() ledger.Balance {
	b := ledger.Compute(d.Account())
	d.RemainingAmount = b.Remaining
	d.Status = string(b.Status)
	return b
}
