package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a purchase, paid at once or split into monthly installments.
type Expense struct {
	Base
	UserID             string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Description        string          `gorm:"size:255;not null" json:"description"`
	TotalAmount        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	PurchaseDate       time.Time       `gorm:"type:date;not null" json:"purchase_date"`
	IsInstallment      bool            `gorm:"not null;default:false" json:"is_installment"`
	InstallmentsNumber int             `gorm:"not null;default:1" json:"installments_number"`

	// Relationships
	Installments []Installment `gorm:"foreignKey:ExpenseID;constraint:OnDelete:CASCADE" json:"installments,omitempty"`
}

// InstallmentCount is the number of installments the expense is split into;
// a non-installment expense counts as one.
func (e *Expense) InstallmentCount() int {
	if !e.IsInstallment {
		return 1
	}
	return e.InstallmentsNumber
}
