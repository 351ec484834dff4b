package models

import (
	"time"

	"saldo/internal/uuid"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Installment is one scheduled partial payment of an installment expense.
// Rows are derived from their expense and replaced wholesale, so there is no
// Base embed and no soft delete.
type Installment struct {
	ID                string          `gorm:"type:uuid;primaryKey" json:"id"`
	ExpenseID         string          `gorm:"type:uuid;not null;index" json:"expense_id"`
	UserID            string          `gorm:"type:uuid;not null;index:idx_installments_user_period" json:"user_id"`
	InstallmentAmount decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"installment_amount"`
	DueDate           time.Time       `gorm:"type:date;not null" json:"due_date"`
	Month             int             `gorm:"not null;index:idx_installments_user_period" json:"month"`
	Year              int             `gorm:"not null;index:idx_installments_user_period" json:"year"`
	CreatedAt         time.Time       `json:"created_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (i *Installment) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New()
	}
	return nil
}
