package models

import (
	"time"

	"saldo/internal/schedule"
	"saldo/internal/uuid"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FixedExpense is a recurring monthly obligation.
type FixedExpense struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Description   string          `gorm:"size:255;not null" json:"description"`
	MonthlyAmount decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"monthly_amount"`
	StartDate     time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate       time.Time       `gorm:"-" json:"end_date"`

	// Relationships
	Occurrences []FixedExpenseOccurrence `gorm:"foreignKey:FixedExpenseID;constraint:OnDelete:CASCADE" json:"occurrences,omitempty"`
}

// AfterFind derives EndDate, the date of the last generated occurrence.
func (f *FixedExpense) AfterFind(tx *gorm.DB) error {
	f.setEndDate()
	return nil
}

// AfterSave keeps EndDate current after create and update.
func (f *FixedExpense) AfterSave(tx *gorm.DB) error {
	f.setEndDate()
	return nil
}

func (f *FixedExpense) setEndDate() {
	f.EndDate = schedule.EndDate(f.StartDate, schedule.FixedExpenseMonths)
}

// FixedExpenseOccurrence is a single dated instance of a fixed expense. Like
// Installment it is derived data: no Base embed, no soft delete.
type FixedExpenseOccurrence struct {
	ID             string          `gorm:"type:uuid;primaryKey" json:"id"`
	FixedExpenseID string          `gorm:"type:uuid;not null;index" json:"fixed_expense_id"`
	UserID         string          `gorm:"type:uuid;not null;index:idx_occurrences_user_period" json:"user_id"`
	Amount         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	OccurrenceDate time.Time       `gorm:"type:date;not null" json:"occurrence_date"`
	Month          int             `gorm:"not null;index:idx_occurrences_user_period" json:"month"`
	Year           int             `gorm:"not null;index:idx_occurrences_user_period" json:"year"`
	CreatedAt      time.Time       `json:"created_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (o *FixedExpenseOccurrence) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New()
	}
	return nil
}
