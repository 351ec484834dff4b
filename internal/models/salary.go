package models

import "github.com/shopspring/decimal"

// Salary is the monthly salary a user earns throughout one year.
type Salary struct {
	Base
	UserID string          `gorm:"type:uuid;not null;uniqueIndex:uq_salaries_user_year" json:"user_id"`
	Year   int             `gorm:"not null;uniqueIndex:uq_salaries_user_year" json:"year"`
	Amount decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
}
