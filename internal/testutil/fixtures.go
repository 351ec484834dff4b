package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"saldo/internal/models"
	"saldo/internal/schedule"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Date returns midnight UTC on the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Dec parses a decimal literal, failing the test on malformed input.
func Dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal %q: %v", s, err)
	}
	return d
}

// CreateTestUser creates a user with a hashed password and unique username.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithUsername(t, db, fmt.Sprintf("user%d", nextID()))
}

// CreateTestUserWithUsername creates a user with the given username and the
// password "password123".
func CreateTestUserWithUsername(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: username,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestSalary creates a salary row for the given year.
func CreateTestSalary(t *testing.T, db *gorm.DB, userID string, year int, amount string) *models.Salary {
	t.Helper()

	salary := &models.Salary{
		UserID: userID,
		Year:   year,
		Amount: Dec(t, amount),
	}
	if err := db.Create(salary).Error; err != nil {
		t.Fatalf("failed to create test salary: %v", err)
	}
	return salary
}

// CreateTestExpense inserts a non-installment expense directly, bypassing
// installment generation.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID string, amount string, purchaseDate time.Time) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:             userID,
		Description:        fmt.Sprintf("Test Expense %d", nextID()),
		TotalAmount:        Dec(t, amount),
		PurchaseDate:       purchaseDate,
		InstallmentsNumber: 1,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestInstallmentExpense inserts an installment expense together with
// its installment rows.
func CreateTestInstallmentExpense(t *testing.T, db *gorm.DB, userID string, amount string, n int, purchaseDate time.Time) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:             userID,
		Description:        fmt.Sprintf("Test Installment Expense %d", nextID()),
		TotalAmount:        Dec(t, amount),
		PurchaseDate:       purchaseDate,
		IsInstallment:      true,
		InstallmentsNumber: n,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}

	for _, e := range schedule.GenerateAmounts(purchaseDate, schedule.Split(expense.TotalAmount, n)) {
		inst := &models.Installment{
			ExpenseID:         expense.ID,
			UserID:            userID,
			InstallmentAmount: e.Amount,
			DueDate:           e.Date,
			Month:             e.Month,
			Year:              e.Year,
		}
		if err := db.Create(inst).Error; err != nil {
			t.Fatalf("failed to create test installment: %v", err)
		}
	}
	return expense
}

// CreateTestFixedExpense inserts a fixed expense with its twelve occurrences.
func CreateTestFixedExpense(t *testing.T, db *gorm.DB, userID string, amount string, start time.Time) *models.FixedExpense {
	t.Helper()

	fixed := &models.FixedExpense{
		UserID:        userID,
		Description:   fmt.Sprintf("Test Fixed Expense %d", nextID()),
		MonthlyAmount: Dec(t, amount),
		StartDate:     start,
	}
	if err := db.Create(fixed).Error; err != nil {
		t.Fatalf("failed to create test fixed expense: %v", err)
	}

	for _, e := range schedule.Generate(start, schedule.FixedExpenseMonths, fixed.MonthlyAmount) {
		occ := &models.FixedExpenseOccurrence{
			FixedExpenseID: fixed.ID,
			UserID:         userID,
			Amount:         e.Amount,
			OccurrenceDate: e.Date,
			Month:          e.Month,
			Year:           e.Year,
		}
		if err := db.Create(occ).Error; err != nil {
			t.Fatalf("failed to create test occurrence: %v", err)
		}
	}
	return fixed
}

// CountInstallments returns how many installment rows exist for the expense.
func CountInstallments(t *testing.T, db *gorm.DB, expenseID string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Installment{}).Where("expense_id = ?", expenseID).Count(&n).Error; err != nil {
		t.Fatalf("failed to count installments: %v", err)
	}
	return n
}

// CountOccurrences returns how many occurrence rows exist for the fixed expense.
func CountOccurrences(t *testing.T, db *gorm.DB, fixedExpenseID string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.FixedExpenseOccurrence{}).Where("fixed_expense_id = ?", fixedExpenseID).Count(&n).Error; err != nil {
		t.Fatalf("failed to count occurrences: %v", err)
	}
	return n
}
