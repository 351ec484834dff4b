package services

import (
	"time"

	"github.com/shopspring/decimal"

	"saldo/internal/models"
	"saldo/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(username, password, email, firstName, lastName string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(username, password string) (*models.User, error)
	UpdateProfile(userID string, input ProfileInput) (*models.User, error)
	StoreRefreshTokenHash(userID string, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	ClearRefreshTokenHash(userID string) error
}

// ProfileInput carries optional profile changes; nil fields are left as is.
type ProfileInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
}

// SalaryServicer defines the contract for salary-related business logic.
type SalaryServicer interface {
	CreateSalary(userID string, year int, amount decimal.Decimal) (*models.Salary, error)
	GetUserSalaries(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Salary], error)
	GetSalaryByID(userID, salaryID string) (*models.Salary, error)
	GetSalaryByYear(userID string, year int) (*models.Salary, error)
	UpdateSalary(userID, salaryID string, year *int, amount *decimal.Decimal) (*models.Salary, error)
}

// ExpenseInput is the full editable state of an expense.
type ExpenseInput struct {
	Description        string
	TotalAmount        decimal.Decimal
	PurchaseDate       time.Time
	IsInstallment      bool
	InstallmentsNumber int
}

// ExpenseFilter holds optional filter parameters for listing expenses.
type ExpenseFilter struct {
	Month         *int
	Year          *int
	IsInstallment *bool
}

// ExpenseServicer defines the contract for expense-related business logic.
type ExpenseServicer interface {
	CreateExpense(userID string, input ExpenseInput) (*models.Expense, error)
	GetUserExpenses(userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	GetExpenseByID(userID, expenseID string) (*models.Expense, error)
	GetExpenseInstallments(userID, expenseID string) ([]models.Installment, error)
	UpdateExpense(userID, expenseID string, input ExpenseInput) (*models.Expense, error)
	DeleteExpense(userID, expenseID string) error
}

// FixedExpenseInput is the full editable state of a fixed expense.
type FixedExpenseInput struct {
	Description   string
	MonthlyAmount decimal.Decimal
	StartDate     time.Time
}

// FixedExpenseServicer defines the contract for fixed-expense business logic.
type FixedExpenseServicer interface {
	CreateFixedExpense(userID string, input FixedExpenseInput) (*models.FixedExpense, error)
	GetUserFixedExpenses(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.FixedExpense], error)
	GetFixedExpenseByID(userID, fixedExpenseID string) (*models.FixedExpense, error)
	GetFixedExpenseOccurrences(userID, fixedExpenseID string) ([]models.FixedExpenseOccurrence, error)
	UpdateFixedExpense(userID, fixedExpenseID string, input FixedExpenseInput) (*models.FixedExpense, error)
	DeleteFixedExpense(userID, fixedExpenseID string) error
}

// InstallmentLine is an installment due in the balance month.
type InstallmentLine struct {
	ID                 string          `json:"id"`
	ExpenseID          string          `json:"expense_id"`
	Description        string          `json:"description"`
	InstallmentAmount  decimal.Decimal `json:"installment_amount"`
	DueDate            time.Time       `json:"due_date"`
	InstallmentsNumber int             `json:"installments_number"`
}

// OccurrenceLine is a fixed expense occurrence in the balance month.
type OccurrenceLine struct {
	ID             string          `json:"id"`
	FixedExpenseID string          `json:"fixed_expense_id"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	OccurrenceDate time.Time       `json:"occurrence_date"`
}

// MonthlyBalance is the financial state of one user for one month.
type MonthlyBalance struct {
	Month              int               `json:"month"`
	Year               int               `json:"year"`
	MonthName          string            `json:"month_name"`
	Salary             decimal.Decimal   `json:"salary"`
	DirectExpenses     decimal.Decimal   `json:"direct_expenses"`
	InstallmentsDue    decimal.Decimal   `json:"installments_due"`
	TotalInstallments  decimal.Decimal   `json:"total_installments"`
	TotalFixedExpenses decimal.Decimal   `json:"total_fixed_expenses"`
	TotalExpenses      decimal.Decimal   `json:"total_expenses"`
	Balance            decimal.Decimal   `json:"balance"`
	Expenses           []models.Expense  `json:"expenses"`
	Installments       []InstallmentLine `json:"installments"`
	FixedExpenses      []OccurrenceLine  `json:"fixed_expenses"`
	Months             []int             `json:"months"`
	Years              []int             `json:"years"`
}

// BalanceServicer defines the contract for the monthly balance.
type BalanceServicer interface {
	ComputeBalance(userID string, month, year int) (*MonthlyBalance, error)
	ResolvePeriod(monthParam, yearParam string) (month, year int)
}
