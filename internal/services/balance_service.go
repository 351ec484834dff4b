package services

import (
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"saldo/internal/config"
	apperrors "saldo/internal/errors"
	"saldo/internal/models"
	"saldo/internal/monthname"
)

// selectorYearSpan is how many years before and after the current one the
// period selector offers.
const selectorYearSpan = 5

// balanceService computes monthly balances.
type balanceService struct {
	db       *gorm.DB
	months   *monthname.Formatter
	fallback config.PeriodFallback
	now      func() time.Time
}

// NewBalanceService creates a new BalanceServicer.
func NewBalanceService(db *gorm.DB, months *monthname.Formatter, fallback config.PeriodFallback) BalanceServicer {
	if fallback == "" {
		fallback = config.PeriodFallbackCoupled
	}
	return &balanceService{db: db, months: months, fallback: fallback, now: time.Now}
}

// ComputeBalance derives the user's financial state for one month:
//
//	total_installments = direct expenses + installments due
//	total_expenses     = total_installments + fixed expense occurrences
//	balance            = salary - total_expenses
//
// A year without a salary row counts as zero income.
func (s *balanceService) ComputeBalance(userID string, month, year int) (*MonthlyBalance, error) {
	if month < 1 || month > 12 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 1 and 12")
	}

	salary, err := s.salaryFor(userID, year)
	if err != nil {
		return nil, err
	}

	from, to := monthRange(month, year)
	direct := s.db.Model(&models.Expense{}).
		Where("user_id = ? AND is_installment = ? AND purchase_date >= ? AND purchase_date < ?", userID, false, from, to)
	directTotal, err := sumColumn(direct, "total_amount")
	if err != nil {
		return nil, err
	}

	installmentsDue, err := sumColumn(s.db.Model(&models.Installment{}).
		Where("user_id = ? AND month = ? AND year = ?", userID, month, year), "installment_amount")
	if err != nil {
		return nil, err
	}

	fixedTotal, err := sumColumn(s.db.Model(&models.FixedExpenseOccurrence{}).
		Where("user_id = ? AND month = ? AND year = ?", userID, month, year), "amount")
	if err != nil {
		return nil, err
	}

	totalInstallments := directTotal.Add(installmentsDue)
	totalExpenses := totalInstallments.Add(fixedTotal)

	result := &MonthlyBalance{
		Month:              month,
		Year:               year,
		Salary:             salary,
		DirectExpenses:     directTotal,
		InstallmentsDue:    installmentsDue,
		TotalInstallments:  totalInstallments,
		TotalFixedExpenses: fixedTotal,
		TotalExpenses:      totalExpenses,
		Balance:            salary.Sub(totalExpenses),
		Months:             monthOptions(),
		Years:              s.yearOptions(),
	}
	if s.months != nil {
		result.MonthName = s.months.Name(month)
	}

	if err := s.loadLines(result, userID, from, to); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *balanceService) salaryFor(userID string, year int) (decimal.Decimal, error) {
	var salary models.Salary
	if err := s.db.Where("user_id = ? AND year = ?", userID, year).First(&salary).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return salary.Amount, nil
}

// sumColumn returns SUM(column) over query, zero for an empty set, rounded to
// the stored precision.
func sumColumn(query *gorm.DB, column string) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := query.Select("SUM(" + column + ")").Row().Scan(&total); err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal.Round(amountPlaces), nil
}

// loadLines fills the rows behind each total, in date order.
func (s *balanceService) loadLines(result *MonthlyBalance, userID string, from, to time.Time) error {
	result.Expenses = []models.Expense{}
	if err := s.db.Where("user_id = ? AND is_installment = ? AND purchase_date >= ? AND purchase_date < ?", userID, false, from, to).
		Order("purchase_date ASC").Find(&result.Expenses).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result.Installments = []InstallmentLine{}
	if err := s.db.Table("installments").
		Select("installments.id, installments.expense_id, expenses.description, installments.installment_amount, installments.due_date, expenses.installments_number").
		Joins("JOIN expenses ON expenses.id = installments.expense_id AND expenses.deleted_at IS NULL").
		Where("installments.user_id = ? AND installments.month = ? AND installments.year = ?", userID, result.Month, result.Year).
		Order("installments.due_date ASC").
		Scan(&result.Installments).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result.FixedExpenses = []OccurrenceLine{}
	if err := s.db.Table("fixed_expense_occurrences").
		Select("fixed_expense_occurrences.id, fixed_expense_occurrences.fixed_expense_id, fixed_expenses.description, fixed_expense_occurrences.amount, fixed_expense_occurrences.occurrence_date").
		Joins("JOIN fixed_expenses ON fixed_expenses.id = fixed_expense_occurrences.fixed_expense_id AND fixed_expenses.deleted_at IS NULL").
		Where("fixed_expense_occurrences.user_id = ? AND fixed_expense_occurrences.month = ? AND fixed_expense_occurrences.year = ?", userID, result.Month, result.Year).
		Order("fixed_expense_occurrences.occurrence_date ASC").
		Scan(&result.FixedExpenses).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func monthOptions() []int {
	months := make([]int, 12)
	for i := range months {
		months[i] = i + 1
	}
	return months
}

func (s *balanceService) yearOptions() []int {
	current := s.now().Year()
	years := make([]int, 0, 2*selectorYearSpan+1)
	for y := current - selectorYearSpan; y <= current+selectorYearSpan; y++ {
		years = append(years, y)
	}
	return years
}

// ResolvePeriod turns the raw month and year query parameters into a period,
// falling back to the current month and year.
func (s *balanceService) ResolvePeriod(monthParam, yearParam string) (int, int) {
	return ResolvePeriod(monthParam, yearParam, s.now(), s.fallback)
}

// ResolvePeriod applies the period fallback rules. Missing parameters default
// to now. In coupled mode a non-numeric month or year resets both, while a
// numeric month outside 1..12 resets only the month. In independent mode each
// value falls back on its own.
func ResolvePeriod(monthParam, yearParam string, now time.Time, mode config.PeriodFallback) (int, int) {
	month, year := int(now.Month()), now.Year()

	m, monthErr := parseOptional(monthParam, month)
	y, yearErr := parseOptional(yearParam, year)

	if mode == config.PeriodFallbackIndependent {
		if monthErr == nil && m >= 1 && m <= 12 {
			month = m
		}
		if yearErr == nil && y >= 1 {
			year = y
		}
		return month, year
	}

	if monthErr != nil || yearErr != nil {
		return month, year
	}
	if m >= 1 && m <= 12 {
		month = m
	}
	return month, y
}

func parseOptional(value string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}
	return strconv.Atoi(value)
}
