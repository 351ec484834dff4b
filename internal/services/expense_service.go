package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "saldo/internal/errors"
	"saldo/internal/events"
	"saldo/internal/models"
	"saldo/internal/pagination"
	"saldo/internal/schedule"
)

// expenseService handles expense-related business logic.
type expenseService struct {
	db        *gorm.DB
	publisher events.Publisher
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB, publisher events.Publisher) ExpenseServicer {
	return &expenseService{db: db, publisher: publisher}
}

// installmentPlan says what to do with an expense's installment rows when it
// is saved.
type installmentPlan struct {
	DeleteExisting bool
	Generate       bool
}

// reconcileInstallments decides the installment changes for saving next over
// old, the state persisted before the save (nil on create). Every condition is
// evaluated against old, never against a partially applied save.
//
//	old           next          changed*  plan
//	nil           installment   -         generate
//	installment   direct        -         delete
//	direct        installment   -         generate
//	installment   installment   yes       delete + generate
//	installment   installment   no        nothing
//	direct        direct        -         nothing
//
// *total_amount, installments_number or purchase_date.
func reconcileInstallments(old, next *models.Expense) installmentPlan {
	var plan installmentPlan

	switch {
	case old == nil:
		plan.Generate = next.IsInstallment
	case old.IsInstallment && !next.IsInstallment:
		plan.DeleteExisting = true
	case !old.IsInstallment && next.IsInstallment:
		plan.Generate = true
	case old.IsInstallment && next.IsInstallment && installmentTermsChanged(old, next):
		plan.DeleteExisting = true
		plan.Generate = true
	}

	if plan.Generate && next.InstallmentsNumber < 1 {
		plan.Generate = false
	}
	return plan
}

func installmentTermsChanged(old, next *models.Expense) bool {
	return !old.TotalAmount.Equal(next.TotalAmount) ||
		old.InstallmentsNumber != next.InstallmentsNumber ||
		!old.PurchaseDate.Equal(next.PurchaseDate)
}

// buildInstallments splits the expense total over its installments, one per
// calendar month starting at the purchase date.
func buildInstallments(expense *models.Expense) []models.Installment {
	amounts := schedule.Split(expense.TotalAmount, expense.InstallmentCount())
	entries := schedule.GenerateAmounts(expense.PurchaseDate, amounts)

	installments := make([]models.Installment, 0, len(entries))
	for _, e := range entries {
		installments = append(installments, models.Installment{
			ExpenseID:         expense.ID,
			UserID:            expense.UserID,
			InstallmentAmount: e.Amount,
			DueDate:           e.Date,
			Month:             e.Month,
			Year:              e.Year,
		})
	}
	return installments
}

// applyExpenseInput validates input and copies it onto expense.
func applyExpenseInput(expense *models.Expense, input ExpenseInput) error {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if len(description) > 255 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "description must be at most 255 characters")
	}
	if !input.TotalAmount.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "total amount must be greater than zero")
	}
	if input.PurchaseDate.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "purchase date is required")
	}

	installments := 1
	if input.IsInstallment {
		if input.InstallmentsNumber < 1 {
			return apperrors.ErrInvalidInstallments
		}
		installments = input.InstallmentsNumber
	}

	expense.Description = description
	expense.TotalAmount = input.TotalAmount.Round(amountPlaces)
	expense.PurchaseDate = dateOnly(input.PurchaseDate)
	expense.IsInstallment = input.IsInstallment
	expense.InstallmentsNumber = installments
	return nil
}

// dateOnly truncates t to midnight UTC of its calendar day.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// saveExpense persists next and reconciles its installments against old. It
// must run inside a transaction.
func saveExpense(tx *gorm.DB, old, next *models.Expense) error {
	plan := reconcileInstallments(old, next)

	if plan.DeleteExisting {
		if err := tx.Where("expense_id = ?", next.ID).Delete(&models.Installment{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	var err error
	if old == nil {
		err = tx.Omit(clause.Associations).Create(next).Error
	} else {
		err = tx.Omit(clause.Associations).Save(next).Error
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if plan.Generate {
		installments := buildInstallments(next)
		if err := tx.Create(&installments).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		next.Installments = installments
	}
	return nil
}

// CreateExpense records an expense and, for installment expenses, its
// installment schedule in one transaction.
func (s *expenseService) CreateExpense(userID string, input ExpenseInput) (*models.Expense, error) {
	expense := &models.Expense{UserID: userID}
	if err := applyExpenseInput(expense, input); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return saveExpense(tx, nil, expense)
	})
	if err != nil {
		return nil, err
	}

	publish(s.publisher, events.New(events.ExpenseSaved, userID, expense.ID))
	return expense, nil
}

// GetUserExpenses lists expenses, most recent purchase first unless sort=asc.
func (s *expenseService) GetUserExpenses(userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	base := s.db.Model(&models.Expense{}).Where("user_id = ?", userID)
	base = applyExpenseFilter(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Scopes(pagination.OrderBy(page, "purchase_date"), pagination.Paginate(page)).
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &resp, nil
}

// applyExpenseFilter narrows the query by purchase period and installment flag.
// A month without a year is ignored; a year alone selects the whole year.
func applyExpenseFilter(query *gorm.DB, filter ExpenseFilter) *gorm.DB {
	if filter.Year != nil {
		var from, to time.Time
		if filter.Month != nil {
			from, to = monthRange(*filter.Month, *filter.Year)
		} else {
			from = time.Date(*filter.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
			to = from.AddDate(1, 0, 0)
		}
		query = query.Where("purchase_date >= ? AND purchase_date < ?", from, to)
	}
	if filter.IsInstallment != nil {
		query = query.Where("is_installment = ?", *filter.IsInstallment)
	}
	return query
}

// monthRange returns the half-open interval [first day of month, first day of
// the next month).
func monthRange(month, year int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

// GetExpenseByID retrieves an expense owned by the user.
func (s *expenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// GetExpenseInstallments lists an expense's installments in due order.
func (s *expenseService) GetExpenseInstallments(userID, expenseID string) ([]models.Installment, error) {
	if _, err := s.GetExpenseByID(userID, expenseID); err != nil {
		return nil, err
	}

	installments := []models.Installment{}
	if err := s.db.Where("expense_id = ? AND user_id = ?", expenseID, userID).
		Order("due_date ASC").Find(&installments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return installments, nil
}

// UpdateExpense replaces the editable state of an expense and reconciles its
// installments. The current row is read under a row lock so concurrent edits
// of the same expense reconcile against each other's committed state.
func (s *expenseService) UpdateExpense(userID, expenseID string, input ExpenseInput) (*models.Expense, error) {
	var expense *models.Expense
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var current models.Expense
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", expenseID, userID).
			First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrExpenseNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		old := current
		if err := applyExpenseInput(&current, input); err != nil {
			return err
		}
		if err := saveExpense(tx, &old, &current); err != nil {
			return err
		}
		expense = &current
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(s.publisher, events.New(events.ExpenseSaved, userID, expense.ID))
	return expense, nil
}

// DeleteExpense soft-deletes an expense and removes its installments.
func (s *expenseService) DeleteExpense(userID, expenseID string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var expense models.Expense
		if err := tx.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrExpenseNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Where("expense_id = ?", expense.ID).Delete(&models.Installment{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(&expense).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	publish(s.publisher, events.New(events.ExpenseDeleted, userID, expenseID))
	return nil
}
