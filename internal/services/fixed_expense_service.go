package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"saldo/internal/config"
	apperrors "saldo/internal/errors"
	"saldo/internal/events"
	"saldo/internal/models"
	"saldo/internal/pagination"
	"saldo/internal/schedule"
)

// fixedExpenseService handles fixed-expense business logic.
type fixedExpenseService struct {
	db         *gorm.DB
	publisher  events.Publisher
	editPolicy config.FixedExpenseEditPolicy
}

// NewFixedExpenseService creates a new FixedExpenseServicer. editPolicy decides
// whether edits regenerate the occurrence rows.
func NewFixedExpenseService(db *gorm.DB, publisher events.Publisher, editPolicy config.FixedExpenseEditPolicy) FixedExpenseServicer {
	if editPolicy == "" {
		editPolicy = config.FixedExpenseEditPreserve
	}
	return &fixedExpenseService{db: db, publisher: publisher, editPolicy: editPolicy}
}

func applyFixedExpenseInput(fixed *models.FixedExpense, input FixedExpenseInput) error {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if len(description) > 255 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "description must be at most 255 characters")
	}
	if !input.MonthlyAmount.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "monthly amount must be greater than zero")
	}
	if input.StartDate.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "start date is required")
	}

	fixed.Description = description
	fixed.MonthlyAmount = input.MonthlyAmount.Round(amountPlaces)
	fixed.StartDate = dateOnly(input.StartDate)
	return nil
}

func buildOccurrences(fixed *models.FixedExpense) []models.FixedExpenseOccurrence {
	entries := schedule.Generate(fixed.StartDate, schedule.FixedExpenseMonths, fixed.MonthlyAmount)

	occurrences := make([]models.FixedExpenseOccurrence, 0, len(entries))
	for _, e := range entries {
		occurrences = append(occurrences, models.FixedExpenseOccurrence{
			FixedExpenseID: fixed.ID,
			UserID:         fixed.UserID,
			Amount:         e.Amount,
			OccurrenceDate: e.Date,
			Month:          e.Month,
			Year:           e.Year,
		})
	}
	return occurrences
}

func insertOccurrences(tx *gorm.DB, fixed *models.FixedExpense) error {
	occurrences := buildOccurrences(fixed)
	if err := tx.Create(&occurrences).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	fixed.Occurrences = occurrences
	return nil
}

// CreateFixedExpense records a fixed expense together with its twelve monthly
// occurrences.
func (s *fixedExpenseService) CreateFixedExpense(userID string, input FixedExpenseInput) (*models.FixedExpense, error) {
	fixed := &models.FixedExpense{UserID: userID}
	if err := applyFixedExpenseInput(fixed, input); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(fixed).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return insertOccurrences(tx, fixed)
	})
	if err != nil {
		return nil, err
	}

	publish(s.publisher, events.New(events.FixedExpenseSaved, userID, fixed.ID))
	return fixed, nil
}

// GetUserFixedExpenses lists fixed expenses, latest start first unless sort=asc.
func (s *fixedExpenseService) GetUserFixedExpenses(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.FixedExpense], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.FixedExpense{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var fixed []models.FixedExpense
	if err := base.Scopes(pagination.OrderBy(page, "start_date"), pagination.Paginate(page)).
		Find(&fixed).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(fixed, page.Page, page.PageSize, totalItems)
	return &resp, nil
}

func (s *fixedExpenseService) find(db *gorm.DB, userID, fixedExpenseID string) (*models.FixedExpense, error) {
	var fixed models.FixedExpense
	if err := db.Where("id = ? AND user_id = ?", fixedExpenseID, userID).First(&fixed).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFixedExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &fixed, nil
}

// GetFixedExpenseByID retrieves a fixed expense owned by the user.
func (s *fixedExpenseService) GetFixedExpenseByID(userID, fixedExpenseID string) (*models.FixedExpense, error) {
	return s.find(s.db, userID, fixedExpenseID)
}

// GetFixedExpenseOccurrences lists a fixed expense's occurrences by date.
func (s *fixedExpenseService) GetFixedExpenseOccurrences(userID, fixedExpenseID string) ([]models.FixedExpenseOccurrence, error) {
	if _, err := s.find(s.db, userID, fixedExpenseID); err != nil {
		return nil, err
	}

	occurrences := []models.FixedExpenseOccurrence{}
	if err := s.db.Where("fixed_expense_id = ? AND user_id = ?", fixedExpenseID, userID).
		Order("occurrence_date ASC").Find(&occurrences).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return occurrences, nil
}

// UpdateFixedExpense edits a fixed expense. Under the preserve policy its
// occurrences are left as generated; under regenerate they are rebuilt when
// the monthly amount or start date changes.
func (s *fixedExpenseService) UpdateFixedExpense(userID, fixedExpenseID string, input FixedExpenseInput) (*models.FixedExpense, error) {
	var fixed *models.FixedExpense
	err := s.db.Transaction(func(tx *gorm.DB) error {
		current, err := s.find(tx.Clauses(clause.Locking{Strength: "UPDATE"}), userID, fixedExpenseID)
		if err != nil {
			return err
		}

		old := *current
		if err := applyFixedExpenseInput(current, input); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(current).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if s.editPolicy == config.FixedExpenseEditRegenerate && occurrenceTermsChanged(&old, current) {
			if err := tx.Where("fixed_expense_id = ?", current.ID).Delete(&models.FixedExpenseOccurrence{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if err := insertOccurrences(tx, current); err != nil {
				return err
			}
		}

		fixed = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(s.publisher, events.New(events.FixedExpenseSaved, userID, fixed.ID))
	return fixed, nil
}

func occurrenceTermsChanged(old, next *models.FixedExpense) bool {
	return !old.MonthlyAmount.Equal(next.MonthlyAmount) || !old.StartDate.Equal(next.StartDate)
}

// DeleteFixedExpense soft-deletes a fixed expense and removes its occurrences.
func (s *fixedExpenseService) DeleteFixedExpense(userID, fixedExpenseID string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		fixed, err := s.find(tx, userID, fixedExpenseID)
		if err != nil {
			return err
		}

		if err := tx.Where("fixed_expense_id = ?", fixed.ID).Delete(&models.FixedExpenseOccurrence{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(fixed).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	publish(s.publisher, events.New(events.FixedExpenseDeleted, userID, fixedExpenseID))
	return nil
}
