package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "saldo/internal/errors"
	"saldo/internal/events"
	"saldo/internal/models"
	"saldo/internal/pagination"
)

const (
	minSalaryYear    = 2000
	salaryYearsAhead = 5
	amountPlaces     = 2
)

// salaryService handles salary-related business logic.
type salaryService struct {
	db        *gorm.DB
	publisher events.Publisher
	now       func() time.Time
}

// NewSalaryService creates a new SalaryServicer.
func NewSalaryService(db *gorm.DB, publisher events.Publisher) SalaryServicer {
	return &salaryService{db: db, publisher: publisher, now: time.Now}
}

func (s *salaryService) validate(year int, amount decimal.Decimal) error {
	maxYear := s.now().Year() + salaryYearsAhead
	if year < minSalaryYear || year > maxYear {
		return apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("year must be between %d and %d", minSalaryYear, maxYear))
	}
	if amount.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount cannot be negative")
	}
	return nil
}

// ensureYearFree rejects a second salary for the same user and year. exceptID
// excludes the record being edited.
func (s *salaryService) ensureYearFree(tx *gorm.DB, userID string, year int, exceptID string) error {
	query := tx.Model(&models.Salary{}).Where("user_id = ? AND year = ?", userID, year)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateSalaryYear
	}
	return nil
}

// salaryWriteError maps a unique (user, year) violation that slipped past
// ensureYearFree, e.g. two concurrent creates, to the duplicate error.
func salaryWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.ErrDuplicateSalaryYear
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// CreateSalary registers the salary for a year.
func (s *salaryService) CreateSalary(userID string, year int, amount decimal.Decimal) (*models.Salary, error) {
	if err := s.validate(year, amount); err != nil {
		return nil, err
	}

	salary := &models.Salary{
		UserID: userID,
		Year:   year,
		Amount: amount.Round(amountPlaces),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.ensureYearFree(tx, userID, year, ""); err != nil {
			return err
		}
		if err := tx.Create(salary).Error; err != nil {
			return salaryWriteError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(s.publisher, events.New(events.SalarySaved, userID, salary.ID))
	return salary, nil
}

// GetUserSalaries lists salaries, newest year first unless sort=asc.
func (s *salaryService) GetUserSalaries(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Salary], error) {
	page.Defaults()

	var total int64
	if err := s.db.Model(&models.Salary{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var salaries []models.Salary
	if err := s.db.Where("user_id = ?", userID).
		Scopes(pagination.OrderBy(page, "year"), pagination.Paginate(page)).
		Find(&salaries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(salaries, page.Page, page.PageSize, total)
	return &resp, nil
}

// GetSalaryByID retrieves a salary owned by the user.
func (s *salaryService) GetSalaryByID(userID, salaryID string) (*models.Salary, error) {
	var salary models.Salary
	if err := s.db.Where("id = ? AND user_id = ?", salaryID, userID).First(&salary).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSalaryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &salary, nil
}

// GetSalaryByYear retrieves the user's salary for a year.
func (s *salaryService) GetSalaryByYear(userID string, year int) (*models.Salary, error) {
	var salary models.Salary
	if err := s.db.Where("user_id = ? AND year = ?", userID, year).First(&salary).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSalaryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &salary, nil
}

// UpdateSalary changes the year and/or amount of a salary.
func (s *salaryService) UpdateSalary(userID, salaryID string, year *int, amount *decimal.Decimal) (*models.Salary, error) {
	var salary *models.Salary
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var current models.Salary
		if err := tx.Where("id = ? AND user_id = ?", salaryID, userID).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrSalaryNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if year != nil {
			current.Year = *year
		}
		if amount != nil {
			current.Amount = amount.Round(amountPlaces)
		}
		if err := s.validate(current.Year, current.Amount); err != nil {
			return err
		}
		if err := s.ensureYearFree(tx, userID, current.Year, current.ID); err != nil {
			return err
		}

		if err := tx.Save(&current).Error; err != nil {
			return salaryWriteError(err)
		}
		salary = &current
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(s.publisher, events.New(events.SalarySaved, userID, salary.ID))
	return salary, nil
}
