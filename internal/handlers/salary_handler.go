package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "saldo/internal/errors"
	"saldo/internal/pagination"
	"saldo/internal/services"
)

// SalaryHandler handles salary-related requests.
type SalaryHandler struct {
	salaryService services.SalaryServicer
}

// NewSalaryHandler creates a new SalaryHandler.
func NewSalaryHandler(salaryService services.SalaryServicer) *SalaryHandler {
	return &SalaryHandler{salaryService: salaryService}
}

// CreateSalaryRequest represents the request payload for registering a salary
type CreateSalaryRequest struct {
	Year   int             `json:"year" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required,gt=0,money" swaggertype:"string" example:"3000.00"`
}

// UpdateSalaryRequest represents the request payload for editing a salary.
type UpdateSalaryRequest struct {
	Year   *int             `json:"year"`
	Amount *decimal.Decimal `json:"amount" binding:"omitempty,gt=0,money" swaggertype:"string" example:"3200.00"`
}

// CreateSalary handles salary registration
// @Summary     Add salary
// @Description Register the monthly salary for a year. Only one salary per year is allowed.
// @Tags        salaries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateSalaryRequest true "Salary details"
// @Success     201 {object} models.Salary "Salary created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Salary already registered for this year"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /salaries [post]
func (h *SalaryHandler) CreateSalary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSalaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	salary, err := h.salaryService.CreateSalary(userID, req.Year, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"salary": salary})
}

// GetUserSalaries lists the user's salaries
// @Summary     List salaries
// @Description Get a paginated list of salaries, newest year first
// @Tags        salaries
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       sort      query string false "asc or desc (default desc)"
// @Success     200 {object} pagination.PageResponse[models.Salary] "Paginated salaries"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /salaries [get]
func (h *SalaryHandler) GetUserSalaries(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.salaryService.GetUserSalaries(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSalaryByID returns one salary
// @Summary     Get salary by ID
// @Tags        salaries
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Salary ID"
// @Success     200 {object} models.Salary "Salary"
// @Failure     400 {object} ErrorResponse "Invalid salary ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Salary not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /salaries/{id} [get]
func (h *SalaryHandler) GetSalaryByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	salaryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	salary, err := h.salaryService.GetSalaryByID(userID, salaryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"salary": salary})
}

// GetSalaryByYear returns the salary registered for a year
// @Summary     Get salary by year
// @Tags        salaries
// @Produce     json
// @Security    BearerAuth
// @Param       year path int true "Year"
// @Success     200 {object} models.Salary "Salary"
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Salary not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /salaries/year/{year} [get]
func (h *SalaryHandler) GetSalaryByYear(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid year"))
		return
	}

	salary, err := h.salaryService.GetSalaryByYear(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"salary": salary})
}

// UpdateSalary handles salary edits
// @Summary     Edit salary
// @Description Change the year and/or amount of a salary
// @Tags        salaries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Salary ID"
// @Param       request body UpdateSalaryRequest true "Fields to change"
// @Success     200 {object} models.Salary "Updated salary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Salary not found"
// @Failure     409 {object} ErrorResponse "Salary already registered for this year"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /salaries/{id} [put]
func (h *SalaryHandler) UpdateSalary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	salaryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSalaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	salary, err := h.salaryService.UpdateSalary(userID, salaryID, req.Year, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"salary": salary})
}
