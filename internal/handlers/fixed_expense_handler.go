package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"saldo/internal/pagination"
	"saldo/internal/services"
)

// FixedExpenseHandler handles fixed-expense requests.
type FixedExpenseHandler struct {
	fixedExpenseService services.FixedExpenseServicer
}

// NewFixedExpenseHandler creates a new FixedExpenseHandler.
func NewFixedExpenseHandler(fixedExpenseService services.FixedExpenseServicer) *FixedExpenseHandler {
	return &FixedExpenseHandler{fixedExpenseService: fixedExpenseService}
}

// FixedExpenseRequest is the full state of a fixed expense.
type FixedExpenseRequest struct {
	Description   string          `json:"description" binding:"required,max=255"`
	MonthlyAmount decimal.Decimal `json:"monthly_amount" binding:"required,gt=0,money" swaggertype:"string" example:"150.00"`
	StartDate     string          `json:"start_date" binding:"required,datetime=2006-01-02" example:"2024-03-01"`
}

func (r FixedExpenseRequest) toInput() (services.FixedExpenseInput, error) {
	startDate, err := parseDate("start_date", r.StartDate)
	if err != nil {
		return services.FixedExpenseInput{}, err
	}
	return services.FixedExpenseInput{
		Description:   r.Description,
		MonthlyAmount: r.MonthlyAmount,
		StartDate:     startDate,
	}, nil
}

// CreateFixedExpense handles fixed expense creation
// @Summary     Add fixed expense
// @Description Record a recurring monthly expense. Twelve monthly occurrences are generated from the start date.
// @Tags        fixed-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body FixedExpenseRequest true "Fixed expense details"
// @Success     201 {object} models.FixedExpense "Fixed expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /fixed-expenses [post]
func (h *FixedExpenseHandler) CreateFixedExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req FixedExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	fixed, err := h.fixedExpenseService.CreateFixedExpense(userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"fixed_expense": fixed})
}

// GetUserFixedExpenses lists the user's fixed expenses
// @Summary     List fixed expenses
// @Description Get a paginated list of fixed expenses, each with the end date of its last occurrence
// @Tags        fixed-expenses
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       sort      query string false "asc or desc by start date (default desc)"
// @Success     200 {object} pagination.PageResponse[models.FixedExpense] "Paginated fixed expenses"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /fixed-expenses [get]
func (h *FixedExpenseHandler) GetUserFixedExpenses(c *gin.Context) {
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

	result, err := h.fixedExpenseService.GetUserFixedExpenses(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetFixedExpenseByID returns one fixed expense
// @Summary     Get fixed expense by ID
// @Tags        fixed-expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Fixed expense ID"
// @Success     200 {object} models.FixedExpense "Fixed expense"
// @Failure     400 {object} ErrorResponse "Invalid fixed expense ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Fixed expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /fixed-expenses/{id} [get]
func (h *FixedExpenseHandler) GetFixedExpenseByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	fixedID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	fixed, err := h.fixedExpenseService.GetFixedExpenseByID(userID, fixedID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"fixed_expense": fixed})
}

// GetFixedExpenseOccurrences lists a fixed expense's occurrences
// @Summary     List occurrences
// @Tags        fixed-expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Fixed expense ID"
// @Success     200 {array}  models.FixedExpenseOccurrence "Occurrences"
// @Failure     400 {object} ErrorResponse "Invalid fixed expense ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Fixed expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /fixed-expenses/{id}/occurrences [get]
func (h *FixedExpenseHandler) GetFixedExpenseOccurrences(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	fixedID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	occurrences, err := h.fixedExpenseService.GetFixedExpenseOccurrences(userID, fixedID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"occurrences": occurrences})
}

// UpdateFixedExpense handles fixed expense edits
// @Summary     Edit fixed expense
// @Description Replace a fixed expense. Whether occurrences are regenerated depends on FIXED_EXPENSE_EDIT_POLICY.
// @Tags        fixed-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Fixed expense ID"
// @Param       request body FixedExpenseRequest true "Fixed expense details"
// @Success     200 {object} models.FixedExpense "Updated fixed expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Fixed expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /fixed-expenses/{id} [put]
func (h *FixedExpenseHandler) UpdateFixedExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	fixedID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req FixedExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	fixed, err := h.fixedExpenseService.UpdateFixedExpense(userID, fixedID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"fixed_expense": fixed})
}

// DeleteFixedExpense handles fixed expense deletion
// @Summary     Delete fixed expense
// @Description Delete a fixed expense together with its occurrences
// @Tags        fixed-expenses
// @Security    BearerAuth
// @Param       id path string true "Fixed expense ID"
// @Success     204 "Fixed expense deleted"
// @Failure     400 {object} ErrorResponse "Invalid fixed expense ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Fixed expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /fixed-expenses/{id} [delete]
func (h *FixedExpenseHandler) DeleteFixedExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	fixedID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.fixedExpenseService.DeleteFixedExpense(userID, fixedID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
