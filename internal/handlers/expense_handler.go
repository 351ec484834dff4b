package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"saldo/internal/models"
	"saldo/internal/pagination"
	"saldo/internal/services"
)

// ExpenseHandler handles expense-related requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// ExpenseRequest is the full state of an expense, used for create and edit.
// installments_number is required when is_installment is true and ignored
// otherwise.
type ExpenseRequest struct {
	Description        string          `json:"description" binding:"required,max=255"`
	TotalAmount        decimal.Decimal `json:"total_amount" binding:"required,gt=0,money" swaggertype:"string" example:"1200.00"`
	PurchaseDate       string          `json:"purchase_date" binding:"required,datetime=2006-01-02" example:"2024-01-15"`
	IsInstallment      bool            `json:"is_installment"`
	InstallmentsNumber int             `json:"installments_number" binding:"omitempty,min=1,max=360"`
}

// ExpenseListQuery holds the optional list filters.
type ExpenseListQuery struct {
	Month         *int  `form:"month" binding:"omitempty,month"`
	Year          *int  `form:"year" binding:"omitempty,min=1"`
	IsInstallment *bool `form:"is_installment"`
}

// ExpenseWriteResponse is returned by create and edit. BalanceURL points at the
// monthly balance of the purchase month.
type ExpenseWriteResponse struct {
	Expense    *models.Expense `json:"expense"`
	BalanceURL string          `json:"balance_url"`
}

func (r ExpenseRequest) toInput() (services.ExpenseInput, error) {
	purchaseDate, err := parseDate("purchase_date", r.PurchaseDate)
	if err != nil {
		return services.ExpenseInput{}, err
	}
	return services.ExpenseInput{
		Description:        r.Description,
		TotalAmount:        r.TotalAmount,
		PurchaseDate:       purchaseDate,
		IsInstallment:      r.IsInstallment,
		InstallmentsNumber: r.InstallmentsNumber,
	}, nil
}

// balanceURL links to the monthly balance containing date.
func balanceURL(date time.Time) string {
	return fmt.Sprintf("/api/v1/balance?month=%d&year=%d", int(date.Month()), date.Year())
}

// CreateExpense handles expense creation
// @Summary     Add expense
// @Description Record an expense. Installment expenses are split into monthly installments starting at the purchase date.
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ExpenseRequest true "Expense details"
// @Success     201 {object} ExpenseWriteResponse "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.CreateExpense(userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ExpenseWriteResponse{Expense: expense, BalanceURL: balanceURL(expense.PurchaseDate)})
}

// GetUserExpenses lists the user's expenses
// @Summary     List expenses
// @Description Get a paginated list of expenses, optionally filtered by purchase month/year and installment flag
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       month          query int    false "Purchase month (1-12), requires year"
// @Param       year           query int    false "Purchase year"
// @Param       is_installment query bool   false "Only installment (true) or direct (false) expenses"
// @Param       page           query int    false "Page number (default 1)"
// @Param       page_size      query int    false "Items per page (default 20, max 100)"
// @Param       sort           query string false "asc or desc by purchase date (default desc)"
// @Success     200 {object} pagination.PageResponse[models.Expense] "Paginated expenses"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [get]
func (h *ExpenseHandler) GetUserExpenses(c *gin.Context) {
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
	var query ExpenseListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.expenseService.GetUserExpenses(userID, page, services.ExpenseFilter{
		Month:         query.Month,
		Year:          query.Year,
		IsInstallment: query.IsInstallment,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetExpenseByID returns one expense
// @Summary     Get expense by ID
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} models.Expense "Expense"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpenseByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(userID, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// GetExpenseInstallments lists an expense's installments
// @Summary     List installments
// @Description Get the installment schedule of an expense in due order
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {array}  models.Installment "Installments"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id}/installments [get]
func (h *ExpenseHandler) GetExpenseInstallments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	installments, err := h.expenseService.GetExpenseInstallments(userID, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"installments": installments})
}

// UpdateExpense handles expense edits
// @Summary     Edit expense
// @Description Replace an expense. Installments are regenerated when the installment flag is turned on or when amount, count or purchase date change; they are removed when the flag is turned off.
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Expense ID"
// @Param       request body ExpenseRequest true "Expense details"
// @Success     200 {object} ExpenseWriteResponse "Updated expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.UpdateExpense(userID, expenseID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ExpenseWriteResponse{Expense: expense, BalanceURL: balanceURL(expense.PurchaseDate)})
}

// DeleteExpense handles expense deletion
// @Summary     Delete expense
// @Description Delete an expense together with its installments
// @Tags        expenses
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     204 "Expense deleted"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(userID, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
