package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"saldo/internal/services"
)

// BalanceHandler serves the monthly balance.
type BalanceHandler struct {
	balanceService services.BalanceServicer
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceService services.BalanceServicer) *BalanceHandler {
	return &BalanceHandler{balanceService: balanceService}
}

// GetMonthlyBalance returns the balance for a month
// @Summary     Monthly balance
// @Description Salary, expenses and balance for one month. Missing or invalid month/year fall back to the current period (see BALANCE_PERIOD_FALLBACK).
// @Tags        balance
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month (1-12)"
// @Param       year  query string false "Year"
// @Success     200 {object} services.MonthlyBalance "Monthly balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /balance [get]
func (h *BalanceHandler) GetMonthlyBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, year := h.balanceService.ResolvePeriod(c.Query("month"), c.Query("year"))

	balance, err := h.balanceService.ComputeBalance(userID, month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}
