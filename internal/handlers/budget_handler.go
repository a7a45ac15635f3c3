package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"finanzas/internal/services"
)

// BudgetHandler handles the budget configuration.
type BudgetHandler struct {
	budgetService services.BudgetServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// BudgetConfigRequest represents the weekly income and its percentage split.
// Percentages are range-checked by the service so a bad split reports
// INVALID_PERCENTAGES rather than a generic binding failure.
type BudgetConfigRequest struct {
	WeeklyIncome  decimal.Decimal `json:"weekly_income" binding:"gte=0"`
	ExpensesPct   int             `json:"expenses_pct"`
	SavingsPct    int             `json:"savings_pct"`
	InvestmentPct int             `json:"investment_pct"`
	FreePct       int             `json:"free_pct"`
}

// GetSummary returns the configured plan and the committed breakdowns.
func (h *BudgetHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.budgetService.GetSummary(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetConfig returns the caller's budget configuration.
func (h *BudgetHandler) GetConfig(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cfg, err := h.budgetService.GetConfig(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"config": cfg})
}

// SaveConfig replaces the caller's budget configuration.
func (h *BudgetHandler) SaveConfig(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BudgetConfigRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	cfg, err := h.budgetService.SaveConfig(c.Request.Context(), userID, services.BudgetConfigInput{
		WeeklyIncome:  req.WeeklyIncome,
		ExpensesPct:   req.ExpensesPct,
		SavingsPct:    req.SavingsPct,
		InvestmentPct: req.InvestmentPct,
		FreePct:       req.FreePct,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"config": cfg})
}
