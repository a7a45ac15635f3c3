package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"finanzas/internal/models"
	"finanzas/internal/pagination"
	"finanzas/internal/services"
)

// AccountHandler handles account-related requests.
type AccountHandler struct {
	accountService  services.AccountServicer
	movementService services.MovementServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer, movementService services.MovementServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService, movementService: movementService}
}

// AccountRequest represents the payload for creating or replacing an account.
type AccountRequest struct {
	Description string `json:"description" binding:"required,min=1,max=255"`
	Type        string `json:"type" binding:"required,account_type"`
}

// ReconcileRequest carries the balance an account should be forced to.
type ReconcileRequest struct {
	Balance decimal.Decimal `json:"balance"`
}

// PeriodQuery selects one calendar month of movements. Zero values mean the
// current month.
type PeriodQuery struct {
	pagination.PageRequest
	Year  int `form:"year" binding:"omitempty,min=1"`
	Month int `form:"month" binding:"omitempty,min=1,max=12"`
}

// CreateAccount handles the creation of a new account
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AccountRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), userID, req.Description, models.AccountType(req.Type))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// GetUserAccounts handles the retrieval of accounts for a user
func (h *AccountHandler) GetUserAccounts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := bindQuery(c, &page); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.accountService.GetUserAccounts(c.Request.Context(), userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAccountByID handles the retrieval of a specific account for a user
func (h *AccountHandler) GetAccountByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.GetAccountByID(c.Request.Context(), userID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// UpdateAccount replaces an account's description and type.
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AccountRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), userID, accountID, req.Description, models.AccountType(req.Type))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// DeleteAccount deletes an account with no movements.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.accountService.DeleteAccount(c.Request.Context(), userID, accountID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ReconcileBalance forces an account's balance to the requested value.
func (h *AccountHandler) ReconcileBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ReconcileRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.accountService.ReconcileBalance(c.Request.Context(), userID, accountID, req.Balance)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": result.Account, "movement": result.Entry})
}

// GetAccountMovements lists one month of an account's movements.
func (h *AccountHandler) GetAccountMovements(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q PeriodQuery
	if err := bindQuery(c, &q); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.movementService.GetAccountMovements(c.Request.Context(), userID, accountID, q.Year, q.Month, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
