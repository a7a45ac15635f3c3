package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"finanzas/internal/models"
	"finanzas/internal/services"
)

// MovementHandler handles general-ledger movements.
type MovementHandler struct {
	movementService services.MovementServicer
}

// NewMovementHandler creates a new MovementHandler.
func NewMovementHandler(movementService services.MovementServicer) *MovementHandler {
	return &MovementHandler{movementService: movementService}
}

// RegisterMovementRequest represents an income or expense on an account.
type RegisterMovementRequest struct {
	AccountID string          `json:"account_id" binding:"required,uuid"`
	Kind      string          `json:"kind" binding:"required,movement_kind"`
	Amount    decimal.Decimal `json:"amount" binding:"gt=0"`
	Concept   string          `json:"concept" binding:"max=255"`
}

// RegisterMovement appends a movement to an account's ledger.
func (h *MovementHandler) RegisterMovement(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RegisterMovementRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.movementService.RegisterMovement(c.Request.Context(), userID, req.AccountID, models.MovementKind(req.Kind), req.Amount, req.Concept)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"movement": entry})
}

// DeleteMovement removes a movement owned by the caller.
func (h *MovementHandler) DeleteMovement(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	movementID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.movementService.DeleteMovement(c.Request.Context(), userID, movementID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
