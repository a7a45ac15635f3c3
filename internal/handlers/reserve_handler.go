package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"finanzas/internal/models"
	"finanzas/internal/services"
)

// ReserveHandler handles reserve-related requests.
type ReserveHandler struct {
	reserveService services.ReserveServicer
}

// NewReserveHandler creates a new ReserveHandler.
func NewReserveHandler(reserveService services.ReserveServicer) *ReserveHandler {
	return &ReserveHandler{reserveService: reserveService}
}

// ReserveRequest represents the payload for creating or replacing a reserve.
type ReserveRequest struct {
	Concept      string          `json:"concept" binding:"required,min=1,max=255"`
	Kind         string          `json:"kind" binding:"required,reserve_kind"`
	GoalAmount   decimal.Decimal `json:"goal_amount" binding:"gte=0"`
	WeeklyAmount decimal.Decimal `json:"weekly_amount" binding:"gte=0"`
	TargetDate   *string         `json:"target_date"`
}

// ReserveFilterQuery narrows listings to one reserve kind, or ALL.
type ReserveFilterQuery struct {
	Kind string `form:"kind" binding:"omitempty,reserve_filter"`
}

// ReserveMovementRequest represents a contribution or withdrawal.
type ReserveMovementRequest struct {
	ReserveID string          `json:"reserve_id" binding:"required,uuid"`
	Kind      string          `json:"kind" binding:"required,reserve_movement_kind"`
	Amount    decimal.Decimal `json:"amount" binding:"gt=0"`
	AccountID *string         `json:"account_id" binding:"omitempty,uuid"`
	Concept   string          `json:"concept" binding:"max=255"`
}

// WithdrawalRequest draws a reserve down into an account.
type WithdrawalRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"gt=0"`
	AccountID string          `json:"account_id" binding:"required,uuid"`
	Concept   string          `json:"concept" binding:"max=255"`
}

// ContributionRequest adds money to a reserve.
type ContributionRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"gt=0"`
	AccountID *string         `json:"account_id" binding:"omitempty,uuid"`
	Concept   string          `json:"concept" binding:"max=255"`
}

// BulkContributionRequest advances many reserves by a number of weeks.
type BulkContributionRequest struct {
	Weeks     int     `json:"weeks" binding:"required,min=1,max=520"`
	Concept   string  `json:"concept" binding:"max=255"`
	Kind      string  `json:"kind" binding:"omitempty,reserve_filter"`
	AccountID *string `json:"account_id" binding:"omitempty,uuid"`
}

func (r ReserveRequest) toInput() (services.ReserveInput, error) {
	target, err := parseDate("target_date", r.TargetDate)
	if err != nil {
		return services.ReserveInput{}, err
	}
	return services.ReserveInput{
		Concept:      r.Concept,
		Kind:         models.ReserveKind(r.Kind),
		GoalAmount:   r.GoalAmount,
		WeeklyAmount: r.WeeklyAmount,
		TargetDate:   target,
	}, nil
}

// CreateReserve creates a reserve within the weekly budget.
func (h *ReserveHandler) CreateReserve(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ReserveRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	reserve, err := h.reserveService.CreateReserve(c.Request.Context(), userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"reserve": reserve})
}

// GetUserReserves lists the caller's reserves.
func (h *ReserveHandler) GetUserReserves(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q ReserveFilterQuery
	if err := bindQuery(c, &q); err != nil {
		respondWithError(c, err)
		return
	}

	reserves, err := h.reserveService.GetUserReserves(c.Request.Context(), userID, q.Kind)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reserves": reserves})
}

// GetSummary reports reserve totals and goal projections.
func (h *ReserveHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q ReserveFilterQuery
	if err := bindQuery(c, &q); err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.reserveService.GetSummary(c.Request.Context(), userID, q.Kind)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetReserveByID returns one reserve with its balance.
func (h *ReserveHandler) GetReserveByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reserveID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	reserve, err := h.reserveService.GetReserveByID(c.Request.Context(), userID, reserveID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reserve": reserve})
}

// UpdateReserve replaces a reserve's fields.
func (h *ReserveHandler) UpdateReserve(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reserveID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ReserveRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	reserve, err := h.reserveService.UpdateReserve(c.Request.Context(), userID, reserveID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reserve": reserve})
}

// DeleteReserve deletes a reserve with no movements.
func (h *ReserveHandler) DeleteReserve(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reserveID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.reserveService.DeleteReserve(c.Request.Context(), userID, reserveID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Contribute adds a contribution to the reserve in the path.
func (h *ReserveHandler) Contribute(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reserveID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ContributionRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.reserveService.Contribute(c.Request.Context(), userID, reserveID, req.Amount, req.AccountID, req.Concept)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"movement": entry})
}

// Withdraw draws down the reserve in the path and returns both ledger rows.
func (h *ReserveHandler) Withdraw(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reserveID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req WithdrawalRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.reserveService.Withdraw(c.Request.Context(), userID, reserveID, req.Amount, req.AccountID, req.Concept)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// RegisterMovement records a contribution or withdrawal named by kind.
func (h *ReserveHandler) RegisterMovement(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ReserveMovementRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.reserveService.RegisterReserveMovement(c.Request.Context(), userID, req.ReserveID,
		models.ReserveMovementKind(req.Kind), req.Amount, req.AccountID, req.Concept)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"movement": entry})
}

// GetMovements lists one month of a reserve's movements.
func (h *ReserveHandler) GetMovements(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reserveID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q PeriodQuery
	if err := bindQuery(c, &q); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.reserveService.GetReserveMovements(c.Request.Context(), userID, reserveID, q.Year, q.Month, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteMovement removes a reserve movement owned by the caller.
func (h *ReserveHandler) DeleteMovement(c *gin.Context) {
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

	if err := h.reserveService.DeleteReserveMovement(c.Request.Context(), userID, movementID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// BulkContribute advances every selected reserve by its weekly amount.
func (h *ReserveHandler) BulkContribute(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BulkContributionRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	entries, err := h.reserveService.BulkContribute(c.Request.Context(), userID, services.BulkContributionInput{
		Weeks:      req.Weeks,
		Concept:    req.Concept,
		KindFilter: req.Kind,
		AccountID:  req.AccountID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"movements": entries, "count": len(entries)})
}
