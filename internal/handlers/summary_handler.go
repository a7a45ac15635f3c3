package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finanzas/internal/services"
)

// SummaryHandler serves the consolidated financial summary.
type SummaryHandler struct {
	summaryService services.SummaryServicer
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(summaryService services.SummaryServicer) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService}
}

// GetFinancialSummary returns the caller's net-worth position.
func (h *SummaryHandler) GetFinancialSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.summaryService.GetFinancialSummary(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
