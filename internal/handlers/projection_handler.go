package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"finanzas/internal/pagination"
	"finanzas/internal/services"
)

// ProjectionHandler handles projection-related requests.
type ProjectionHandler struct {
	projectionService services.ProjectionServicer
}

// NewProjectionHandler creates a new ProjectionHandler.
func NewProjectionHandler(projectionService services.ProjectionServicer) *ProjectionHandler {
	return &ProjectionHandler{projectionService: projectionService}
}

// ProjectionRequest represents an expected future amount. Negative amounts
// are expected outflows.
type ProjectionRequest struct {
	Concept string          `json:"concept" binding:"required,min=1,max=255"`
	Amount  decimal.Decimal `json:"amount"`
}

// CreateProjection handles the creation of a projection
func (h *ProjectionHandler) CreateProjection(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ProjectionRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	projection, err := h.projectionService.CreateProjection(c.Request.Context(), userID, req.Concept, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"projection": projection})
}

// GetUserProjections lists the caller's projections
func (h *ProjectionHandler) GetUserProjections(c *gin.Context) {
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

	result, err := h.projectionService.GetUserProjections(c.Request.Context(), userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetProjectionByID returns one projection
func (h *ProjectionHandler) GetProjectionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	projectionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	projection, err := h.projectionService.GetProjectionByID(c.Request.Context(), userID, projectionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projection": projection})
}

// UpdateProjection replaces a projection's concept and amount
func (h *ProjectionHandler) UpdateProjection(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	projectionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ProjectionRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	projection, err := h.projectionService.UpdateProjection(c.Request.Context(), userID, projectionID, req.Concept, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projection": projection})
}

// DeleteProjection deletes a projection
func (h *ProjectionHandler) DeleteProjection(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	projectionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.projectionService.DeleteProjection(c.Request.Context(), userID, projectionID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
