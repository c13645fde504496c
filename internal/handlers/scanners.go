package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"serata/internal/models"
)

// CreateScannerAssignment handles POST /api/scanner-assignments
func (h *Handlers) CreateScannerAssignment(c *gin.Context) {
	var req models.CreateScannerAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	assignment, err := h.services.Scanners.Assign(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// GetScannerAssignment handles GET /api/scanner-assignments/:userId/:eventId
func (h *Handlers) GetScannerAssignment(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	eventID, ok := pathID(c, "eventId")
	if !ok {
		return
	}

	assignment, err := h.services.Scanners.Resolve(c.Request.Context(), userID, eventID)
	if err != nil {
		respondError(c, err)
		return
	}
	if assignment == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "assignment not found", Code: "not_found"})
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// DeleteScannerAssignment handles DELETE /api/scanner-assignments/:userId/:eventId
func (h *Handlers) DeleteScannerAssignment(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	eventID, ok := pathID(c, "eventId")
	if !ok {
		return
	}

	if err := h.services.Scanners.Revoke(c.Request.Context(), userID, eventID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
