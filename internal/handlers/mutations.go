package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"serata/internal/models"
)

// CreateNameChange handles POST /api/name-changes
func (h *Handlers) CreateNameChange(c *gin.Context) {
	var req models.CreateNameChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	nc, err := h.services.Mutations.CreateNameChange(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, nc)
}

// GetNameChange handles GET /api/name-changes/:id
func (h *Handlers) GetNameChange(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	nc, err := h.services.Mutations.GetNameChange(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, nc)
}

// ApproveNameChange handles POST /api/name-changes/:id/approve
func (h *Handlers) ApproveNameChange(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	nc, err := h.services.Mutations.ApproveNameChange(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, nc)
}

// RejectNameChange handles POST /api/name-changes/:id/reject
func (h *Handlers) RejectNameChange(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.RejectNameChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	nc, err := h.services.Mutations.RejectNameChange(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, nc)
}

// CreateResale handles POST /api/resales
func (h *Handlers) CreateResale(c *gin.Context) {
	var req models.CreateResaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	resale, err := h.services.Mutations.CreateResale(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resale)
}

// GetResale handles GET /api/resales/:id
func (h *Handlers) GetResale(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	resale, err := h.services.Mutations.GetResale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resale)
}

// CompleteResale handles POST /api/resales/:id/complete
func (h *Handlers) CompleteResale(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.CompleteResaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	resale, err := h.services.Mutations.CompleteResale(c.Request.Context(), id, req.Buyer)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resale)
}

// CancelResale handles POST /api/resales/:id/cancel
func (h *Handlers) CancelResale(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	resale, err := h.services.Mutations.CancelResale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resale)
}
