package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"serata/internal/models"
)

// CreateSector handles POST /api/events/:id/sectors
func (h *Handlers) CreateSector(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.CreateSectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	sector, err := h.services.Sectors.Create(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sector)
}

// ListSectors handles GET /api/events/:id/sectors
func (h *Handlers) ListSectors(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	sectors, err := h.services.Sectors.ListByEvent(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sectors)
}

// GetSector handles GET /api/sectors/:id
func (h *Handlers) GetSector(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	sector, err := h.services.Sectors.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sector)
}

// UpdateSector handles PATCH /api/sectors/:id
func (h *Handlers) UpdateSector(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateSectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	sector, err := h.services.Sectors.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sector)
}
