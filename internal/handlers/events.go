package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"serata/internal/models"
)

// CreateEvent handles POST /api/events
func (h *Handlers) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	event, err := h.services.Events.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// ListEvents handles GET /api/events
func (h *Handlers) ListEvents(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "pageSize", 20)
	if pageSize > 100 {
		pageSize = 100
	}
	query := c.Query("query")
	date := c.Query("date")

	// Plain pages are served straight from the cache.
	if query == "" && date == "" {
		if raw, ok := h.services.Events.CachedList(c.Request.Context(), page, pageSize); ok {
			c.Data(http.StatusOK, "application/json", raw)
			return
		}
	}

	events, err := h.services.Events.List(c.Request.Context(), query, date, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make(models.ListEventsResponse, 0, len(events))
	for _, e := range events {
		items = append(items, models.ListEventsResponseItem{
			ID:       e.ID,
			Name:     e.Name,
			Status:   e.Status,
			StartsAt: e.StartsAt,
			IsPublic: e.IsPublic,
		})
	}

	if query == "" && date == "" {
		h.services.Events.StoreList(c.Request.Context(), page, pageSize, items)
	}

	c.JSON(http.StatusOK, items)
}

// GetEvent handles GET /api/events/:id
func (h *Handlers) GetEvent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	event, err := h.services.Events.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// AdvanceEvent handles POST /api/events/:id/advance
func (h *Handlers) AdvanceEvent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	event, err := h.services.Events.Advance(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AdvanceEventResponse{ID: event.ID, Status: event.Status})
}

// DeleteEvent handles DELETE /api/events/:id
func (h *Handlers) DeleteEvent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Events.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ActivateTicketing handles POST /api/events/:id/ticketing
func (h *Handlers) ActivateTicketing(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.ActivateTicketingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	te, err := h.services.Events.ActivateTicketing(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, te)
}

// GetTicketing handles GET /api/events/:id/ticketing
func (h *Handlers) GetTicketing(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	te, err := h.services.Events.GetTicketing(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, te)
}

// UpdateTicketing handles PATCH /api/events/:id/ticketing
func (h *Handlers) UpdateTicketing(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateTicketingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	te, err := h.services.Events.UpdateTicketing(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, te)
}
