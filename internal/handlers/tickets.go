package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"serata/internal/models"
)

// IssueTicket handles POST /api/sectors/:id/tickets
func (h *Handlers) IssueTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.IssueTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	resp, err := h.services.Tickets.Issue(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetTicket handles GET /api/tickets/:id
func (h *Handlers) GetTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ticket, err := h.services.Tickets.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// ListEventTickets handles GET /api/events/:id/tickets
func (h *Handlers) ListEventTickets(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "pageSize", 50)
	if pageSize > 200 {
		pageSize = 200
	}

	tickets, err := h.services.Tickets.ListByEvent(c.Request.Context(), id,
		models.TicketStatus(c.Query("status")), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	if tickets == nil {
		tickets = []models.Ticket{}
	}
	c.JSON(http.StatusOK, tickets)
}

// CancelTicket handles POST /api/tickets/:id/cancel
func (h *Handlers) CancelTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.CancelTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	ticket, err := h.services.Tickets.Cancel(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// UseTicket handles POST /api/tickets/:id/use
func (h *Handlers) UseTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UseTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	ticket, err := h.services.Tickets.Use(c.Request.Context(), id, &req, h.services.Scanners)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}
