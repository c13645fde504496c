package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"serata/internal/models"
)

// GetActivities handles GET /api/events/:id/feed
func (h *Handlers) GetActivities(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activities": h.feed.Activities(id),
		"alerts":     h.feed.Alerts(id),
	})
}

// DismissAlert handles DELETE /api/events/:id/alerts/:alertId
func (h *Handlers) DismissAlert(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	alertID, ok := pathID(c, "alertId")
	if !ok {
		return
	}

	if !h.feed.DismissAlert(id, alertID) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "alert not found", Code: "not_found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// StreamFeed handles GET /api/events/:id/feed/stream as server-sent events.
// Frames are best-effort: a slow client loses frames rather than blocking
// the writers.
func (h *Handlers) StreamFeed(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	frames, cancel := h.feed.Subscribe(id)
	defer cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case frame, open := <-frames:
			if !open {
				return false
			}
			c.SSEvent(frame.Type, frame)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
