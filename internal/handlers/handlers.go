package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "serata/internal/errors"
	"serata/internal/feed"
	"serata/internal/logger"
	"serata/internal/models"
	"serata/internal/service"
)

// Handlers binds the HTTP surface to the service layer.
type Handlers struct {
	services *service.Services
	feed     *feed.Feed
}

func New(services *service.Services, fd *feed.Feed) *Handlers {
	return &Handlers{services: services, feed: fd}
}

// respondError maps the error taxonomy onto HTTP. Unknown errors become an
// opaque 500 with the detail only in the log.
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= 500 {
		logger.WithContext(c.Request.Context()).Error("Request failed", "error", err)
		c.JSON(status, models.ErrorResponse{Error: "internal error", Code: apperrors.CodeOf(err)})
		return
	}
	c.JSON(status, models.ErrorResponse{Error: err.Error(), Code: apperrors.CodeOf(err)})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(400, models.ErrorResponse{Error: err.Error(), Code: apperrors.CodeInvalidInput})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(400, models.ErrorResponse{
			Error: "invalid " + name + " parameter",
			Code:  apperrors.CodeInvalidInput,
		})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
