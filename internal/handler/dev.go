package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type devStore interface {
	ClearAll(ctx context.Context) error
}

type DevHandler struct {
	store devStore
}

func NewDevHandler(store devStore) *DevHandler {
	return &DevHandler{store: store}
}

// ClearDatabase godoc
// @Summary Delete all users and API tokens
// @Description Development and staging only; the route is not registered in production.
// @Tags dev
// @Produce json
// @Success 200 {object} model.MessageResponse
// @Router /dev/clear-database [post]
func (h *DevHandler) ClearDatabase(c *gin.Context) {
	if err := h.store.ClearAll(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All users and API tokens have been deleted."})
}
