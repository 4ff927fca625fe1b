package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gnosis-auth/backend/internal/service"
)

// writeAuthError maps service errors onto HTTP statuses. Authentication
// failures carry no internal detail; store failures surface as 503 so
// they are never mistaken for a bad credential.
func writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrUpstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": "login failed"})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
	}
}
