package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gnosis-auth/backend/internal/model"
	"github.com/gnosis-auth/backend/internal/service"
)

type TokenHandler struct {
	svc *service.APITokenService
}

func NewTokenHandler(svc *service.APITokenService) *TokenHandler {
	return &TokenHandler{svc: svc}
}

// List godoc
// @Summary List API tokens
// @Description Returns the caller's tokens with secret material excluded.
// @Tags tokens
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.ApiTokenInfo
// @Failure 401 {object} model.ErrorResponse
// @Router /api/tokens [get]
func (h *TokenHandler) List(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	infos, err := h.svc.List(c.Request.Context(), user)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	if infos == nil {
		infos = []model.ApiTokenInfo{}
	}
	c.JSON(http.StatusOK, infos)
}

// Create godoc
// @Summary Create an API token
// @Description Returns the raw secret exactly once; it is never retrievable again.
// @Tags tokens
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.TokenCreateRequest true "Token name and optional expiry in days"
// @Success 200 {object} model.TokenCreateResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/tokens [post]
func (h *TokenHandler) Create(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req model.TokenCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	raw, info, err := h.svc.Create(c.Request.Context(), user, req.Name, req.ExpiresDays)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.TokenCreateResponse{
		NewToken:  raw,
		TokenInfo: info,
	})
}

// Revoke godoc
// @Summary Revoke an API token
// @Description Deactivates the token permanently; it stays listed but unusable.
// @Tags tokens
// @Produce json
// @Security BearerAuth
// @Param uid path string true "Token uid"
// @Success 200 {object} model.TokenActionResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/tokens/{uid}/revoke [post]
func (h *TokenHandler) Revoke(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	info, err := h.svc.Revoke(c.Request.Context(), user, c.Param("uid"))
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.TokenActionResponse{
		Message:   "Token revoked successfully",
		TokenInfo: info,
	})
}

// Delete godoc
// @Summary Delete an API token
// @Description Removes the token from the caller's list and deletes the record.
// @Tags tokens
// @Produce json
// @Security BearerAuth
// @Param uid path string true "Token uid"
// @Success 200 {object} model.MessageResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/tokens/{uid} [delete]
func (h *TokenHandler) Delete(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), user, c.Param("uid")); err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.MessageResponse{Message: "Token deleted successfully"})
}
