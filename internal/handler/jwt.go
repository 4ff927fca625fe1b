package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gnosis-auth/backend/internal/model"
	"github.com/gnosis-auth/backend/internal/service"
)

type JWTHandler struct {
	jwt    *service.JWTService
	tokens *service.APITokenService
}

func NewJWTHandler(jwtSvc *service.JWTService, tokens *service.APITokenService) *JWTHandler {
	return &JWTHandler{jwt: jwtSvc, tokens: tokens}
}

// Exchange godoc
// @Summary Exchange an API token for a session JWT
// @Description Token-exchange grant: a valid raw API token yields a short-lived bearer JWT.
// @Tags jwt
// @Accept x-www-form-urlencoded
// @Accept json
// @Produce json
// @Param token formData string true "Raw API token secret"
// @Success 200 {object} model.ExchangeResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /auth [post]
func (h *JWTHandler) Exchange(c *gin.Context) {
	var req model.ExchangeRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	resp, err := h.tokens.Exchange(c.Request.Context(), req.Token)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Verify godoc
// @Summary Verify a session JWT
// @Description Validates the bearer token and returns its decoded claims. Used by other services to validate a caller's session token.
// @Tags jwt
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.SessionClaims
// @Failure 401 {object} model.ErrorResponse
// @Router /api/verify [get]
func (h *JWTHandler) Verify(c *gin.Context) {
	tokenStr := bearerToken(c)
	if tokenStr == "" {
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	claims, err := h.jwt.Verify(tokenStr)
	if err != nil {
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, claims)
}

// JWKS godoc
// @Summary Public signing keys
// @Description Serves the JSON Web Key Set so third parties can verify session tokens without contacting this service.
// @Tags jwt
// @Produce json
// @Success 200 {object} map[string]any
// @Router /.well-known/jwks.json [get]
func (h *JWTHandler) JWKS(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", h.jwt.JWKS())
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
