package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/gnosis-auth/backend/internal/model"
	"github.com/gnosis-auth/backend/internal/service"
)

type AuthHandler struct {
	svc *service.MagicLinkService
}

func NewAuthHandler(svc *service.MagicLinkService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login godoc
// @Summary Request a magic-link login
// @Description Issues a one-time login secret for the email. Depending on deployment mode the secret is surfaced inline or delivered by email.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Accept json
// @Produce json
// @Param email formData string true "Email address"
// @Param return_url formData string true "Post-login destination"
// @Success 200 {object} model.LoginChallengeResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	challenge, err := h.svc.Request(c.Request.Context(), req.Email, req.ReturnURL)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, challenge)
}

// VerifyToken godoc
// @Summary Verify a magic-link secret
// @Description Exchanges the one-time secret for a session JWT and redirects to return_url with ?token= appended.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Param email formData string true "Email address"
// @Param token formData string true "One-time secret"
// @Param return_url formData string true "Post-login destination"
// @Success 302
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/auth/token [post]
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	var req model.VerifyTokenRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.verify(c, req.Email, req.Token, req.ReturnURL)
}

// VerifyTokenLink handles the clickable link variant: the same
// verification driven by query parameters.
//
// VerifyTokenLink godoc
// @Summary Verify a magic-link secret from an emailed link
// @Tags auth
// @Param email query string true "Email address"
// @Param token query string true "One-time secret"
// @Param return_url query string true "Post-login destination"
// @Success 302
// @Failure 401 {object} model.ErrorResponse
// @Router /api/auth/token [get]
func (h *AuthHandler) VerifyTokenLink(c *gin.Context) {
	h.verify(c, c.Query("email"), c.Query("token"), c.Query("return_url"))
}

func (h *AuthHandler) verify(c *gin.Context, email, secret, returnURL string) {
	sessionToken, _, err := h.svc.Verify(c.Request.Context(), email, secret)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	if returnURL == "" {
		returnURL = "/"
	}
	c.Redirect(http.StatusFound, redirectWithToken(returnURL, sessionToken))
}

func redirectWithToken(returnURL, sessionToken string) string {
	u, err := url.Parse(returnURL)
	if err != nil {
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Set("token", sessionToken)
	u.RawQuery = q.Encode()
	return u.String()
}
