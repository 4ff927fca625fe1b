package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gnosis-auth/backend/internal/service"
)

type OAuthHandler struct {
	svc *service.OAuthService
}

func NewOAuthHandler(svc *service.OAuthService) *OAuthHandler {
	return &OAuthHandler{svc: svc}
}

// Login godoc
// @Summary Start a federated login
// @Description Redirects to the provider's authorization URL.
// @Tags oauth
// @Param provider path string true "Provider name (google, github)"
// @Param return_url query string false "Post-login destination"
// @Success 302
// @Failure 404 {object} model.ErrorResponse
// @Router /api/oauth/{provider}/login [get]
func (h *OAuthHandler) Login(c *gin.Context) {
	authURL, err := h.svc.Login(c.Request.Context(), c.Param("provider"), c.Query("return_url"))
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.Redirect(http.StatusFound, authURL)
}

// Callback godoc
// @Summary Complete a federated login
// @Description Exchanges the authorization code, resolves the user by email and redirects to the original return_url with ?token= appended. Failures render an HTML error page.
// @Tags oauth
// @Param provider path string true "Provider name (google, github)"
// @Param code query string true "Authorization code"
// @Param state query string true "Opaque state from the login redirect"
// @Success 302
// @Failure 400 {string} string "HTML error page"
// @Router /api/oauth/{provider}/callback [get]
func (h *OAuthHandler) Callback(c *gin.Context) {
	redirect, err := h.svc.Callback(c.Request.Context(), c.Param("provider"), c.Query("code"), c.Query("state"))
	if err != nil {
		writeLoginFailurePage(c, err)
		return
	}
	c.Redirect(http.StatusFound, redirect)
}

// writeLoginFailurePage renders a small user-facing HTML page. Detail
// stays in the server logs.
func writeLoginFailurePage(c *gin.Context, err error) {
	status := http.StatusBadRequest
	message := "Something went wrong during login. Please try again."
	switch {
	case errors.Is(err, service.ErrUpstream):
		message = "Could not retrieve your email from the provider."
	case errors.Is(err, service.ErrUnauthorized):
		message = "This login attempt is invalid or has expired. Please try again."
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
		message = "Unknown login provider."
	case errors.Is(err, service.ErrInvalidInput):
		message = "Missing login parameters."
	default:
		status = http.StatusServiceUnavailable
	}

	body := "<html><body><h1>Login Failed</h1><p>" + message + "</p></body></html>"
	c.Data(status, "text/html; charset=utf-8", []byte(body))
}
