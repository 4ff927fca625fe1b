package model

import "time"

// SessionClaims is the decoded payload of a session JWT.
type SessionClaims struct {
	Subject   string   `json:"sub"`
	UserUID   string   `json:"user_id"`
	Name      string   `json:"name,omitempty"`
	Scopes    []string `json:"scopes,omitempty"`
	IssuedAt  int64    `json:"iat"`
	ExpiresAt int64    `json:"exp"`
}

type LoginRequest struct {
	Email     string `form:"email" json:"email"`
	ReturnURL string `form:"return_url" json:"return_url"`
}

type VerifyTokenRequest struct {
	Email     string `form:"email" json:"email"`
	Token     string `form:"token" json:"token"`
	ReturnURL string `form:"return_url" json:"return_url"`
}

type TokenCreateRequest struct {
	Name        string `json:"name"`
	ExpiresDays *int   `json:"expires_days"`
}

type ExchangeRequest struct {
	Token string `form:"token" json:"token"`
}

type ExchangeResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type TokenCreateResponse struct {
	NewToken  string       `json:"new_token"`
	TokenInfo ApiTokenInfo `json:"token_info"`
}

type TokenActionResponse struct {
	Message   string       `json:"message"`
	TokenInfo ApiTokenInfo `json:"token_info"`
}

// OAuthState is the server-held, single-use CSRF marker for an OAuth
// round trip, carrying the caller's post-login destination.
type OAuthState struct {
	State     string
	ReturnURL string
	ExpiresAt time.Time
}
