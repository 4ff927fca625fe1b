package client

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const googleIssuer = "https://accounts.google.com"

// GoogleProvider authenticates against Google through standard OIDC
// discovery; the profile comes from the issuer's UserInfo endpoint.
type GoogleProvider struct {
	oauth    *oauth2.Config
	provider *oidc.Provider
}

func NewGoogleProvider(ctx context.Context, clientID, clientSecret, domain string) (*GoogleProvider, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("google oidc discovery failed: %w", err)
	}

	return &GoogleProvider{
		provider: provider,
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  fmt.Sprintf("http://%s/api/oauth/google/callback", domain),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
	}, nil
}

func (p *GoogleProvider) Name() string {
	return "google"
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.oauth.Exchange(ctx, code)
}

func (p *GoogleProvider) FetchProfile(ctx context.Context, tok *oauth2.Token) (Profile, error) {
	userInfo, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(tok))
	if err != nil {
		return Profile{}, fmt.Errorf("google userinfo fetch failed: %w", err)
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := userInfo.Claims(&claims); err != nil {
		return Profile{}, fmt.Errorf("google userinfo decode failed: %w", err)
	}

	email := claims.Email
	if email == "" {
		email = userInfo.Email
	}
	return Profile{Email: email, Name: claims.Name}, nil
}
