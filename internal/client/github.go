package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// Profile is what a federation provider knows about the principal.
// Email equality is the only thing collapsing provider identity onto a
// local user.
type Profile struct {
	Email string
	Name  string
}

// GitHubProvider authenticates against GitHub's OAuth2 flow. GitHub may
// omit the email from the profile endpoint, in which case the primary
// entry of the emails listing is used.
type GitHubProvider struct {
	oauth      *oauth2.Config
	apiBase    string
	httpClient *http.Client
}

func NewGitHubProvider(clientID, clientSecret, domain string) *GitHubProvider {
	return &GitHubProvider{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     endpoints.GitHub,
			RedirectURL:  fmt.Sprintf("http://%s/api/oauth/github/callback", domain),
			Scopes:       []string{"user:email"},
		},
		apiBase: "https://api.github.com",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (p *GitHubProvider) Name() string {
	return "github"
}

func (p *GitHubProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	return p.oauth.Exchange(ctx, code)
}

func (p *GitHubProvider) FetchProfile(ctx context.Context, tok *oauth2.Token) (Profile, error) {
	var user struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Login string `json:"login"`
	}
	if err := p.getJSON(ctx, "/user", tok, &user); err != nil {
		return Profile{}, fmt.Errorf("github profile fetch failed: %w", err)
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	if user.Email != "" {
		return Profile{Email: user.Email, Name: name}, nil
	}

	// Profile email can be private; fall back to the emails listing and
	// take the entry marked primary.
	var emails []struct {
		Email   string `json:"email"`
		Primary bool   `json:"primary"`
	}
	if err := p.getJSON(ctx, "/user/emails", tok, &emails); err != nil {
		return Profile{}, fmt.Errorf("github emails fetch failed: %w", err)
	}
	for _, e := range emails {
		if e.Primary {
			return Profile{Email: e.Email, Name: name}, nil
		}
	}

	return Profile{Name: name}, nil
}

func (p *GitHubProvider) getJSON(ctx context.Context, path string, tok *oauth2.Token, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBase+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
