package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newGitHubTestServer(t *testing.T, profile map[string]any, emails []map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer provider-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(profile)
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(emails)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGitHubFetchProfile(t *testing.T) {
	srv := newGitHubTestServer(t, map[string]any{
		"email": "alice@x.com",
		"name":  "Alice",
		"login": "alice",
	}, nil)

	p := NewGitHubProvider("id", "secret", "localhost:5678")
	p.apiBase = srv.URL

	profile, err := p.FetchProfile(context.Background(), &oauth2.Token{AccessToken: "provider-token"})
	require.NoError(t, err)
	assert.Equal(t, Profile{Email: "alice@x.com", Name: "Alice"}, profile)
}

func TestGitHubFetchProfileEmailsFallback(t *testing.T) {
	srv := newGitHubTestServer(t, map[string]any{
		"email": "",
		"name":  "",
		"login": "alice",
	}, []map[string]any{
		{"email": "secondary@x.com", "primary": false},
		{"email": "primary@x.com", "primary": true},
	})

	p := NewGitHubProvider("id", "secret", "localhost:5678")
	p.apiBase = srv.URL

	profile, err := p.FetchProfile(context.Background(), &oauth2.Token{AccessToken: "provider-token"})
	require.NoError(t, err)
	assert.Equal(t, "primary@x.com", profile.Email)
	// Display name falls back to the login handle.
	assert.Equal(t, "alice", profile.Name)
}

func TestGitHubFetchProfileNoEmailAnywhere(t *testing.T) {
	srv := newGitHubTestServer(t, map[string]any{"login": "alice"}, []map[string]any{
		{"email": "hidden@x.com", "primary": false},
	})

	p := NewGitHubProvider("id", "secret", "localhost:5678")
	p.apiBase = srv.URL

	profile, err := p.FetchProfile(context.Background(), &oauth2.Token{AccessToken: "provider-token"})
	require.NoError(t, err)
	assert.Empty(t, profile.Email)
}

func TestGitHubAuthCodeURL(t *testing.T) {
	p := NewGitHubProvider("client-id", "secret", "auth.example.com")
	u := p.AuthCodeURL("state-123")
	assert.Contains(t, u, "github.com/login/oauth/authorize")
	assert.Contains(t, u, "state=state-123")
	assert.Contains(t, u, "client_id=client-id")
}
