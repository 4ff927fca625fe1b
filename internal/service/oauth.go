package service

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/gnosis-auth/backend/internal/client"
	"github.com/gnosis-auth/backend/internal/db"
	"github.com/gnosis-auth/backend/internal/model"
	"github.com/gnosis-auth/backend/internal/token"
)

const (
	// stateTTL bounds how long an OAuth round trip may take.
	stateTTL = 10 * time.Minute
	// stateLength is the entropy (bytes) of the state nonce.
	stateLength = 24
	// callbackTimeout bounds the outbound provider calls so a slow
	// provider cannot pin a request indefinitely.
	callbackTimeout = 15 * time.Second
)

// Provider is one federation variant. Adding a provider means adding an
// implementation, not branching through the flow.
type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchProfile(ctx context.Context, tok *oauth2.Token) (client.Profile, error)
}

type oauthUserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, uid, email, name string) (*model.User, error)
}

type oauthStateStore interface {
	InsertOAuthState(ctx context.Context, state, returnURL string, expiresAt time.Time) error
	ConsumeOAuthState(ctx context.Context, state string) (*model.OAuthState, error)
}

// OAuthService orchestrates federated login: redirect out with a
// server-held single-use state, then exchange the callback code, fetch
// the profile, resolve the user by email and mint a session JWT.
type OAuthService struct {
	providers map[string]Provider
	users     oauthUserStore
	states    oauthStateStore
	jwt       *JWTService
	now       func() time.Time
}

func NewOAuthService(users oauthUserStore, states oauthStateStore, jwtSvc *JWTService, providers ...Provider) *OAuthService {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &OAuthService{
		providers: byName,
		users:     users,
		states:    states,
		jwt:       jwtSvc,
		now:       time.Now,
	}
}

// Login returns the provider authorization URL. The caller's return URL
// is held server-side under a random single-use state, not carried in
// the state value itself.
func (s *OAuthService) Login(ctx context.Context, providerName, returnURL string) (string, error) {
	p, ok := s.providers[providerName]
	if !ok {
		return "", ErrNotFound
	}

	if strings.TrimSpace(returnURL) == "" {
		returnURL = "/"
	}

	state, err := token.Generate(stateLength)
	if err != nil {
		return "", err
	}
	if err := s.states.InsertOAuthState(ctx, state, returnURL, s.now().Add(stateTTL)); err != nil {
		return "", err
	}

	return p.AuthCodeURL(state), nil
}

// Callback completes the round trip. The user record is only written
// after every external call has succeeded; a profile without an email
// creates nothing.
func (s *OAuthService) Callback(ctx context.Context, providerName, code, state string) (string, error) {
	p, ok := s.providers[providerName]
	if !ok {
		return "", ErrNotFound
	}
	if code == "" || state == "" {
		return "", ErrInvalidInput
	}

	st, err := s.states.ConsumeOAuthState(ctx, state)
	if err != nil {
		if db.IsNoRows(err) {
			return "", ErrUnauthorized
		}
		return "", err
	}
	if s.now().After(st.ExpiresAt) {
		return "", ErrUnauthorized
	}

	callCtx, cancel := context.WithTimeout(ctx, callbackTimeout)
	defer cancel()

	providerTok, err := p.Exchange(callCtx, code)
	if err != nil {
		log.Printf("[OAuth] %s code exchange failed: %v", providerName, err)
		return "", ErrUpstream
	}

	profile, err := p.FetchProfile(callCtx, providerTok)
	if err != nil {
		log.Printf("[OAuth] %s profile fetch failed: %v", providerName, err)
		return "", ErrUpstream
	}
	if profile.Email == "" {
		log.Printf("[OAuth] %s returned no usable email", providerName)
		return "", ErrUpstream
	}

	user, err := s.resolveUser(ctx, profile, providerName)
	if err != nil {
		return "", err
	}
	if !user.Active {
		return "", ErrUnauthorized
	}

	sessionToken, _, err := s.jwt.Issue(IssueParams{
		Email:   user.Email,
		UserUID: user.UID,
		Name:    user.Name,
	})
	if err != nil {
		return "", err
	}

	return appendToken(st.ReturnURL, sessionToken)
}

func (s *OAuthService) resolveUser(ctx context.Context, profile client.Profile, providerName string) (*model.User, error) {
	email := strings.ToLower(profile.Email)
	user, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !db.IsNoRows(err) {
		return nil, err
	}

	user, err = s.users.CreateUser(ctx, uuid.NewString(), email, profile.Name)
	if err != nil {
		return nil, err
	}
	log.Printf("[OAuth] Created new user %s for %s via %s", user.UID, email, providerName)
	return user, nil
}

func appendToken(returnURL, sessionToken string) (string, error) {
	u, err := url.Parse(returnURL)
	if err != nil {
		return "", ErrInvalidInput
	}
	q := u.Query()
	q.Set("token", sessionToken)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
