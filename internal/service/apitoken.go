package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gnosis-auth/backend/internal/db"
	"github.com/gnosis-auth/backend/internal/model"
	"github.com/gnosis-auth/backend/internal/token"
)

const (
	// apiTokenPrefix makes raw secrets recognizable in logs and configs.
	apiTokenPrefix = "ahp_"
	// apiTokenLength is the entropy (bytes) of a raw API token secret.
	apiTokenLength = 48
	// Scopes granted on a session minted through token exchange.
	defaultScopeRead  = "read"
	defaultScopeWrite = "write"
)

type apiTokenStore interface {
	CreateAPIToken(ctx context.Context, tok *model.ApiToken) error
	GetAPITokenByUID(ctx context.Context, uid string) (*model.ApiToken, error)
	GetAPITokenByHash(ctx context.Context, tokenHash string) (*model.ApiToken, error)
	GetAPITokensByUIDs(ctx context.Context, uids []string) ([]*model.ApiToken, error)
	DeactivateAPIToken(ctx context.Context, uid string) error
	DeleteAPIToken(ctx context.Context, userUID, tokenUID string) error
}

type apiTokenUserStore interface {
	GetUserByUID(ctx context.Context, uid string) (*model.User, error)
}

// APITokenService manages the long-lived credential lifecycle and the
// token-exchange grant that converts a raw API token into a session JWT.
type APITokenService struct {
	tokens apiTokenStore
	users  apiTokenUserStore
	jwt    *JWTService
	now    func() time.Time
}

func NewAPITokenService(tokens apiTokenStore, users apiTokenUserStore, jwtSvc *JWTService) *APITokenService {
	return &APITokenService{
		tokens: tokens,
		users:  users,
		jwt:    jwtSvc,
		now:    time.Now,
	}
}

// Create mints a new API token for the user. The raw secret is returned
// exactly once; only its hash and display mask are persisted.
func (s *APITokenService) Create(ctx context.Context, user *model.User, name string, expiresDays *int) (string, model.ApiTokenInfo, error) {
	if strings.TrimSpace(name) == "" {
		return "", model.ApiTokenInfo{}, ErrInvalidInput
	}

	secret, err := token.Generate(apiTokenLength)
	if err != nil {
		return "", model.ApiTokenInfo{}, err
	}
	raw := apiTokenPrefix + secret

	var expires *time.Time
	if expiresDays != nil {
		if *expiresDays <= 0 {
			return "", model.ApiTokenInfo{}, ErrInvalidInput
		}
		at := s.now().Add(time.Duration(*expiresDays) * 24 * time.Hour)
		expires = &at
	}

	tok := &model.ApiToken{
		UID:          uuid.NewString(),
		UserUID:      user.UID,
		Name:         name,
		TokenHash:    token.Hash(raw),
		TokenDisplay: token.Mask(raw),
		Active:       true,
		Expires:      expires,
	}

	if err := s.tokens.CreateAPIToken(ctx, tok); err != nil {
		return "", model.ApiTokenInfo{}, err
	}

	log.Printf("[ApiToken] Created token %s (%s) for user %s", tok.UID, tok.Name, user.UID)
	return raw, tok.SafeInfo(), nil
}

// List returns safe projections of the user's tokens, in membership
// list order. Secret material is never surfaced.
func (s *APITokenService) List(ctx context.Context, user *model.User) ([]model.ApiTokenInfo, error) {
	tokens, err := s.tokens.GetAPITokensByUIDs(ctx, user.APITokens)
	if err != nil {
		return nil, err
	}

	byUID := make(map[string]*model.ApiToken, len(tokens))
	for _, tok := range tokens {
		byUID[tok.UID] = tok
	}

	infos := make([]model.ApiTokenInfo, 0, len(tokens))
	for _, uid := range user.APITokens {
		if tok, ok := byUID[uid]; ok {
			infos = append(infos, tok.SafeInfo())
		}
	}
	return infos, nil
}

// Revoke deactivates a token permanently. Idempotent; the token stays
// listed but can no longer authenticate.
func (s *APITokenService) Revoke(ctx context.Context, user *model.User, tokenUID string) (model.ApiTokenInfo, error) {
	tok, err := s.getOwned(ctx, user, tokenUID)
	if err != nil {
		return model.ApiTokenInfo{}, err
	}

	if err := s.tokens.DeactivateAPIToken(ctx, tok.UID); err != nil {
		return model.ApiTokenInfo{}, err
	}
	tok.Active = false
	return tok.SafeInfo(), nil
}

// Delete detaches the token from the owner's membership list and
// removes the record.
func (s *APITokenService) Delete(ctx context.Context, user *model.User, tokenUID string) error {
	tok, err := s.getOwned(ctx, user, tokenUID)
	if err != nil {
		return err
	}
	return s.tokens.DeleteAPIToken(ctx, user.UID, tok.UID)
}

// Exchange converts a raw API token into a short-lived session JWT.
// Token not found, inactive or expired, and user not found or inactive
// all collapse to ErrUnauthorized so nothing can be enumerated.
func (s *APITokenService) Exchange(ctx context.Context, raw string) (model.ExchangeResponse, error) {
	if strings.TrimSpace(raw) == "" {
		return model.ExchangeResponse{}, ErrInvalidInput
	}

	hash := token.Hash(raw)
	tok, err := s.tokens.GetAPITokenByHash(ctx, hash)
	if err != nil {
		if db.IsNoRows(err) {
			return model.ExchangeResponse{}, ErrUnauthorized
		}
		return model.ExchangeResponse{}, err
	}
	if !token.ConstantTimeEqual(tok.TokenHash, hash) || !tok.Valid(s.now()) {
		return model.ExchangeResponse{}, ErrUnauthorized
	}

	user, err := s.users.GetUserByUID(ctx, tok.UserUID)
	if err != nil {
		if db.IsNoRows(err) {
			return model.ExchangeResponse{}, ErrUnauthorized
		}
		return model.ExchangeResponse{}, err
	}
	if !user.Active {
		return model.ExchangeResponse{}, ErrUnauthorized
	}

	accessToken, expiresIn, err := s.jwt.Issue(IssueParams{
		Email:   user.Email,
		UserUID: user.UID,
		Scopes:  []string{defaultScopeRead, defaultScopeWrite},
	})
	if err != nil {
		return model.ExchangeResponse{}, err
	}

	return model.ExchangeResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
	}, nil
}

// getOwned conflates "absent" and "not yours" into ErrNotFound so token
// existence does not leak across users.
func (s *APITokenService) getOwned(ctx context.Context, user *model.User, tokenUID string) (*model.ApiToken, error) {
	if tokenUID == "" {
		return nil, ErrNotFound
	}
	tok, err := s.tokens.GetAPITokenByUID(ctx, tokenUID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if tok.UserUID != user.UID {
		return nil, ErrNotFound
	}
	return tok, nil
}
