package service

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"

	"github.com/gnosis-auth/backend/internal/config"
	"github.com/gnosis-auth/backend/internal/model"
)

// JWTService signs and verifies session credentials with a process-wide
// RSA keypair loaded once at startup. The private key never leaves the
// process; the public key is published as a JWKS document.
type JWTService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	keyID      string
	defaultTTL time.Duration
	jwks       []byte
	now        func() time.Time
}

type sessionClaims struct {
	UserUID string   `json:"user_id"`
	Name    string   `json:"name,omitempty"`
	Scopes  []string `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

// IssueParams carries the caller-supplied claims for a session token.
// TTL overrides the configured default when positive.
type IssueParams struct {
	Email   string
	UserUID string
	Name    string
	Scopes  []string
	TTL     time.Duration
}

func NewJWTService(cfg config.JWTConfig) (*JWTService, error) {
	pemBytes, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read signing key %s: %v", ErrMisconfigured, cfg.PrivateKeyPath, err)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot parse signing key: %v", ErrMisconfigured, err)
	}

	if cfg.ExpirationMinutes <= 0 {
		return nil, fmt.Errorf("%w: JWT_EXPIRATION_MINUTES must be positive", ErrMisconfigured)
	}

	return newJWTService(privateKey, cfg.KeyID, time.Duration(cfg.ExpirationMinutes)*time.Minute)
}

func newJWTService(privateKey *rsa.PrivateKey, keyID string, defaultTTL time.Duration) (*JWTService, error) {
	svc := &JWTService{
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
		keyID:      keyID,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}

	jwks, err := buildJWKS(svc.publicKey, keyID)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot build JWKS: %v", ErrMisconfigured, err)
	}
	svc.jwks = jwks

	return svc, nil
}

// DefaultTTL is the configured session lifetime.
func (s *JWTService) DefaultTTL() time.Duration {
	return s.defaultTTL
}

// Issue signs a session token for the given identity and returns the
// compact serialization plus its lifetime in seconds.
func (s *JWTService) Issue(p IssueParams) (string, int64, error) {
	ttl := p.TTL
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := s.now()
	claims := sessionClaims{
		UserUID: p.UserUID,
		Name:    p.Name,
		Scopes:  p.Scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.keyID
	signed, err := token.SignedString(s.privateKey)
	if err != nil {
		return "", 0, err
	}

	return signed, int64(ttl.Seconds()), nil
}

// Verify validates signature and expiry and returns the decoded claims.
// Malformed tokens, unsupported algorithms and expired tokens all
// collapse to ErrUnauthorized.
func (s *JWTService) Verify(tokenStr string) (*model.SessionClaims, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, ErrUnauthorized
		}
		return s.publicKey, nil
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}
	if claims.ExpiresAt == nil {
		return nil, ErrUnauthorized
	}

	decoded := &model.SessionClaims{
		Subject:   claims.Subject,
		UserUID:   claims.UserUID,
		Name:      claims.Name,
		Scopes:    claims.Scopes,
		ExpiresAt: claims.ExpiresAt.Unix(),
	}
	if claims.IssuedAt != nil {
		decoded.IssuedAt = claims.IssuedAt.Unix()
	}
	return decoded, nil
}

// JWKS returns the serialized public key set. Computed once at startup;
// the keypair is immutable for the process lifetime.
func (s *JWTService) JWKS() []byte {
	return s.jwks
}

func buildJWKS(publicKey *rsa.PublicKey, keyID string) ([]byte, error) {
	key, err := jwk.Import(publicKey)
	if err != nil {
		return nil, err
	}
	if err := key.Set(jwk.KeyIDKey, keyID); err != nil {
		return nil, err
	}
	if err := key.Set(jwk.AlgorithmKey, jwa.RS256()); err != nil {
		return nil, err
	}
	if err := key.Set(jwk.KeyUsageKey, jwk.ForSignature); err != nil {
		return nil, err
	}

	set := jwk.NewSet()
	if err := set.AddKey(key); err != nil {
		return nil, err
	}
	return json.Marshal(set)
}
