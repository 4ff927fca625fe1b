package service

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT(t *testing.T) *JWTService {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	svc, err := newJWTService(key, "test-key-1", 30*time.Minute)
	require.NoError(t, err)
	return svc
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc := newTestJWT(t)

	signed, expiresIn, err := svc.Issue(IssueParams{
		Email:   "alice@example.com",
		UserUID: "user-1",
		Name:    "Alice",
		Scopes:  []string{"read"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1800), expiresIn)

	claims, err := svc.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Equal(t, "user-1", claims.UserUID)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, []string{"read"}, claims.Scopes)
	assert.Greater(t, claims.ExpiresAt, claims.IssuedAt)
}

func TestVerifyExpired(t *testing.T) {
	svc := newTestJWT(t)

	// Issue in the past so the signature is valid but exp has passed.
	svc.now = func() time.Time { return time.Now().Add(-1 * time.Hour) }
	signed, _, err := svc.Issue(IssueParams{Email: "alice@example.com", UserUID: "user-1"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	svc := newTestJWT(t)
	other := newTestJWT(t)

	signed, _, err := other.Issue(IssueParams{Email: "alice@example.com", UserUID: "user-1"})
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyRejectsSymmetricAlgorithm(t *testing.T) {
	svc := newTestJWT(t)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     "alice@example.com",
		"user_id": "user-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := forged.SignedString([]byte("guessable"))
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyMalformed(t *testing.T) {
	svc := newTestJWT(t)
	_, err := svc.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestIssueTTLOverride(t *testing.T) {
	svc := newTestJWT(t)

	_, expiresIn, err := svc.Issue(IssueParams{
		Email:   "alice@example.com",
		UserUID: "user-1",
		TTL:     5 * time.Minute,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(300), expiresIn)
}

func TestJWKS(t *testing.T) {
	svc := newTestJWT(t)

	var doc struct {
		Keys []map[string]any `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(svc.JWKS(), &doc))
	require.Len(t, doc.Keys, 1)

	key := doc.Keys[0]
	assert.Equal(t, "RSA", key["kty"])
	assert.Equal(t, "test-key-1", key["kid"])
	assert.Equal(t, "RS256", key["alg"])
	assert.Equal(t, "sig", key["use"])
	assert.NotEmpty(t, key["n"])
	assert.NotEmpty(t, key["e"])
}
