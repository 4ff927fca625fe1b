package handler

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnosis-auth/backend/internal/config"
	"github.com/gnosis-auth/backend/internal/model"
	"github.com/gnosis-auth/backend/internal/service"
)

type fakeUserLoader struct {
	users map[string]*model.User
}

func (f *fakeUserLoader) GetUserByUID(_ context.Context, uid string) (*model.User, error) {
	if user, ok := f.users[uid]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func newTestJWTService(t *testing.T) *service.JWTService {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keyPath := filepath.Join(t.TempDir(), "private_key.pem")
	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	require.NoError(t, os.WriteFile(keyPath, pemBytes, 0o600))

	svc, err := service.NewJWTService(config.JWTConfig{
		PrivateKeyPath:    keyPath,
		KeyID:             "test-key",
		ExpirationMinutes: 30,
	})
	require.NoError(t, err)
	return svc
}

func newTestRouter(jwtSvc *service.JWTService, users userLoader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", AuthMiddleware(jwtSvc, users), func(c *gin.Context) {
		user := GetAuthUser(c)
		c.JSON(http.StatusOK, gin.H{"uid": user.UID})
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	jwtSvc := newTestJWTService(t)
	users := &fakeUserLoader{users: map[string]*model.User{
		"user-1": {UID: "user-1", Email: "alice@x.com", Active: true},
	}}
	router := newTestRouter(jwtSvc, users)

	signed, _, err := jwtSvc.Issue(service.IssueParams{Email: "alice@x.com", UserUID: "user-1"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized},
		{"valid token", "Bearer " + signed, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAuthMiddlewareInactiveUser(t *testing.T) {
	jwtSvc := newTestJWTService(t)
	users := &fakeUserLoader{users: map[string]*model.User{
		"user-1": {UID: "user-1", Email: "alice@x.com", Active: false},
	}}
	router := newTestRouter(jwtSvc, users)

	signed, _, err := jwtSvc.Issue(service.IssueParams{Email: "alice@x.com", UserUID: "user-1"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareUnknownUser(t *testing.T) {
	jwtSvc := newTestJWTService(t)
	router := newTestRouter(jwtSvc, &fakeUserLoader{users: map[string]*model.User{}})

	signed, _, err := jwtSvc.Issue(service.IssueParams{Email: "ghost@x.com", UserUID: "gone"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetAuthUserAbsent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetAuthUser(c))
}
