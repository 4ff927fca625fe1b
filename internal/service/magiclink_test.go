package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMagicLink(t *testing.T, store *fakeStore) (*MagicLinkService, *JWTService) {
	t.Helper()
	jwtSvc := newTestJWT(t)
	svc := NewMagicLinkService(store, jwtSvc, &fakeMailer{}, true, "localhost:5678")
	return svc, jwtSvc
}

func TestMagicLinkRequestCreatesUser(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestMagicLink(t, store)

	challenge, err := svc.Request(context.Background(), "new@x.com", "/app")
	require.NoError(t, err)
	assert.Equal(t, "token_issued", challenge.Status)
	assert.NotEmpty(t, challenge.Token)

	user, ok := store.usersByEmail["new@x.com"]
	require.True(t, ok)
	assert.Equal(t, "new", user.Name)
	assert.True(t, user.Active)
	assert.NotEmpty(t, user.MailTokenHash)
	// Only the hash is at rest, never the secret itself.
	assert.NotEqual(t, challenge.Token, user.MailTokenHash)
}

func TestMagicLinkRequestRejectsInvalidEmail(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestMagicLink(t, store)

	_, err := svc.Request(context.Background(), "not-an-email", "/")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMagicLinkReissueInvalidatesPriorSecret(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestMagicLink(t, store)
	ctx := context.Background()

	first, err := svc.Request(ctx, "alice@x.com", "/")
	require.NoError(t, err)
	second, err := svc.Request(ctx, "alice@x.com", "/")
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	_, _, err = svc.Verify(ctx, "alice@x.com", first.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = svc.Verify(ctx, "alice@x.com", second.Token)
	assert.NoError(t, err)
}

func TestMagicLinkVerifySingleUse(t *testing.T) {
	store := newFakeStore()
	svc, jwtSvc := newTestMagicLink(t, store)
	ctx := context.Background()

	challenge, err := svc.Request(ctx, "new@x.com", "/")
	require.NoError(t, err)

	sessionToken, expiresIn, err := svc.Verify(ctx, "new@x.com", challenge.Token)
	require.NoError(t, err)
	assert.Positive(t, expiresIn)

	claims, err := jwtSvc.Verify(sessionToken)
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", claims.Subject)
	assert.Equal(t, store.usersByEmail["new@x.com"].UID, claims.UserUID)
	assert.Equal(t, "new", claims.Name)

	// The secret was consumed; a replay must fail.
	assert.Empty(t, store.usersByEmail["new@x.com"].MailTokenHash)
	_, _, err = svc.Verify(ctx, "new@x.com", challenge.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestMagicLinkVerifyWrongSecretKeepsItValid(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestMagicLink(t, store)
	ctx := context.Background()

	challenge, err := svc.Request(ctx, "alice@x.com", "/")
	require.NoError(t, err)

	_, _, err = svc.Verify(ctx, "alice@x.com", "wrong-secret")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = svc.Verify(ctx, "alice@x.com", challenge.Token)
	assert.NoError(t, err)
}

func TestMagicLinkVerifyUnknownUser(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestMagicLink(t, store)

	_, _, err := svc.Verify(context.Background(), "ghost@x.com", "whatever")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestMagicLinkInactiveUserFails(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestMagicLink(t, store)
	ctx := context.Background()

	challenge, err := svc.Request(ctx, "alice@x.com", "/")
	require.NoError(t, err)

	store.usersByEmail["alice@x.com"].Active = false

	_, _, err = svc.Verify(ctx, "alice@x.com", challenge.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Request(ctx, "alice@x.com", "/")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestMagicLinkStoreFailurePropagates(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestMagicLink(t, store)
	ctx := context.Background()

	challenge, err := svc.Request(ctx, "alice@x.com", "/")
	require.NoError(t, err)

	// A broken pool must surface as-is, never as a bad credential.
	errPoolDown := errors.New("connection reset by peer")
	store.userByEmailErr = errPoolDown

	_, _, err = svc.Verify(ctx, "alice@x.com", challenge.Token)
	assert.ErrorIs(t, err, errPoolDown)
	assert.NotErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Request(ctx, "alice@x.com", "/")
	assert.ErrorIs(t, err, errPoolDown)
	assert.NotErrorIs(t, err, ErrInvalidInput)
}

func TestMagicLinkEmailDelivery(t *testing.T) {
	store := newFakeStore()
	mailer := &fakeMailer{}
	svc := NewMagicLinkService(store, newTestJWT(t), mailer, false, "auth.example.com")

	challenge, err := svc.Request(context.Background(), "alice@x.com", "/app")
	require.NoError(t, err)
	assert.Equal(t, "email_sent", challenge.Status)
	assert.Empty(t, challenge.Token)
	assert.Equal(t, []string{"alice@x.com"}, mailer.sent)
}

func TestMagicLinkDeliveryFailure(t *testing.T) {
	store := newFakeStore()
	svc := NewMagicLinkService(store, newTestJWT(t), &fakeMailer{fail: true}, false, "auth.example.com")

	_, err := svc.Request(context.Background(), "alice@x.com", "/app")
	assert.ErrorIs(t, err, ErrUpstream)
}
