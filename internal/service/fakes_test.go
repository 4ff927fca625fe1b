package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gnosis-auth/backend/internal/model"
)

// fakeStore is an in-memory stand-in for db.Postgres covering every
// store interface the services consume. The err fields inject a
// non-sentinel failure into the matching lookup, standing in for a
// broken pool.
type fakeStore struct {
	usersByEmail map[string]*model.User
	usersByUID   map[string]*model.User
	tokens       map[string]*model.ApiToken
	tokensByHash map[string]*model.ApiToken
	states       map[string]*model.OAuthState

	userByEmailErr error
	tokenByHashErr error
	createTokenErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		usersByEmail: make(map[string]*model.User),
		usersByUID:   make(map[string]*model.User),
		tokens:       make(map[string]*model.ApiToken),
		tokensByHash: make(map[string]*model.ApiToken),
		states:       make(map[string]*model.OAuthState),
	}
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	if f.userByEmailErr != nil {
		return nil, f.userByEmailErr
	}
	if user, ok := f.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStore) GetUserByUID(_ context.Context, uid string) (*model.User, error) {
	if user, ok := f.usersByUID[uid]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStore) CreateUser(_ context.Context, uid, email, name string) (*model.User, error) {
	user := &model.User{
		UID:     uid,
		Email:   email,
		Name:    name,
		Active:  true,
		Created: time.Now(),
	}
	f.usersByEmail[email] = user
	f.usersByUID[uid] = user
	return user, nil
}

func (f *fakeStore) SetMailToken(_ context.Context, uid, tokenHash string) error {
	if user, ok := f.usersByUID[uid]; ok {
		user.MailTokenHash = tokenHash
	}
	return nil
}

func (f *fakeStore) ClearMailToken(ctx context.Context, uid string) error {
	return f.SetMailToken(ctx, uid, "")
}

func (f *fakeStore) CreateAPIToken(_ context.Context, tok *model.ApiToken) error {
	if f.createTokenErr != nil {
		return f.createTokenErr
	}
	tok.Created = time.Now()
	f.tokens[tok.UID] = tok
	f.tokensByHash[tok.TokenHash] = tok
	if user, ok := f.usersByUID[tok.UserUID]; ok {
		user.APITokens = append(user.APITokens, tok.UID)
	}
	return nil
}

func (f *fakeStore) GetAPITokenByUID(_ context.Context, uid string) (*model.ApiToken, error) {
	if tok, ok := f.tokens[uid]; ok {
		return tok, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStore) GetAPITokenByHash(_ context.Context, tokenHash string) (*model.ApiToken, error) {
	if f.tokenByHashErr != nil {
		return nil, f.tokenByHashErr
	}
	if tok, ok := f.tokensByHash[tokenHash]; ok {
		return tok, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStore) GetAPITokensByUIDs(_ context.Context, uids []string) ([]*model.ApiToken, error) {
	var out []*model.ApiToken
	for _, uid := range uids {
		if tok, ok := f.tokens[uid]; ok {
			out = append(out, tok)
		}
	}
	return out, nil
}

func (f *fakeStore) DeactivateAPIToken(_ context.Context, uid string) error {
	if tok, ok := f.tokens[uid]; ok {
		tok.Active = false
	}
	return nil
}

func (f *fakeStore) DeleteAPIToken(_ context.Context, userUID, tokenUID string) error {
	if user, ok := f.usersByUID[userUID]; ok {
		kept := user.APITokens[:0]
		for _, uid := range user.APITokens {
			if uid != tokenUID {
				kept = append(kept, uid)
			}
		}
		user.APITokens = kept
	}
	if tok, ok := f.tokens[tokenUID]; ok {
		delete(f.tokensByHash, tok.TokenHash)
		delete(f.tokens, tokenUID)
	}
	return nil
}

func (f *fakeStore) InsertOAuthState(_ context.Context, state, returnURL string, expiresAt time.Time) error {
	f.states[state] = &model.OAuthState{State: state, ReturnURL: returnURL, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeStore) ConsumeOAuthState(_ context.Context, state string) (*model.OAuthState, error) {
	st, ok := f.states[state]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	delete(f.states, state)
	return st, nil
}

type fakeMailer struct {
	sent []string
	fail bool
}

func (m *fakeMailer) SendLoginLink(_ context.Context, email, _, _ string) error {
	if m.fail {
		return context.DeadlineExceeded
	}
	m.sent = append(m.sent, email)
	return nil
}
