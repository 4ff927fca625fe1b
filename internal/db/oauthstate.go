package db

import (
	"context"
	"time"

	"github.com/gnosis-auth/backend/internal/model"
)

func (db *Postgres) InsertOAuthState(ctx context.Context, state, returnURL string, expiresAt time.Time) error {
	query := `
		INSERT INTO oauth_states (state, return_url, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
	`
	_, err := db.Pool.Exec(ctx, query, state, returnURL, expiresAt)
	return err
}

// ConsumeOAuthState removes and returns the state row in one step, so a
// state value can never authenticate two callbacks.
func (db *Postgres) ConsumeOAuthState(ctx context.Context, state string) (*model.OAuthState, error) {
	query := `
		DELETE FROM oauth_states
		WHERE state = $1
		RETURNING state, return_url, expires_at
	`
	var st model.OAuthState
	err := db.Pool.QueryRow(ctx, query, state).Scan(&st.State, &st.ReturnURL, &st.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// PruneOAuthStates drops expired rows left behind by abandoned logins.
func (db *Postgres) PruneOAuthStates(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM oauth_states WHERE expires_at < NOW()`)
	return err
}
