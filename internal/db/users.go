package db

import (
	"context"

	"github.com/gnosis-auth/backend/internal/model"
)

const userColumns = `uid, email, name, active, mail_token_hash, api_tokens, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.UID,
		&user.Email,
		&user.Name,
		&user.Active,
		&user.MailTokenHash,
		&user.APITokens,
		&user.Created,
		&user.Updated,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Postgres) CreateUser(ctx context.Context, uid, email, name string) (*model.User, error) {
	query := `
		INSERT INTO users (uid, email, name, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING ` + userColumns
	return scanUser(db.Pool.QueryRow(ctx, query, uid, email, name))
}

func (db *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, email))
}

func (db *Postgres) GetUserByUID(ctx context.Context, uid string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, uid))
}

// SetMailToken overwrites the outstanding magic-link secret hash,
// invalidating any previously issued, unconsumed secret.
func (db *Postgres) SetMailToken(ctx context.Context, uid, tokenHash string) error {
	query := `
		UPDATE users
		SET mail_token_hash = $2, updated_at = NOW()
		WHERE uid = $1
	`
	_, err := db.Pool.Exec(ctx, query, uid, tokenHash)
	return err
}

// ClearMailToken consumes the outstanding magic-link secret.
func (db *Postgres) ClearMailToken(ctx context.Context, uid string) error {
	return db.SetMailToken(ctx, uid, "")
}
