package db

import (
	"context"

	"github.com/gnosis-auth/backend/internal/model"
)

const apiTokenColumns = `uid, user_uid, name, token_hash, token_display, active, expires_at, created_at`

func scanAPIToken(row interface{ Scan(...any) error }) (*model.ApiToken, error) {
	var tok model.ApiToken
	err := row.Scan(
		&tok.UID,
		&tok.UserUID,
		&tok.Name,
		&tok.TokenHash,
		&tok.TokenDisplay,
		&tok.Active,
		&tok.Expires,
		&tok.Created,
	)
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

// CreateAPIToken inserts the token row and appends it to the owner's
// membership list in one transaction, so a failure between the writes
// cannot leave an orphaned token row.
func (db *Postgres) CreateAPIToken(ctx context.Context, tok *model.ApiToken) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := `
		INSERT INTO api_tokens (uid, user_uid, name, token_hash, token_display, active, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`
	if err := tx.QueryRow(ctx, query,
		tok.UID,
		tok.UserUID,
		tok.Name,
		tok.TokenHash,
		tok.TokenDisplay,
		tok.Active,
		tok.Expires,
	).Scan(&tok.Created); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE users
		SET api_tokens = array_append(api_tokens, $2), updated_at = NOW()
		WHERE uid = $1
	`, tok.UserUID, tok.UID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (db *Postgres) GetAPITokenByUID(ctx context.Context, uid string) (*model.ApiToken, error) {
	query := `SELECT ` + apiTokenColumns + ` FROM api_tokens WHERE uid = $1`
	return scanAPIToken(db.Pool.QueryRow(ctx, query, uid))
}

func (db *Postgres) GetAPITokenByHash(ctx context.Context, tokenHash string) (*model.ApiToken, error) {
	query := `SELECT ` + apiTokenColumns + ` FROM api_tokens WHERE token_hash = $1`
	return scanAPIToken(db.Pool.QueryRow(ctx, query, tokenHash))
}

// GetAPITokensByUIDs loads the given tokens; absent uids are skipped.
// Callers reorder by their membership list.
func (db *Postgres) GetAPITokensByUIDs(ctx context.Context, uids []string) ([]*model.ApiToken, error) {
	if len(uids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + apiTokenColumns + ` FROM api_tokens WHERE uid = ANY($1)`
	rows, err := db.Pool.Query(ctx, query, uids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []*model.ApiToken
	for rows.Next() {
		tok, err := scanAPIToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, rows.Err()
}

func (db *Postgres) DeactivateAPIToken(ctx context.Context, uid string) error {
	query := `UPDATE api_tokens SET active = FALSE WHERE uid = $1`
	_, err := db.Pool.Exec(ctx, query, uid)
	return err
}

// DeleteAPIToken detaches the token from the owner's membership list and
// removes the row in one transaction; a token is never left exchangeable
// by hash after the detach.
func (db *Postgres) DeleteAPIToken(ctx context.Context, userUID, tokenUID string) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `
		UPDATE users
		SET api_tokens = array_remove(api_tokens, $2), updated_at = NOW()
		WHERE uid = $1
	`, userUID, tokenUID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM api_tokens WHERE uid = $1`, tokenUID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
