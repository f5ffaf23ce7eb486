package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/mageytel/mageypack-service/internal/model"
)

// SessionRepo persists login sessions (single 'token_hash' column, the
// raw token never reaches the database).
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a session row for the user with the given token hash and expiry.
func (r *SessionRepo) Create(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp)
	return err
}

// LookupUser resolves a token hash to the owning user.  Expired or unknown
// sessions yield ErrNoSession.  Expiry is checked in Go so clock handling
// stays in one place; there is no sliding expiration.
func (r *SessionRepo) LookupUser(ctx context.Context, tokenHash string) (model.User, error) {
	var (
		u         model.User
		expiresAt time.Time
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT u.id, u.email, u.password_hash, u.created_at, u.updated_at, s.expires_at
		 FROM sessions s JOIN users u ON u.id = s.user_id
		 WHERE s.token_hash=? LIMIT 1`,
		tokenHash).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt, &expiresAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNoSession
	}
	if err != nil {
		return model.User{}, err
	}
	if time.Now().UTC().After(expiresAt) {
		return model.User{}, ErrNoSession
	}
	return u, nil
}

// DeleteByHash removes the session with the given token hash.  Deleting a
// token that no longer exists is not an error.
func (r *SessionRepo) DeleteByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE token_hash=?", tokenHash)
	return err
}

// DeleteExpired prunes sessions past their expiry.  Intended for a
// housekeeping call at startup; lookups already reject expired rows.
func (r *SessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < UTC_TIMESTAMP()")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
