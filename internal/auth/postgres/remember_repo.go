// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/tiredprod/tiredprod/internal/auth"
)

// RememberTokenRepository implements auth.RememberTokenRepository using
// PostgreSQL. Tokens live in the sessions table.
type RememberTokenRepository struct {
	pool PgxPool
}

// NewRememberTokenRepository creates a new RememberTokenRepository.
func NewRememberTokenRepository(pool PgxPool) *RememberTokenRepository {
	return &RememberTokenRepository{pool: pool}
}

// Create stores a new remember token.
func (r *RememberTokenRepository) Create(ctx context.Context, token *auth.RememberToken) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO sessions (user_id, token_hash, ip_address, user_agent, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id
	`,
		token.UserID,
		token.TokenHash,
		token.IPAddress,
		token.UserAgent,
		token.ExpiresAt,
	).Scan(&token.ID)
	if err != nil {
		return oops.Code("REMEMBER_CREATE_FAILED").
			With("operation", "insert session").
			With("user_id", token.UserID).
			Wrap(err)
	}
	return nil
}

// GetActiveByTokenHash retrieves a non-expired token by its hash.
// Expired rows are inert: the expiry comparison happens here, at read time.
func (r *RememberTokenRepository) GetActiveByTokenHash(ctx context.Context, tokenHash string) (*auth.RememberToken, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, token_hash, ip_address, user_agent, expires_at, created_at
		FROM sessions
		WHERE token_hash = $1 AND expires_at > NOW()
	`, tokenHash)

	var t auth.RememberToken
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.IPAddress, &t.UserAgent, &t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("REMEMBER_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("REMEMBER_GET_BY_HASH_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}
	return &t, nil
}

// DeleteByTokenHash removes the token with the given hash.
func (r *RememberTokenRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM sessions WHERE token_hash = $1
	`, tokenHash)
	if err != nil {
		return oops.Code("REMEMBER_DELETE_FAILED").
			With("operation", "delete session by token hash").
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("REMEMBER_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	return nil
}

// DeleteByUser removes all tokens for a user.
func (r *RememberTokenRepository) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM sessions WHERE user_id = $1
	`, userID)
	if err != nil {
		return oops.Code("REMEMBER_DELETE_BY_USER_FAILED").
			With("operation", "delete sessions by user").
			With("user_id", userID).
			Wrap(err)
	}
	// No ErrNotFound if no rows deleted - that's a valid state.
	return nil
}

// DeleteExpired removes all expired tokens and returns the count.
func (r *RememberTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM sessions WHERE expires_at < $1
	`, time.Now())
	if err != nil {
		return 0, oops.Code("REMEMBER_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// Compile-time interface check.
var _ auth.RememberTokenRepository = (*RememberTokenRepository)(nil)
