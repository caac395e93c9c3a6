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

// OTPRepository implements auth.OTPRepository using PostgreSQL.
type OTPRepository struct {
	pool PgxPool
}

// NewOTPRepository creates a new OTPRepository.
func NewOTPRepository(pool PgxPool) *OTPRepository {
	return &OTPRepository{pool: pool}
}

// Replace deletes all challenges for the challenge's email, then inserts it.
// The two statements are deliberately separate: concurrent issuance may
// transiently leave two rows, and the later delete-then-insert wins.
func (r *OTPRepository) Replace(ctx context.Context, challenge *auth.OTPChallenge) error {
	if _, err := r.pool.Exec(ctx, `
		DELETE FROM otp_codes WHERE email = $1
	`, challenge.Email); err != nil {
		return oops.Code("OTP_REPLACE_FAILED").
			With("operation", "delete prior challenges").
			Wrap(err)
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO otp_codes (email, code_hash, attempts, ip_address, expires_at, created_at)
		VALUES ($1, $2, 0, $3, $4, NOW())
		RETURNING id
	`,
		challenge.Email,
		challenge.CodeHash,
		challenge.IPAddress,
		challenge.ExpiresAt,
	).Scan(&challenge.ID)
	if err != nil {
		return oops.Code("OTP_REPLACE_FAILED").
			With("operation", "insert challenge").
			Wrap(err)
	}
	return nil
}

// LatestActiveByEmail retrieves the most recent non-expired challenge.
func (r *OTPRepository) LatestActiveByEmail(ctx context.Context, email string) (*auth.OTPChallenge, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, code_hash, attempts, ip_address, expires_at, created_at
		FROM otp_codes
		WHERE email = $1 AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT 1
	`, email)

	var c auth.OTPChallenge
	err := row.Scan(&c.ID, &c.Email, &c.CodeHash, &c.Attempts, &c.IPAddress, &c.ExpiresAt, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("OTP_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("OTP_GET_BY_EMAIL_FAILED").
			With("operation", "get challenge by email").
			Wrap(err)
	}
	return &c, nil
}

// IncrementAttempts atomically adds one to the attempt counter. The
// increment happens in the database so concurrent redemptions cannot
// lose updates.
func (r *OTPRepository) IncrementAttempts(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE otp_codes SET attempts = attempts + 1 WHERE id = $1
	`, id)
	if err != nil {
		return oops.Code("OTP_INCREMENT_FAILED").
			With("operation", "increment attempts").
			With("id", id).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("OTP_NOT_FOUND").
			With("id", id).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// Delete removes a challenge by ID.
func (r *OTPRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM otp_codes WHERE id = $1
	`, id)
	if err != nil {
		return oops.Code("OTP_DELETE_FAILED").
			With("operation", "delete challenge").
			With("id", id).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("OTP_NOT_FOUND").
			With("id", id).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// DeleteExpired removes all expired challenges and returns the count.
func (r *OTPRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM otp_codes WHERE expires_at < $1
	`, time.Now())
	if err != nil {
		return 0, oops.Code("OTP_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired challenges").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// Compile-time interface check.
var _ auth.OTPRepository = (*OTPRepository)(nil)
