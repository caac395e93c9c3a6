// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiredprod/tiredprod/internal/auth"
	"github.com/tiredprod/tiredprod/pkg/errutil"
)

func TestRememberTokenRepository_Create(t *testing.T) {
	token := &auth.RememberToken{
		UserID:    42,
		TokenHash: "aabbcc",
		IPAddress: "203.0.113.7",
		UserAgent: "Mozilla/5.0",
		ExpiresAt: time.Now().Add(auth.RememberTokenExpiry),
	}

	t.Run("assigns generated id", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`INSERT INTO sessions`).
			WithArgs(token.UserID, token.TokenHash, token.IPAddress, token.UserAgent, token.ExpiresAt).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(9)))

		repo := NewRememberTokenRepository(mock)
		require.NoError(t, repo.Create(context.Background(), token))
		assert.Equal(t, int64(9), token.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`INSERT INTO sessions`).
			WithArgs(token.UserID, token.TokenHash, token.IPAddress, token.UserAgent, token.ExpiresAt).
			WillReturnError(errors.New("connection refused"))

		repo := NewRememberTokenRepository(mock)
		err = repo.Create(context.Background(), token)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "REMEMBER_CREATE_FAILED")
	})
}

func TestRememberTokenRepository_GetActiveByTokenHash(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		now := time.Now()
		mock.ExpectQuery(`SELECT (.+) FROM sessions\s+WHERE token_hash = \$1 AND expires_at > NOW\(\)`).
			WithArgs("aabbcc").
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "user_id", "token_hash", "ip_address", "user_agent", "expires_at", "created_at",
			}).AddRow(int64(9), int64(42), "aabbcc", "203.0.113.7", "Mozilla/5.0", now.Add(time.Hour), now))

		repo := NewRememberTokenRepository(mock)
		got, err := repo.GetActiveByTokenHash(context.Background(), "aabbcc")
		require.NoError(t, err)
		assert.Equal(t, int64(42), got.UserID)
		assert.Equal(t, "aabbcc", got.TokenHash)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("expired or absent wraps sentinel", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT (.+) FROM sessions`).
			WithArgs("aabbcc").
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "user_id", "token_hash", "ip_address", "user_agent", "expires_at", "created_at",
			}))

		repo := NewRememberTokenRepository(mock)
		_, err = repo.GetActiveByTokenHash(context.Background(), "aabbcc")
		assert.ErrorIs(t, err, auth.ErrNotFound)
		errutil.AssertErrorCode(t, err, "REMEMBER_NOT_FOUND")
	})
}

func TestRememberTokenRepository_DeleteByTokenHash(t *testing.T) {
	t.Run("deletes row", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM sessions WHERE token_hash = \$1`).
			WithArgs("aabbcc").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		repo := NewRememberTokenRepository(mock)
		require.NoError(t, repo.DeleteByTokenHash(context.Background(), "aabbcc"))
	})

	t.Run("absent row wraps sentinel", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM sessions WHERE token_hash = \$1`).
			WithArgs("aabbcc").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := NewRememberTokenRepository(mock)
		err = repo.DeleteByTokenHash(context.Background(), "aabbcc")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestRememberTokenRepository_DeleteByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// Zero rows deleted is a valid state, not an error.
	mock.ExpectExec(`DELETE FROM sessions WHERE user_id = \$1`).
		WithArgs(int64(42)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewRememberTokenRepository(mock)
	require.NoError(t, repo.DeleteByUser(context.Background(), 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRememberTokenRepository_DeleteExpired(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM sessions WHERE expires_at < \$1`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	repo := NewRememberTokenRepository(mock)
	count, err := repo.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
