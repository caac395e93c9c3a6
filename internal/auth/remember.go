// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/samber/oops"
)

// Remember-token configuration.
const (
	RememberTokenBytes  = 32                  // 32 bytes = 64 hex chars
	RememberTokenExpiry = 30 * 24 * time.Hour // 30 day expiry
)

// RememberToken is a long-lived credential that re-authenticates a caller
// without a fresh OTP. The client holds the plaintext token; only its hash
// is ever persisted. Multiple tokens per user are allowed.
type RememberToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	IPAddress string
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewRememberToken creates a validated RememberToken instance.
// IPAddress and UserAgent are optional and may be empty.
func NewRememberToken(userID int64, tokenHash, ipAddress, userAgent string, expiresAt time.Time) (*RememberToken, error) {
	if userID == 0 {
		return nil, oops.Code("REMEMBER_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if tokenHash == "" {
		return nil, oops.Code("REMEMBER_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("REMEMBER_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}

	return &RememberToken{
		UserID:    userID,
		TokenHash: tokenHash,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// IsExpired returns true if the token has expired.
func (t *RememberToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// GenerateRememberToken creates a secure random token and its hash.
// Returns (plaintext_token, sha256_hash, error).
// The plaintext token is sent to the client; the hash is stored in the
// database. A fast hash is sufficient given the token's 256 bits of entropy.
func GenerateRememberToken() (token, hash string, err error) {
	tokenBytes := make([]byte, RememberTokenBytes)
	if _, err = rand.Read(tokenBytes); err != nil {
		return "", "", oops.Code("REMEMBER_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", RememberTokenBytes).
			Wrap(err)
	}

	token = hex.EncodeToString(tokenBytes)
	hash = HashRememberToken(token)

	return token, hash, nil
}

// HashRememberToken computes the SHA256 hash of a remember token.
func HashRememberToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// VerifyRememberToken checks if the plaintext token matches the stored hash.
// Uses constant-time comparison to prevent timing attacks.
func VerifyRememberToken(token, hash string) bool {
	if token == "" || hash == "" {
		return false
	}
	computed := HashRememberToken(token)
	// Both are hex-encoded SHA256 hashes (64 chars), use constant-time compare
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}

// RememberTokenRepository manages remember-token persistence.
type RememberTokenRepository interface {
	// Create stores a new remember token.
	Create(ctx context.Context, token *RememberToken) error

	// GetActiveByTokenHash retrieves a non-expired token by its hash,
	// or ErrNotFound. Expiry is enforced at read time.
	GetActiveByTokenHash(ctx context.Context, tokenHash string) (*RememberToken, error)

	// DeleteByTokenHash removes the token with the given hash.
	DeleteByTokenHash(ctx context.Context, tokenHash string) error

	// DeleteByUser removes all tokens for a user.
	DeleteByUser(ctx context.Context, userID int64) error

	// DeleteExpired removes all expired tokens and returns the count
	// of deleted records.
	DeleteExpired(ctx context.Context) (int64, error)
}
