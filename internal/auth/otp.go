// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

package auth

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// OTP configuration.
const (
	// OTPCodeLength is the number of characters in a generated code.
	OTPCodeLength = 6

	// OTPCodeAlphabet excludes visually ambiguous characters (0/O, 1/I/L).
	OTPCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

	// OTPExpiry is how long an issued challenge stays redeemable.
	OTPExpiry = 10 * time.Minute

	// OTPMaxAttempts is the attempt ceiling per challenge. Once reached,
	// redemption is rejected regardless of code correctness.
	OTPMaxAttempts = 5

	// otpBcryptCost keeps verification in the tens-of-milliseconds range,
	// sized to resist brute force on a 6-character code.
	otpBcryptCost = 10
)

// OTPChallenge represents an outstanding one-time passcode for an email.
// At most one challenge per email is live; issuing a new one supersedes
// all previous ones.
type OTPChallenge struct {
	ID        int64
	Email     string
	CodeHash  string
	Attempts  int
	IPAddress string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewOTPChallenge creates a validated OTPChallenge instance.
// IPAddress is optional and may be empty.
func NewOTPChallenge(email, codeHash, ipAddress string, expiresAt time.Time) (*OTPChallenge, error) {
	if email == "" {
		return nil, oops.Code("OTP_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if codeHash == "" {
		return nil, oops.Code("OTP_INVALID_HASH").Errorf("code hash cannot be empty")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("OTP_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}

	return &OTPChallenge{
		Email:     email,
		CodeHash:  codeHash,
		IPAddress: ipAddress,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// IsExpired returns true if the challenge has expired.
func (c *OTPChallenge) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// AttemptsExhausted returns true if the attempt ceiling has been reached.
func (c *OTPChallenge) AttemptsExhausted() bool {
	return c.Attempts >= OTPMaxAttempts
}

// GenerateOTPCode creates a random human-enterable code from the unambiguous
// alphabet using a cryptographically secure source.
func GenerateOTPCode() (string, error) {
	alphabetLen := big.NewInt(int64(len(OTPCodeAlphabet)))
	code := make([]byte, OTPCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", oops.Code("OTP_GENERATE_FAILED").
				With("operation", "crypto/rand.Int").
				Wrap(err)
		}
		code[i] = OTPCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// HashOTPCode computes an adaptive-cost bcrypt hash of the code.
// Deliberately slow: the code has low entropy, so the hash carries the cost.
func HashOTPCode(code string) (string, error) {
	if code == "" {
		return "", oops.Code("OTP_EMPTY_CODE").Errorf("code cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), otpBcryptCost)
	if err != nil {
		return "", oops.Code("OTP_HASH_FAILED").Wrap(err)
	}
	return string(hash), nil
}

// VerifyOTPCode checks if the code matches the stored hash. The code is
// compared exactly as received; any normalization is the caller's business.
// bcrypt comparison does not leak timing proportional to matching characters.
func VerifyOTPCode(code, hash string) bool {
	if code == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}

// OTPRepository manages OTP challenge persistence.
type OTPRepository interface {
	// Replace deletes all challenges for the email of the given challenge,
	// then inserts it. Last write wins under concurrent issuance.
	Replace(ctx context.Context, challenge *OTPChallenge) error

	// LatestActiveByEmail retrieves the most recent non-expired challenge
	// for the email, or ErrNotFound.
	LatestActiveByEmail(ctx context.Context, email string) (*OTPChallenge, error)

	// IncrementAttempts atomically adds one to the attempt counter.
	IncrementAttempts(ctx context.Context, id int64) error

	// Delete removes a challenge by ID.
	Delete(ctx context.Context, id int64) error

	// DeleteExpired removes all expired challenges and returns the count
	// of deleted records.
	DeleteExpired(ctx context.Context) (int64, error)
}
