// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"
)

// OTPService issues and redeems one-time passcode challenges.
type OTPService struct {
	challenges OTPRepository
}

// NewOTPService creates a new OTPService.
func NewOTPService(challenges OTPRepository) (*OTPService, error) {
	if challenges == nil {
		return nil, oops.Code("OTP_SERVICE_INVALID").Errorf("challenge repository is required")
	}
	return &OTPService{challenges: challenges}, nil
}

// Issue generates a code for the email, stores its hash with a fresh expiry,
// and invalidates every prior challenge for that email. The plaintext code is
// returned for out-of-band delivery; this service never sends it anywhere.
func (s *OTPService) Issue(ctx context.Context, email, ipAddress string) (string, error) {
	code, err := GenerateOTPCode()
	if err != nil {
		return "", oops.Code("OTP_ISSUE_FAILED").
			With("operation", "GenerateOTPCode").
			Wrap(err)
	}

	hash, err := HashOTPCode(code)
	if err != nil {
		return "", oops.Code("OTP_ISSUE_FAILED").
			With("operation", "HashOTPCode").
			Wrap(err)
	}

	challenge, err := NewOTPChallenge(email, hash, ipAddress, time.Now().Add(OTPExpiry))
	if err != nil {
		return "", oops.Code("OTP_ISSUE_FAILED").
			With("operation", "NewOTPChallenge").
			Wrap(err)
	}

	if err := s.challenges.Replace(ctx, challenge); err != nil {
		return "", oops.Code("OTP_ISSUE_FAILED").
			With("operation", "Replace").
			Wrap(err)
	}

	return code, nil
}

// Redeem verifies a code against the live challenge for the email.
//
// The attempt counter is incremented unconditionally before verification,
// including on the call that succeeds, and the ceiling is checked against
// the count as loaded. The code is compared exactly as received.
// On success the challenge is deleted, so an immediate repeat fails with
// OTP_CHALLENGE_NOT_FOUND.
func (s *OTPService) Redeem(ctx context.Context, email, code string) error {
	challenge, err := s.challenges.LatestActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("OTP_CHALLENGE_NOT_FOUND").Errorf("code expired or not found")
		}
		return oops.Code("OTP_REDEEM_FAILED").
			With("operation", "LatestActiveByEmail").
			Wrap(err)
	}

	if challenge.AttemptsExhausted() {
		return oops.Code("OTP_TOO_MANY_ATTEMPTS").
			With("attempts", challenge.Attempts).
			Errorf("too many attempts")
	}

	if err := s.challenges.IncrementAttempts(ctx, challenge.ID); err != nil {
		return oops.Code("OTP_REDEEM_FAILED").
			With("operation", "IncrementAttempts").
			Wrap(err)
	}

	if !VerifyOTPCode(code, challenge.CodeHash) {
		return oops.Code("OTP_INVALID_CODE").Errorf("invalid code")
	}

	// Delete after verify. Two concurrent redemptions of the correct code
	// may both land here before either delete commits; the atomic counter
	// stays monotonic and the holder of the correct code logs in twice,
	// so the race is tolerated.
	if err := s.challenges.Delete(ctx, challenge.ID); err != nil {
		return oops.Code("OTP_REDEEM_FAILED").
			With("operation", "Delete").
			Wrap(err)
	}

	return nil
}
