// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/samber/oops"
)

// GateCookieExpiry is how long a passed gate stays valid client-side.
const GateCookieExpiry = 30 * 24 * time.Hour

// Gate is the site-wide pre-authentication barrier. It is a pure function of
// configuration: passing the gate yields an HMAC signature the client holds
// as a cookie, and checking recomputes and compares it. No server-side state.
type Gate struct {
	passphrase []byte
	secret     []byte
}

// NewGate creates a Gate from the configured passphrase and signing secret.
func NewGate(passphrase, secret string) (*Gate, error) {
	if passphrase == "" {
		return nil, oops.Code("GATE_INVALID_CONFIG").Errorf("gate passphrase is required")
	}
	if secret == "" {
		return nil, oops.Code("GATE_INVALID_CONFIG").Errorf("gate secret is required")
	}
	return &Gate{
		passphrase: []byte(passphrase),
		secret:     []byte(secret),
	}, nil
}

// Verify compares the supplied passphrase against the configured one in
// constant time. On match it returns the signature to set as the gate cookie
// and true; on mismatch it returns "" and false.
func (g *Gate) Verify(passphrase string) (string, bool) {
	// Digest both sides first so the comparison is constant-time even for
	// inputs of differing length.
	supplied := sha256.Sum256([]byte(passphrase))
	expected := sha256.Sum256(g.passphrase)
	if subtle.ConstantTimeCompare(supplied[:], expected[:]) != 1 {
		return "", false
	}
	return g.Signature(), true
}

// Check recomputes the expected signature and compares it, constant-time,
// against the presented cookie value. An absent cookie fails.
func (g *Gate) Check(cookieValue string) bool {
	if cookieValue == "" {
		return false
	}
	expected := g.Signature()
	// Both are hex-encoded HMAC-SHA256 values of fixed length.
	return subtle.ConstantTimeCompare([]byte(cookieValue), []byte(expected)) == 1
}

// Signature returns the keyed hash of the passphrase under the gate secret.
// This is the exact value stored client-side; nothing is persisted server-side.
func (g *Gate) Signature() string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write(g.passphrase)
	return hex.EncodeToString(mac.Sum(nil))
}
