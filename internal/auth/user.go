// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

package auth

import (
	"context"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/samber/oops"
)

// Role names as stored in the users table. The roles table seeds the full
// set with privilege levels; the core only distinguishes the elevated pair.
const (
	RoleAdmin        = "admin"
	RoleManager      = "manager"
	RoleStaff        = "staff"
	RolePhotographer = "photographer"
	RoleModel        = "model"
	RoleClient       = "client"
	RoleRegistered   = "registered"
	RoleGuest        = "guest"
)

// Username validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
)

// usernameRegex matches usernames that:
// - Start with a letter (a-z, A-Z)
// - Contain only letters, numbers, and underscores
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// User represents an account identity.
type User struct {
	ID            int64
	Email         string
	Username      *string
	Role          string
	AvatarURL     *string
	EmailVerified bool
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastLogin     *time.Time

	// Linked-account identifiers. Never exposed through session projections.
	GoogleID         *string
	StripeCustomerID *string
}

// IsPrivileged returns true if the user holds an elevated role.
func (u *User) IsPrivileged() bool {
	return u.Role == RoleAdmin || u.Role == RoleManager
}

// ValidateEmail checks that the address is syntactically valid and
// a bare address (no display name).
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return oops.Code("AUTH_INVALID_EMAIL").Wrap(err)
	}
	if addr.Address != email {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email must be a bare address")
	}
	return nil
}

// ValidateUsername validates a username against rules.
// Username requirements:
// - Length: MinUsernameLength to MaxUsernameLength characters
// - Must start with a letter
// - Can contain only letters (a-z, A-Z), numbers (0-9), and underscores (_)
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code("AUTH_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	if len(username) < MinUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("min", MinUsernameLength).
			Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code("AUTH_INVALID_USERNAME").
			Errorf("username must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

// NormalizeEmail lowercases and trims an address for lookups and the
// admin allow-list comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserRepository manages user persistence.
type UserRepository interface {
	// GetByID retrieves an active user by ID. Inactive accounts are
	// treated as absent and return ErrNotFound.
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail retrieves a user by email regardless of active flag.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Create stores a new user and returns the generated ID.
	Create(ctx context.Context, user *User) (int64, error)

	// SetEmailVerified marks the user's email as verified.
	SetEmailVerified(ctx context.Context, id int64) error

	// TouchLastLogin updates last_login and updated_at to now.
	TouchLastLogin(ctx context.Context, id int64) error
}
