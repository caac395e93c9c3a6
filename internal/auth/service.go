// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// AuthService resolves callers, drives login/logout, and provisions
// first-time identities.
type AuthService struct {
	users       UserRepository
	tokens      RememberTokenRepository
	sessions    *SessionManager
	adminEmails map[string]struct{}
	logger      *slog.Logger
}

// NewAuthService creates a new AuthService. adminEmails is the injected
// allow-list of addresses elevated to admin at first login; it may be empty.
func NewAuthService(users UserRepository, tokens RememberTokenRepository, sessions *SessionManager, adminEmails []string) (*AuthService, error) {
	return NewAuthServiceWithLogger(users, tokens, sessions, adminEmails, slog.Default())
}

// NewAuthServiceWithLogger creates a new AuthService with an explicit logger.
func NewAuthServiceWithLogger(users UserRepository, tokens RememberTokenRepository, sessions *SessionManager, adminEmails []string, logger *slog.Logger) (*AuthService, error) {
	if users == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("users repository is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("tokens repository is required")
	}
	if sessions == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("session manager is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("logger is required")
	}

	allow := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		if normalized := NormalizeEmail(email); normalized != "" {
			allow[normalized] = struct{}{}
		}
	}

	return &AuthService{
		users:       users,
		tokens:      tokens,
		sessions:    sessions,
		adminEmails: allow,
		logger:      logger,
	}, nil
}

// ResolveCaller resolves the identity behind a request.
//
// If the ephemeral session references an identity, that identity is loaded
// (active accounts only). Otherwise, a present remember token is hashed and
// looked up; on a hit the session is re-established with the token's owner.
// Returns (nil, nil) for an unauthenticated caller.
func (s *AuthService) ResolveCaller(ctx context.Context, sess *Session, rememberToken string) (*User, error) {
	if sess == nil {
		return nil, oops.Code("AUTH_RESOLVE_FAILED").Errorf("session is required")
	}

	if sess.Authenticated() {
		user, err := s.users.GetByID(ctx, sess.UserID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// Deactivated or deleted since login.
				return nil, nil
			}
			return nil, oops.Code("AUTH_RESOLVE_FAILED").
				With("operation", "GetByID").
				Wrap(err)
		}
		return user, nil
	}

	if rememberToken == "" {
		return nil, nil
	}

	token, err := s.tokens.GetActiveByTokenHash(ctx, HashRememberToken(rememberToken))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, oops.Code("AUTH_RESOLVE_FAILED").
			With("operation", "GetActiveByTokenHash").
			Wrap(err)
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, oops.Code("AUTH_RESOLVE_FAILED").
			With("operation", "GetByID").
			Wrap(err)
	}

	// Silent re-authentication: promote the session for the rest of its life.
	sess.UserID = user.ID
	sess.LoginTime = time.Now()
	if err := s.sessions.Update(sess); err != nil {
		return nil, oops.Code("AUTH_RESOLVE_FAILED").
			With("operation", "Update session").
			Wrap(err)
	}

	s.logger.Info("caller re-authenticated from remember token", "user_id", user.ID)
	return user, nil
}

// Login binds the identity to the ephemeral session, regenerating the
// session identifier to prevent fixation, and updates last-login. When
// remember is true it mints a remember token and returns its plaintext for
// cookie delivery; otherwise the returned token is empty.
func (s *AuthService) Login(ctx context.Context, sess *Session, userID int64, remember bool, ipAddress, userAgent string) (*Session, string, error) {
	if sess == nil {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").Errorf("session is required")
	}
	if userID == 0 {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").Errorf("user ID cannot be zero")
	}

	fresh, err := s.sessions.Regenerate(sess.ID)
	if err != nil {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "Regenerate").
			Wrap(err)
	}

	fresh.UserID = userID
	fresh.LoginTime = time.Now()
	fresh.IPAddress = ipAddress
	fresh.UserAgent = userAgent
	if err := s.sessions.Update(fresh); err != nil {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "Update session").
			Wrap(err)
	}

	var plaintext string
	if remember {
		token, hash, err := GenerateRememberToken()
		if err != nil {
			return nil, "", oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "GenerateRememberToken").
				Wrap(err)
		}
		row, err := NewRememberToken(userID, hash, ipAddress, userAgent, time.Now().Add(RememberTokenExpiry))
		if err != nil {
			return nil, "", oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "NewRememberToken").
				Wrap(err)
		}
		if err := s.tokens.Create(ctx, row); err != nil {
			return nil, "", oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "Create remember token").
				Wrap(err)
		}
		plaintext = token
	}

	// Best effort, login succeeds regardless.
	if err := s.users.TouchLastLogin(ctx, userID); err != nil {
		s.logger.Warn("failed to update last login", "user_id", userID, "error", err)
	}

	s.logger.Info("user logged in", "user_id", userID, "remember", remember)
	return fresh, plaintext, nil
}

// Logout deletes the remember-token row matching the presented cookie, if
// any, and unconditionally destroys the ephemeral session.
func (s *AuthService) Logout(ctx context.Context, sess *Session, rememberToken string) error {
	if rememberToken != "" {
		err := s.tokens.DeleteByTokenHash(ctx, HashRememberToken(rememberToken))
		if err != nil && !errors.Is(err, ErrNotFound) {
			return oops.Code("AUTH_LOGOUT_FAILED").
				With("operation", "DeleteByTokenHash").
				Wrap(err)
		}
	}

	if sess != nil {
		s.sessions.Destroy(sess.ID)
	}
	return nil
}

// IsNewEmail reports whether no identity exists yet for the email.
func (s *AuthService) IsNewEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, ErrNotFound) {
		return true, nil
	}
	return false, oops.Code("AUTH_LOOKUP_FAILED").
		With("operation", "GetByEmail").
		Wrap(err)
}

// IsPrivileged reports whether the resolved identity holds an elevated role.
func (s *AuthService) IsPrivileged(user *User) bool {
	return user != nil && user.IsPrivileged()
}

// ProvisionUser finds the identity for an email, creating it on first login.
// New identities get the default role, or admin if the email is on the
// injected allow-list, and are created email-verified (OTP redemption proved
// ownership). Existing unverified identities are marked verified.
func (s *AuthService) ProvisionUser(ctx context.Context, email string, username *string) (*User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		if !user.EmailVerified {
			if err := s.users.SetEmailVerified(ctx, user.ID); err != nil {
				return nil, oops.Code("AUTH_PROVISION_FAILED").
					With("operation", "SetEmailVerified").
					Wrap(err)
			}
			user.EmailVerified = true
		}
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("AUTH_PROVISION_FAILED").
			With("operation", "GetByEmail").
			Wrap(err)
	}

	name := username
	if name == nil || *name == "" {
		generated, err := defaultUsername()
		if err != nil {
			return nil, oops.Code("AUTH_PROVISION_FAILED").
				With("operation", "defaultUsername").
				Wrap(err)
		}
		name = &generated
	} else if err := ValidateUsername(*name); err != nil {
		return nil, err
	}

	role := RoleRegistered
	if _, ok := s.adminEmails[NormalizeEmail(email)]; ok {
		role = RoleAdmin
	}

	user = &User{
		Email:         email,
		Username:      name,
		Role:          role,
		EmailVerified: true,
		IsActive:      true,
	}
	id, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, oops.Code("AUTH_PROVISION_FAILED").
			With("operation", "Create").
			Wrap(err)
	}
	user.ID = id

	s.logger.Info("provisioned new user", "user_id", id, "role", role)
	return user, nil
}

// defaultUsername builds a "user_xxxxxx" placeholder for identities created
// without a chosen username.
func defaultUsername() (string, error) {
	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		return "", oops.Code("AUTH_USERNAME_GENERATE_FAILED").Wrap(err)
	}
	return "user_" + hex.EncodeToString(suffix), nil
}
