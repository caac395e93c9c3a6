// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

package http

import (
	"time"

	"github.com/tiredprod/tiredprod/internal/auth"
)

// Typed request/response shapes. Request bodies carry only the fields the
// identity core needs; nothing reads ambient string-keyed maps.

type gateVerifyRequest struct {
	Password string `json:"password"`
}

type requestOTPRequest struct {
	Email string `json:"email"`
}

type requestOTPResponse struct {
	Success   bool    `json:"success"`
	IsNewUser bool    `json:"isNewUser"`
	Message   string  `json:"message"`
	DebugOTP  *string `json:"debug_otp,omitempty"`
}

type verifyOTPRequest struct {
	Email    string `json:"email"`
	OTP      string `json:"otp"`
	Username string `json:"username,omitempty"`
	Remember bool   `json:"remember,omitempty"`
}

type verifyOTPResponse struct {
	Success    bool   `json:"success"`
	IdentityID int64  `json:"identityId"`
	Redirect   string `json:"redirect"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// userProjection is the identity shape exposed by /api/auth/session.
// Linked-account fields (Google, Stripe) are deliberately absent.
type userProjection struct {
	ID            int64      `json:"id"`
	Email         string     `json:"email"`
	Username      *string    `json:"username"`
	Role          string     `json:"role"`
	AvatarURL     *string    `json:"avatar_url"`
	EmailVerified bool       `json:"email_verified"`
	LastLogin     *time.Time `json:"last_login"`
}

type sessionResponse struct {
	Authenticated bool            `json:"authenticated"`
	User          *userProjection `json:"user,omitempty"`
}

func projectUser(u *auth.User) *userProjection {
	return &userProjection{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		Role:          u.Role,
		AvatarURL:     u.AvatarURL,
		EmailVerified: u.EmailVerified,
		LastLogin:     u.LastLogin,
	}
}
