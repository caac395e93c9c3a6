// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

// Package auth provides the identity and session core for the site.
//
// # Domain Types
//
// Domain types (User, OTPChallenge, RememberToken, Session) should be created
// using their respective constructors:
//   - NewOTPChallenge - creates a challenge with validated email and code hash
//   - NewRememberToken - creates a remember token with validated owner and expiry
//
// Direct struct initialization bypasses validation and may create invalid
// state. Repository implementations receive pre-validated types from these
// constructors.
//
// # Services
//
// Service types coordinate domain operations:
//   - OTPService - issues and redeems one-time passcodes
//   - AuthService - caller resolution, login, logout, first-login provisioning
//   - Gate - site-wide pre-authentication via a signed cookie
//
// Services are created with New* constructors that validate dependencies.
package auth
