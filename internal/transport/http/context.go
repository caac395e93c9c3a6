// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

// Package http exposes the identity core over a JSON API.
package http

import (
	"context"

	"github.com/tiredprod/tiredprod/internal/auth"
)

// ctxKey is unexported so neighboring packages cannot collide with it.
type ctxKey int

const sessionKey ctxKey = iota

// withSession returns a context carrying the ephemeral session.
func withSession(ctx context.Context, sess *auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFromContext returns the ephemeral session threaded through the
// request, or nil outside the session middleware.
func SessionFromContext(ctx context.Context) *auth.Session {
	sess, _ := ctx.Value(sessionKey).(*auth.Session)
	return sess
}
