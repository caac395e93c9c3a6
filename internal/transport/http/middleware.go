// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

package http

import (
	"net"
	"net/http"
)

// clientIP extracts the caller's address. The router installs chi's RealIP
// middleware, so RemoteAddr already reflects X-Forwarded-For/X-Real-IP when
// the service sits behind a proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// withEphemeralSession loads the caller's ephemeral session, lazily creating
// one, and threads it through the request context. The session cookie is
// (re)set whenever a new session is minted.
func (h *Handler) withEphemeralSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := h.sessions.Get(cookieValue(r, SessionCookie))
		if sess == nil {
			sess = h.sessions.Create(clientIP(r), r.UserAgent())
			setSessionCookie(w, sess.ID)
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
	})
}

// RequireGate guards page routes behind the site-wide gate. API routes are
// exempt; they carry their own authentication.
func (h *Handler) RequireGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.gate.Check(cookieValue(r, GateCookie)) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "gate required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePrivileged guards admin routes. The caller must resolve through the
// ephemeral session or a remember token and hold an elevated role.
func (h *Handler) RequirePrivileged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromContext(r.Context())
		user, err := h.auth.ResolveCaller(r.Context(), sess, cookieValue(r, RememberCookie))
		if err != nil {
			h.serverError(w, "resolve caller", err)
			return
		}
		if !h.auth.IsPrivileged(user) {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
