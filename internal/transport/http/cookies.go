// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

package http

import (
	"net/http"
	"time"

	"github.com/tiredprod/tiredprod/internal/auth"
)

// Cookie names. All cookies are http-only, secure, and root-scoped.
const (
	// GateCookie holds the raw keyed-hash gate signature. Strict: the gate
	// must never travel cross-site.
	GateCookie = "tiredprod_gate"

	// RememberCookie holds the raw remember token; only its hash is stored
	// server-side. Lax: it may survive a top-level cross-site navigation.
	RememberCookie = "tiredprod_session"

	// SessionCookie holds the ephemeral session identifier. Session-scoped,
	// no Max-Age.
	SessionCookie = "tiredprod_sid"
)

func setGateCookie(w http.ResponseWriter, signature string) {
	http.SetCookie(w, &http.Cookie{
		Name:     GateCookie,
		Value:    signature,
		Path:     "/",
		MaxAge:   int(auth.GateCookieExpiry / time.Second),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearGateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     GateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func setRememberCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RememberCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.RememberTokenExpiry / time.Second),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearRememberCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RememberCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// cookieValue returns the named cookie's value, or "" if absent.
func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
