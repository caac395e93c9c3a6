// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP surface of the identity service. Every route
// runs under the ephemeral-session middleware so handlers can assume a
// session is present in the request context.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(h.withEphemeralSession)

	r.Route("/api", func(r chi.Router) {
		r.Post("/gate/verify", h.handleGateVerify)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/request-otp", h.handleRequestOTP)
			r.Post("/verify-otp", h.handleVerifyOTP)
			r.Post("/logout", h.handleLogout)
			r.Get("/session", h.handleSession)
		})
	})

	return r
}
