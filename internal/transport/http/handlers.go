// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tired Productions Contributors

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/samber/oops"

	"github.com/tiredprod/tiredprod/internal/auth"
	"github.com/tiredprod/tiredprod/internal/observability"
	"github.com/tiredprod/tiredprod/pkg/errutil"
)

// Handler implements the identity API endpoints.
type Handler struct {
	gate     *auth.Gate
	otp      *auth.OTPService
	auth     *auth.AuthService
	sessions *auth.SessionManager
	metrics  *observability.Metrics
	logger   *slog.Logger

	// debug echoes issued codes in responses. Development only; code
	// delivery is out-of-band and never part of the production contract.
	debug bool
}

// NewHandler creates a Handler. All dependencies are required.
func NewHandler(gate *auth.Gate, otp *auth.OTPService, authSvc *auth.AuthService, sessions *auth.SessionManager, metrics *observability.Metrics, logger *slog.Logger, debug bool) (*Handler, error) {
	if gate == nil || otp == nil || authSvc == nil || sessions == nil || metrics == nil {
		return nil, oops.Code("HANDLER_INVALID").Errorf("gate, otp, auth, sessions, and metrics are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		gate:     gate,
		otp:      otp,
		auth:     authSvc,
		sessions: sessions,
		metrics:  metrics,
		logger:   logger,
		debug:    debug,
	}, nil
}

// handleGateVerify checks the shared passphrase and, on success, sets the
// signed gate cookie.
func (h *Handler) handleGateVerify(w http.ResponseWriter, r *http.Request) {
	var req gateVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	signature, ok := h.gate.Verify(req.Password)
	if !ok {
		h.metrics.GateAttemptsTotal.WithLabelValues("failure").Inc()
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid password"})
		return
	}

	h.metrics.GateAttemptsTotal.WithLabelValues("success").Inc()
	setGateCookie(w, signature)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// handleRequestOTP issues a challenge for the email. The code goes out of
// band; this handler only logs it (and echoes it in debug mode).
func (h *Handler) handleRequestOTP(w http.ResponseWriter, r *http.Request) {
	var req requestOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	email := auth.NormalizeEmail(req.Email)
	if err := auth.ValidateEmail(email); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid email"})
		return
	}

	isNewUser, err := h.auth.IsNewEmail(r.Context(), email)
	if err != nil {
		h.serverError(w, "check email", err)
		return
	}

	code, err := h.otp.Issue(r.Context(), email, clientIP(r))
	if err != nil {
		h.serverError(w, "issue challenge", err)
		return
	}
	h.metrics.OTPIssuedTotal.Inc()

	// Out-of-band delivery hook. The mailer is an external collaborator;
	// until it is wired, operators read the code from the log.
	h.logger.Info("otp issued", "email", email, "code", code)

	resp := requestOTPResponse{
		Success:   true,
		IsNewUser: isNewUser,
		Message:   "OTP sent to your email",
	}
	if h.debug {
		resp.DebugOTP = &code
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleVerifyOTP redeems a challenge, provisioning the identity on first
// login, and establishes the authenticated session.
func (h *Handler) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	email := auth.NormalizeEmail(req.Email)
	// The UI presents codes uppercase; normalize here. The core compares
	// exactly what it is given.
	code := strings.ToUpper(strings.TrimSpace(req.OTP))

	if auth.ValidateEmail(email) != nil || code == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing email or OTP"})
		return
	}

	if err := h.otp.Redeem(r.Context(), email, code); err != nil {
		switch errutil.CodeOf(err) {
		case "OTP_CHALLENGE_NOT_FOUND":
			h.metrics.OTPRedemptionTotal.WithLabelValues("not_found").Inc()
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "OTP expired or not found"})
		case "OTP_TOO_MANY_ATTEMPTS":
			h.metrics.OTPRedemptionTotal.WithLabelValues("rate_limited").Inc()
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "Too many attempts"})
		case "OTP_INVALID_CODE":
			h.metrics.OTPRedemptionTotal.WithLabelValues("invalid").Inc()
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid OTP"})
		default:
			h.serverError(w, "redeem challenge", err)
		}
		return
	}
	h.metrics.OTPRedemptionTotal.WithLabelValues("success").Inc()

	var username *string
	if req.Username != "" {
		username = &req.Username
	}
	user, err := h.auth.ProvisionUser(r.Context(), email, username)
	if err != nil {
		if errutil.CodeOf(err) == "AUTH_INVALID_USERNAME" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid username"})
			return
		}
		h.serverError(w, "provision user", err)
		return
	}

	sess := SessionFromContext(r.Context())
	fresh, rememberToken, err := h.auth.Login(r.Context(), sess, user.ID, req.Remember, clientIP(r), r.UserAgent())
	if err != nil {
		h.serverError(w, "login", err)
		return
	}
	h.metrics.LoginsTotal.WithLabelValues(boolLabel(req.Remember)).Inc()

	setSessionCookie(w, fresh.ID)
	if rememberToken != "" {
		setRememberCookie(w, rememberToken)
	}

	writeJSON(w, http.StatusOK, verifyOTPResponse{
		Success:    true,
		IdentityID: user.ID,
		Redirect:   "/",
	})
}

// handleLogout destroys the ephemeral session and revokes the presented
// remember token.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if err := h.auth.Logout(r.Context(), sess, cookieValue(r, RememberCookie)); err != nil {
		h.serverError(w, "logout", err)
		return
	}

	clearRememberCookie(w)
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// handleSession reports the resolved caller, if any.
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	wasAuthenticated := sess.Authenticated()

	user, err := h.auth.ResolveCaller(r.Context(), sess, cookieValue(r, RememberCookie))
	if err != nil {
		h.serverError(w, "resolve caller", err)
		return
	}
	if user == nil {
		writeJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
		return
	}
	if !wasAuthenticated {
		// The session was promoted by a remember token mid-resolution.
		h.metrics.TokenReauthsTotal.Inc()
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Authenticated: true,
		User:          projectUser(user),
	})
}

// serverError logs the cause and answers generically, without leaking
// internals to the client.
func (h *Handler) serverError(w http.ResponseWriter, operation string, err error) {
	errutil.LogError(h.logger, operation+" failed", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // response write error means the client went away
	json.NewEncoder(w).Encode(v)
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
