// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"scholarsite/internal/auth"
	"scholarsite/internal/middleware"
	"scholarsite/internal/session"
)

// SessionStore is the session lifecycle the auth handlers and the session
// middleware need.
type SessionStore interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Get(ctx context.Context, r *http.Request) (*session.Data, error)
	Update(ctx context.Context, r *http.Request, data *session.Data) error
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Auth handles sign-in, sign-out and the TOTP second factor.
type Auth struct {
	auth     *auth.Service
	sessions SessionStore
}

// NewAuth creates the auth handler group.
func NewAuth(svc *auth.Service, sessions SessionStore) *Auth {
	return &Auth{auth: svc, sessions: sessions}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// meResponse describes the current session.
type meResponse struct {
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName"`
	Role          string `json:"role"`
	NeedsTOTP     bool   `json:"needsTotp"`
	Authenticated bool   `json:"authenticated"`
	CSRFToken     string `json:"csrfToken"`
}

func newMeResponse(r *http.Request, sess *session.Data) meResponse {
	return meResponse{
		UserID:        sess.UserID,
		Email:         sess.Email,
		DisplayName:   sess.DisplayName,
		Role:          sess.Role,
		NeedsTOTP:     sess.NeedsTOTP && !sess.TwoFADone,
		Authenticated: sess.Authenticated(),
		CSRFToken:     middleware.CSRFToken(r),
	}
}

// Login checks credentials and starts a session. Accounts with a second
// factor get a session that must still pass Verify.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	principal, err := a.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAuthFailed) {
			slog.Warn("login failed", "email", strings.ToLower(strings.TrimSpace(req.Email)))
		}
		writeError(w, r, err)
		return
	}

	// Drop any previous session so a fixed id cannot be reused.
	_ = a.sessions.Destroy(r.Context(), w, r)

	sess := &session.Data{
		UserID:      principal.UserID,
		Email:       principal.Email,
		DisplayName: principal.DisplayName,
		Role:        string(principal.Role),
		NeedsTOTP:   principal.NeedsTOTP,
	}
	if _, err := a.sessions.Create(r.Context(), w, sess); err != nil {
		slog.Error("session create failed", "error", err)
		writeMessage(w, http.StatusServiceUnavailable, "session store unavailable")
		return
	}

	slog.Info("user logged in", "user_id", principal.UserID, "needs_totp", principal.NeedsTOTP)
	writeJSON(w, http.StatusOK, newMeResponse(r, sess))
}

// Logout ends the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me reports the current session.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newMeResponse(r, middleware.SessionFromCtx(r.Context())))
}

// TOTPSetup starts second-factor enrollment and returns the secret and a
// QR code for authenticator apps.
func (a *Auth) TOTPSetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	enrollment, err := a.auth.BeginTOTP(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, enrollment)
}

// TOTPVerify checks a code. It completes sign-in for accounts with a
// second factor, and finishes enrollment for a pending one.
func (a *Auth) TOTPVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)

	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := a.auth.VerifyTOTP(r.Context(), sess.UserID, strings.TrimSpace(req.Code)); err != nil {
		if errors.Is(err, auth.ErrInvalidCode) {
			writeMessage(w, http.StatusUnauthorized, "invalid verification code")
			return
		}
		writeError(w, r, err)
		return
	}

	sess.NeedsTOTP = true
	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		writeMessage(w, http.StatusServiceUnavailable, "session store unavailable")
		return
	}

	slog.Info("totp verified", "user_id", sess.UserID)
	writeJSON(w, http.StatusOK, newMeResponse(r, sess))
}
