// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"devflink/internal/auth"
	"devflink/internal/middleware"
	"devflink/internal/respond"
	"devflink/internal/session"
)

// Auth handles login, logout and two-factor enrolment.
type Auth struct {
	gate     *auth.Gate
	sessions *session.Manager
}

// NewAuth creates a new Auth handler group.
func NewAuth(gate *auth.Gate, sessions *session.Manager) *Auth {
	return &Auth{gate: gate, sessions: sessions}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

// Login checks the credentials and, for users with TOTP enabled, the code.
// On success the token is set as a cookie and also returned for bearer use.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	principal, err := a.gate.Login(r.Context(), req.Email, req.Password, req.Code)
	switch {
	case errors.Is(err, auth.ErrCodeRequired), errors.Is(err, auth.ErrInvalidCode):
		respond.JSON(w, http.StatusUnauthorized, map[string]any{
			"error":         err.Error(),
			"totp_required": true,
		})
		return
	case err != nil:
		respond.Error(w, r, err)
		return
	case principal == nil:
		slog.Warn("login failed", "email", req.Email, "remote", r.RemoteAddr)
		respond.ErrorMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, data, err := a.sessions.Issue(*principal)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	a.sessions.SetCookie(w, token)

	slog.Info("user logged in", "user_id", principal.ID, "email", principal.Email)
	respond.JSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": data.ExpiresAt.UTC().Format(time.RFC3339),
		"user":       principal,
		"csrf_token": middleware.CSRFToken(r.Context()),
	})
}

// Logout revokes the current token and clears the cookie.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		if err := a.sessions.Revoke(r.Context(), sess); err != nil {
			slog.Error("revoke session failed", "error", err, "jti", sess.ID)
		}
	}
	a.sessions.ClearCookie(w)
	respond.Message(w, http.StatusOK, "Logged out")
}

// Me returns the principal of the current session.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	respond.JSON(w, http.StatusOK, map[string]any{
		"user":       sess.Principal,
		"expires_at": sess.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// SetupTOTP starts two-factor enrolment for the current user.
func (a *Auth) SetupTOTP(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromCtx(r.Context())

	enrolment, err := a.gate.BeginTOTP(r.Context(), p.ID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{
		"secret":  enrolment.Secret,
		"url":     enrolment.URL,
		"qr_code": "data:image/png;base64," + base64.StdEncoding.EncodeToString(enrolment.QRCode),
	})
}

// EnableTOTP confirms enrolment with a code from the authenticator app.
func (a *Auth) EnableTOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	p := middleware.PrincipalFromCtx(r.Context())
	err := a.gate.EnableTOTP(r.Context(), p.ID, req.Code)
	if errors.Is(err, auth.ErrInvalidCode) {
		respond.JSON(w, http.StatusBadRequest, map[string]any{
			"error":  "Invalid verification code",
			"fields": []string{"code"},
		})
		return
	}
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	slog.Info("two-factor enabled", "user_id", p.ID)
	respond.Message(w, http.StatusOK, "Two-factor authentication enabled")
}
