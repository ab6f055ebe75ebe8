// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"devflink/internal/models"
	"devflink/internal/respond"
	"devflink/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SessionKey is the context key for the verified session.
	SessionKey contextKey = "session"

	csrfKey contextKey = "csrf"
)

// LoadSession verifies the session token carried by the request, if any,
// and stores the result in the request context. It does not enforce
// authentication; requests with a missing or invalid token continue
// anonymously.
func LoadSession(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _ := session.TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			data, err := sessions.Verify(r.Context(), token)
			if err != nil {
				if !errors.Is(err, session.ErrInvalidToken) {
					slog.Error("session verify failed", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), data)))
		})
	}
}

// RequireAuth answers 401 unless a session was loaded.
// Must be applied after LoadSession in the middleware chain.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromCtx(r.Context()) == nil {
			respond.ErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin answers 401 unless the session belongs to an admin.
// Must be applied after LoadSession.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !PrincipalFromCtx(r.Context()).IsAdmin() {
			respond.ErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithSession returns a copy of ctx carrying data.
func WithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, SessionKey, data)
}

// SessionFromCtx extracts the session from the request context.
// Returns nil if no session is loaded (user is not authenticated).
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}

// PrincipalFromCtx returns the authenticated principal, or nil.
func PrincipalFromCtx(ctx context.Context) *models.Principal {
	if data := SessionFromCtx(ctx); data != nil {
		return &data.Principal
	}
	return nil
}
