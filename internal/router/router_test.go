// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests drive the full middleware chain and route table
// against a file-backed store.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"devflink/internal/auth"
	"devflink/internal/content"
	"devflink/internal/handlers"
	"devflink/internal/intake"
	"devflink/internal/middleware"
	"devflink/internal/models"
	"devflink/internal/session"
	"devflink/internal/store"
	"devflink/internal/store/filestore"
)

func init() {
	store.PasswordCost = bcrypt.MinCost
}

// newTestRouter builds the router over an empty file store with one
// admin and one editor account.
func newTestRouter(t *testing.T, opts Options) chi.Router {
	t.Helper()

	fs := filestore.New(t.TempDir())
	require.NoError(t, fs.Init())

	users := store.NewUserStore(fs)
	posts := store.NewPostStore(fs)
	jobs := store.NewJobStore(fs)
	contacts := store.NewSubmissionStore(fs)
	apps := store.NewApplicationStore(fs)
	articles := content.New(filepath.Join(t.TempDir(), "blog"))
	sessions := session.NewManager("router-test-secret", time.Hour, false, nil)

	ctx := context.Background()
	_, err := users.Create(ctx, "admin@devflink.test", "admin-pass", "Ada Admin", models.RoleAdmin)
	require.NoError(t, err)
	_, err = users.Create(ctx, "editor@devflink.test", "editor-pass", "Eddie Editor", models.RoleEditor)
	require.NoError(t, err)

	return New(sessions, Handlers{
		Public: handlers.NewPublic(posts, jobs, articles),
		Forms:  handlers.NewForms(intake.New(contacts, apps, jobs, nil), nil),
		Auth:   handlers.NewAuth(auth.NewGate(users), sessions),
		Admin:  handlers.NewAdmin(posts, jobs, contacts, apps, articles, nil),
	}, opts)
}

func do(t *testing.T, h http.Handler, method, target, body string, prep func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if prep != nil {
		prep(req)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// login returns the login response for the given credentials.
func login(t *testing.T, h http.Handler, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)
	return do(t, h, http.MethodPost, "/auth/login", string(body), nil)
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t, Options{})
	rr := do(t, h, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	h := newTestRouter(t, Options{})
	rr := do(t, h, http.MethodGet, "/nope", "", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rr.Body.String())
}

func TestAdminRequiresAdminRole(t *testing.T) {
	h := newTestRouter(t, Options{})

	rr := do(t, h, http.MethodGet, "/admin/posts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "anonymous")

	rr = login(t, h, "editor@devflink.test", "editor-pass")
	require.Equal(t, http.StatusOK, rr.Code)
	var editor struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &editor))

	rr = do(t, h, http.MethodGet, "/admin/posts", "", bearer(editor.Token))
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "editor")

	rr = do(t, h, http.MethodGet, "/auth/me", "", bearer(editor.Token))
	assert.Equal(t, http.StatusOK, rr.Code, "editors may still see their own session")
}

func TestAdminFlowWithBearerToken(t *testing.T) {
	h := newTestRouter(t, Options{})

	rr := login(t, h, "admin@devflink.test", "admin-pass")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))

	rr = do(t, h, http.MethodPost, "/admin/posts",
		`{"title":"Hello Router","content":"Body","published":true}`, bearer(res.Token))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodGet, "/posts/hello-router", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var post models.BlogPost
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &post))
	assert.Equal(t, "Ada Admin", post.Author)

	rr = do(t, h, http.MethodDelete, "/admin/posts/"+post.ID, "", bearer(res.Token))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Blog post deleted successfully"}`, rr.Body.String())
}

func TestCookieSessionNeedsCSRFHeader(t *testing.T) {
	h := newTestRouter(t, Options{})

	rr := login(t, h, "admin@devflink.test", "admin-pass")
	require.Equal(t, http.StatusOK, rr.Code)

	var res struct {
		CSRFToken string `json:"csrf_token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.NotEmpty(t, res.CSRFToken)

	cookies := rr.Result().Cookies()
	withCookies := func(r *http.Request) {
		for _, c := range cookies {
			r.AddCookie(c)
		}
	}

	body := `{"title":"Cookie Post","content":"Body"}`

	rr = do(t, h, http.MethodGet, "/admin/posts", "", withCookies)
	assert.Equal(t, http.StatusOK, rr.Code, "reads need no token")

	rr = do(t, h, http.MethodPost, "/admin/posts", body, withCookies)
	assert.Equal(t, http.StatusForbidden, rr.Code, "mutation without header")

	rr = do(t, h, http.MethodPost, "/admin/posts", body, func(r *http.Request) {
		withCookies(r)
		r.Header.Set(middleware.CSRFHeaderName, res.CSRFToken)
	})
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func TestPublicFormsAreRateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(2, time.Minute)
	t.Cleanup(limiter.Stop)
	h := newTestRouter(t, Options{FormLimiter: limiter})

	body := `{"name":"Grace","email":"grace@example.com","message":"Hello"}`
	for i := 0; i < 2; i++ {
		rr := do(t, h, http.MethodPost, "/contact", body, nil)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	rr := do(t, h, http.MethodPost, "/contact", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(t, Options{CORSOrigins: []string{"https://devflink.com"}})

	rr := do(t, h, http.MethodOptions, "/contact", "", func(r *http.Request) {
		r.Header.Set("Origin", "https://devflink.com")
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	})
	assert.Equal(t, "https://devflink.com", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))

	rr = do(t, h, http.MethodOptions, "/contact", "", func(r *http.Request) {
		r.Header.Set("Origin", "https://evil.example")
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	})
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
