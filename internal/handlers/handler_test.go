// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for the handler
// tests. They run against a file-backed store and an article directory in
// a temp dir, so no external service is needed.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"devflink/internal/auth"
	"devflink/internal/content"
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

// testEnv bundles the stores and handler groups of one test.
type testEnv struct {
	users        *store.UserStore
	posts        *store.PostStore
	jobs         *store.JobStore
	submissions  *store.SubmissionStore
	applications *store.ApplicationStore
	articles     *content.Pipeline
	sessions     *session.Manager

	public *Public
	forms  *Forms
	auth   *Auth
	admin  *Admin
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fs := filestore.New(t.TempDir())
	require.NoError(t, fs.Init())

	env := &testEnv{
		users:        store.NewUserStore(fs),
		posts:        store.NewPostStore(fs),
		jobs:         store.NewJobStore(fs),
		submissions:  store.NewSubmissionStore(fs),
		applications: store.NewApplicationStore(fs),
		articles:     content.New(filepath.Join(t.TempDir(), "blog")),
		sessions:     session.NewManager("test-secret", time.Hour, false, nil),
	}
	env.public = NewPublic(env.posts, env.jobs, env.articles)
	env.forms = NewForms(intake.New(env.submissions, env.applications, env.jobs, nil), nil)
	env.auth = NewAuth(auth.NewGate(env.users), env.sessions)
	env.admin = NewAdmin(env.posts, env.jobs, env.submissions, env.applications, env.articles, nil)
	return env
}

// adminSession is the session used for authenticated admin requests.
func adminSession(id string) *session.Data {
	return &session.Data{
		ID: "test-jti",
		Principal: models.Principal{
			ID:    id,
			Email: "admin@devflink.test",
			Name:  "Ada Admin",
			Role:  models.RoleAdmin,
		},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

// request describes one handler invocation.
type request struct {
	method string
	target string
	body   any
	params map[string]string
	sess   *session.Data
}

// serve runs h for req and returns the recorder. Bodies that are not
// already an io.Reader are encoded as JSON.
func serve(t *testing.T, h http.HandlerFunc, req request) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	switch b := req.body.(type) {
	case nil:
	case io.Reader:
		body = b
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	r := httptest.NewRequest(req.method, req.target, body)
	if len(req.params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range req.params {
			rctx.URLParams.Add(k, v)
		}
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	if req.sess != nil {
		r = r.WithContext(middleware.WithSession(r.Context(), req.sess))
	}

	rr := httptest.NewRecorder()
	h(rr, r)
	return rr
}

// validationBody is the shape of a 400 response.
type validationBody struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}

// decodeBody decodes the recorder's JSON body into a value of type T.
func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

func mustCreatePost(t *testing.T, env *testEnv, title string, published bool) *models.BlogPost {
	t.Helper()
	rr := serve(t, env.admin.CreatePost, request{
		method: http.MethodPost,
		target: "/admin/posts",
		body:   map[string]any{"title": title, "content": "Body of " + title, "published": published},
		sess:   adminSession("u-1"),
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	post := decodeBody[models.BlogPost](t, rr)
	return &post
}

func mustCreateJob(t *testing.T, env *testEnv, title string, published bool) *models.JobPost {
	t.Helper()
	job, err := env.jobs.Create(context.Background(), &models.JobPost{
		Title:       title,
		Department:  "Engineering",
		Location:    "Remote",
		Type:        models.JobFullTime,
		Description: "Build things.",
		Published:   published,
	})
	require.NoError(t, err)
	return job
}
