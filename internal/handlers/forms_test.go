// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactForm(t *testing.T) {
	env := newTestEnv(t)

	t.Run("accepted", func(t *testing.T) {
		rr := serve(t, env.forms.Contact, request{
			method: http.MethodPost,
			target: "/contact",
			body: map[string]string{
				"name":    "Grace",
				"email":   "grace@example.com",
				"message": "We need a new site.",
			},
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		assert.NotEmpty(t, decodeBody[map[string]string](t, rr)["id"])
	})

	t.Run("missing fields reported together", func(t *testing.T) {
		rr := serve(t, env.forms.Contact, request{
			method: http.MethodPost,
			target: "/contact",
			body:   map[string]string{"email": "grace@example.com", "message": "   "},
		})
		require.Equal(t, http.StatusBadRequest, rr.Code)

		body := decodeBody[validationBody](t, rr)
		assert.Equal(t, []string{"name", "message"}, body.Fields)
	})

	t.Run("malformed json", func(t *testing.T) {
		rr := serve(t, env.forms.Contact, request{
			method: http.MethodPost,
			target: "/contact",
			body:   strings.NewReader("{not json"),
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	subs, err := env.submissions.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, subs, 1, "only the valid submission is stored")
}

func TestApplyForm(t *testing.T) {
	env := newTestEnv(t)
	open := mustCreateJob(t, env, "Go Engineer", true)
	closed := mustCreateJob(t, env, "Closed Role", false)

	form := func(jobID string) map[string]string {
		return map[string]string{
			"job_id":       jobID,
			"first_name":   "Alan",
			"last_name":    "Turing",
			"email":        "alan@example.com",
			"cover_letter": "I like machines.",
			"cv_url":       "https://example.com/alan.pdf",
		}
	}

	tests := []struct {
		name  string
		jobID string
		want  int
	}{
		{"published job", open.ID, http.StatusCreated},
		{"unpublished job", closed.ID, http.StatusNotFound},
		{"unknown job", "00000000-0000-0000-0000-000000000000", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(t, env.forms.Apply, request{method: http.MethodPost, target: "/careers/apply", body: form(tt.jobID)})
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
}

func TestUploadCVWithoutStorage(t *testing.T) {
	env := newTestEnv(t)
	rr := serve(t, env.forms.UploadCV, request{method: http.MethodPost, target: "/careers/cv"})
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
