package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devflink/internal/content"
	"devflink/internal/models"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rr := serve(t, env.public.Health, request{method: http.MethodGet, target: "/health"})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, rr)["status"])
}

func TestPublicPostsHideDrafts(t *testing.T) {
	env := newTestEnv(t)
	live := mustCreatePost(t, env, "Live Post", true)
	draft := mustCreatePost(t, env, "Draft Post", false)

	rr := serve(t, env.public.ListPosts, request{method: http.MethodGet, target: "/posts"})
	require.Equal(t, http.StatusOK, rr.Code)
	posts := decodeBody[[]models.BlogPost](t, rr)
	require.Len(t, posts, 1)
	assert.Equal(t, live.ID, posts[0].ID)

	tests := []struct {
		slug string
		want int
	}{
		{live.Slug, http.StatusOK},
		{draft.Slug, http.StatusNotFound},
		{"no-such-post", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			rr := serve(t, env.public.GetPost, request{
				method: http.MethodGet,
				target: "/posts/" + tt.slug,
				params: map[string]string{"slug": tt.slug},
			})
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestPublicJobs(t *testing.T) {
	env := newTestEnv(t)
	open := mustCreateJob(t, env, "Go Engineer", true)
	hidden := mustCreateJob(t, env, "Secret Role", false)

	rr := serve(t, env.public.ListJobs, request{method: http.MethodGet, target: "/jobs"})
	require.Equal(t, http.StatusOK, rr.Code)
	jobs := decodeBody[[]models.JobPost](t, rr)
	require.Len(t, jobs, 1)
	assert.Equal(t, open.ID, jobs[0].ID)

	rr = serve(t, env.public.GetJob, request{
		method: http.MethodGet,
		target: "/jobs/" + hidden.ID,
		params: map[string]string{"id": hidden.ID},
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Job post not found", decodeBody[map[string]string](t, rr)["error"])
}

func TestPublicArticles(t *testing.T) {
	env := newTestEnv(t)
	for _, in := range []content.Input{
		{Title: "Go Tips", Content: "# Tips", Category: "Engineering", Tags: []string{"go", "tips"}, Featured: true, Date: "2026-03-01"},
		{Title: "Design Notes", Content: "Notes", Category: "Design", Tags: []string{"ux"}, Date: "2026-02-01"},
		{Title: "More Go", Content: "More", Category: "Engineering", Tags: []string{"Go"}, Date: "2026-01-01"},
	} {
		_, err := env.articles.CreatePost(in)
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all newest first", "", []string{"go-tips", "design-notes", "more-go"}},
		{"by category", "?category=engineering", []string{"go-tips", "more-go"}},
		{"by tag", "?tag=go", []string{"go-tips", "more-go"}},
		{"featured", "?featured=true", []string{"go-tips"}},
		{"category and tag", "?category=Engineering&tag=tips", []string{"go-tips"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(t, env.public.ListArticles, request{method: http.MethodGet, target: "/articles" + tt.query})
			require.Equal(t, http.StatusOK, rr.Code)

			var slugs []string
			for _, m := range decodeBody[[]content.Meta](t, rr) {
				slugs = append(slugs, m.Slug)
			}
			assert.Equal(t, tt.want, slugs)
		})
	}

	rr := serve(t, env.public.ArticleCategories, request{method: http.MethodGet, target: "/articles/categories"})
	assert.Equal(t, []string{"Design", "Engineering"}, decodeBody[[]string](t, rr))

	rr = serve(t, env.public.GetArticle, request{
		method: http.MethodGet,
		target: "/articles/go-tips",
		params: map[string]string{"slug": "go-tips"},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, decodeBody[map[string]any](t, rr)["html"], "<h1")

	rr = serve(t, env.public.GetArticle, request{
		method: http.MethodGet,
		target: "/articles/missing",
		params: map[string]string{"slug": "missing"},
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
