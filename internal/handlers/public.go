// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"
	"time"

	"devflink/internal/content"
	"devflink/internal/respond"
	"devflink/internal/store"
)

// Public groups the read-only endpoints the marketing site calls.
type Public struct {
	posts    *store.PostStore
	jobs     *store.JobStore
	articles *content.Pipeline
}

// NewPublic creates a new Public handler group.
func NewPublic(posts *store.PostStore, jobs *store.JobStore, articles *content.Pipeline) *Public {
	return &Public{posts: posts, jobs: jobs, articles: articles}
}

// Health reports that the process is up.
func (p *Public) Health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ListPosts returns published blog posts, newest first.
func (p *Public) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := p.posts.ListPublished(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, posts)
}

// GetPost returns one published blog post by slug.
func (p *Public) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := p.posts.FindBySlug(r.Context(), urlParam(r, "slug"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if post == nil || !post.Published {
		notFound(w, "Blog post")
		return
	}
	respond.JSON(w, http.StatusOK, post)
}

// ListJobs returns published job posts, newest first.
func (p *Public) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := p.jobs.ListPublished(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, jobs)
}

// GetJob returns one published job post by id.
func (p *Public) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := p.jobs.Find(r.Context(), urlParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if job == nil || !job.Published {
		notFound(w, "Job post")
		return
	}
	respond.JSON(w, http.StatusOK, job)
}

// ListArticles returns article headers, newest first. The optional
// category, tag and featured query parameters narrow the list; when more
// than one is given they all apply.
func (p *Public) ListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		metas []content.Meta
		err   error
	)
	switch {
	case q.Get("category") != "":
		metas, err = p.articles.ByCategory(q.Get("category"))
	case q.Get("tag") != "":
		metas, err = p.articles.ByTag(q.Get("tag"))
	case q.Get("featured") == "true":
		metas, err = p.articles.Featured()
	default:
		metas, err = p.articles.AllMeta()
	}
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	out := metas[:0:0]
	for _, m := range metas {
		if tag := q.Get("tag"); tag != "" && !hasTag(m.Tags, tag) {
			continue
		}
		if q.Get("featured") == "true" && !m.Featured {
			continue
		}
		out = append(out, m)
	}
	respond.JSON(w, http.StatusOK, out)
}

// ArticleCategories returns the distinct article categories.
func (p *Public) ArticleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := p.articles.Categories()
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, categories)
}

// ArticleTags returns the distinct article tags.
func (p *Public) ArticleTags(w http.ResponseWriter, r *http.Request) {
	tags, err := p.articles.Tags()
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, tags)
}

// GetArticle returns one article with its rendered HTML.
func (p *Public) GetArticle(w http.ResponseWriter, r *http.Request) {
	post, err := p.articles.Post(urlParam(r, "slug"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if post == nil {
		notFound(w, "Article")
		return
	}
	respond.JSON(w, http.StatusOK, post)
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
