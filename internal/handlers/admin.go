// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"devflink/internal/content"
	"devflink/internal/errs"
	"devflink/internal/middleware"
	"devflink/internal/models"
	"devflink/internal/respond"
	"devflink/internal/slug"
	"devflink/internal/storage"
	"devflink/internal/store"
)

// Admin groups all admin HTTP handlers and their dependencies. Every route
// is mounted behind middleware.RequireAdmin.
type Admin struct {
	posts        *store.PostStore
	jobs         *store.JobStore
	submissions  *store.SubmissionStore
	applications *store.ApplicationStore
	articles     *content.Pipeline
	storage      *storage.Client
}

// NewAdmin creates a new Admin handler group. storageClient may be nil if
// S3 is not configured.
func NewAdmin(posts *store.PostStore, jobs *store.JobStore, submissions *store.SubmissionStore, applications *store.ApplicationStore, articles *content.Pipeline, storageClient *storage.Client) *Admin {
	return &Admin{
		posts:        posts,
		jobs:         jobs,
		submissions:  submissions,
		applications: applications,
		articles:     articles,
		storage:      storageClient,
	}
}

// --- Blog posts ---

type postInput struct {
	Title     string   `json:"title"`
	Excerpt   string   `json:"excerpt"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	Featured  bool     `json:"featured"`
	Image     string   `json:"image"`
	ReadTime  string   `json:"read_time"`
	Published bool     `json:"published"`
}

// check validates the input and returns the slug derived from its title.
func (in *postInput) check() (string, error) {
	if err := validate([]string{"title", "content"},
		field{"title", in.Title, maxTitleLen},
		field{"excerpt", in.Excerpt, maxExcerptLen},
		field{"content", in.Content, maxBodyLen},
		field{"category", in.Category, maxFieldLen},
		field{"image", in.Image, maxURLLen},
		field{"read_time", in.ReadTime, maxFieldLen},
	); err != nil {
		return "", err
	}

	s := slug.Generate(in.Title)
	if s == "" {
		return "", errs.Invalid("title", "title must contain at least one letter or digit")
	}
	if in.Category == "" {
		in.Category = models.DefaultCategory
	}
	if in.ReadTime == "" {
		in.ReadTime = models.DefaultReadTime
	}
	return s, nil
}

// ListPosts returns every blog post, drafts included.
func (a *Admin) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := a.posts.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, posts)
}

// CreatePost creates a blog post. The slug comes from the title and the
// author from the logged-in admin.
func (a *Admin) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in postInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, err)
		return
	}
	s, err := in.check()
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	post, err := a.posts.Create(r.Context(), &models.BlogPost{
		Title:     in.Title,
		Slug:      s,
		Excerpt:   in.Excerpt,
		Content:   in.Content,
		Author:    middleware.PrincipalFromCtx(r.Context()).Name,
		Category:  in.Category,
		Tags:      in.Tags,
		Featured:  in.Featured,
		Image:     in.Image,
		ReadTime:  in.ReadTime,
		Published: in.Published,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	slog.Info("blog post created", "id", post.ID, "slug", post.Slug)
	respond.JSON(w, http.StatusCreated, post)
}

// UpdatePost replaces the editable fields of a blog post. The slug is
// derived again from the (possibly new) title.
func (a *Admin) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var in postInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, err)
		return
	}
	s, err := in.check()
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	post, err := a.posts.Update(r.Context(), urlParam(r, "id"), store.Fields{
		"title":     in.Title,
		"slug":      s,
		"excerpt":   in.Excerpt,
		"content":   in.Content,
		"category":  in.Category,
		"tags":      models.NormalizeTags(in.Tags),
		"featured":  in.Featured,
		"image":     in.Image,
		"read_time": in.ReadTime,
		"published": in.Published,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if post == nil {
		notFound(w, "Blog post")
		return
	}
	respond.JSON(w, http.StatusOK, post)
}

// DeletePost removes a blog post.
func (a *Admin) DeletePost(w http.ResponseWriter, r *http.Request) {
	ok, err := a.posts.Delete(r.Context(), urlParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if !ok {
		notFound(w, "Blog post")
		return
	}
	deleted(w, "Blog post")
}

// --- Job posts ---

type jobInput struct {
	Title            string         `json:"title"`
	Department       string         `json:"department"`
	Location         string         `json:"location"`
	Type             models.JobType `json:"type"`
	Experience       string         `json:"experience"`
	Salary           string         `json:"salary"`
	Description      string         `json:"description"`
	Requirements     models.Lines   `json:"requirements"`
	Responsibilities models.Lines   `json:"responsibilities"`
	Benefits         models.Lines   `json:"benefits"`
	Featured         bool           `json:"featured"`
	Urgent           bool           `json:"urgent"`
	Published        bool           `json:"published"`
}

func (in *jobInput) check() error {
	return validate([]string{"title", "department", "location", "type", "description"},
		field{"title", in.Title, maxTitleLen},
		field{"department", in.Department, maxFieldLen},
		field{"location", in.Location, maxFieldLen},
		field{"type", string(in.Type), maxFieldLen},
		field{"experience", in.Experience, maxFieldLen},
		field{"salary", in.Salary, maxFieldLen},
		field{"description", in.Description, maxBodyLen},
	)
}

func (in *jobInput) model() *models.JobPost {
	return &models.JobPost{
		Title:            in.Title,
		Department:       in.Department,
		Location:         in.Location,
		Type:             in.Type,
		Experience:       in.Experience,
		Salary:           in.Salary,
		Description:      in.Description,
		Requirements:     in.Requirements,
		Responsibilities: in.Responsibilities,
		Benefits:         in.Benefits,
		Featured:         in.Featured,
		Urgent:           in.Urgent,
		Published:        in.Published,
	}
}

// ListJobs returns every job post, drafts included.
func (a *Admin) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := a.jobs.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, jobs)
}

// CreateJob creates a job post.
func (a *Admin) CreateJob(w http.ResponseWriter, r *http.Request) {
	var in jobInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, err)
		return
	}
	if err := in.check(); err != nil {
		respond.Error(w, r, err)
		return
	}

	job, err := a.jobs.Create(r.Context(), in.model())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	slog.Info("job post created", "id", job.ID, "title", job.Title)
	respond.JSON(w, http.StatusCreated, job)
}

// UpdateJob replaces the editable fields of a job post.
func (a *Admin) UpdateJob(w http.ResponseWriter, r *http.Request) {
	var in jobInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, err)
		return
	}
	if err := in.check(); err != nil {
		respond.Error(w, r, err)
		return
	}

	fields, err := store.ToFields(in.model())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	job, err := a.jobs.Update(r.Context(), urlParam(r, "id"), fields)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if job == nil {
		notFound(w, "Job post")
		return
	}
	respond.JSON(w, http.StatusOK, job)
}

// DeleteJob removes a job post.
func (a *Admin) DeleteJob(w http.ResponseWriter, r *http.Request) {
	ok, err := a.jobs.Delete(r.Context(), urlParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if !ok {
		notFound(w, "Job post")
		return
	}
	deleted(w, "Job post")
}
