// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"devflink/internal/content"
	"devflink/internal/middleware"
	"devflink/internal/respond"
)

func checkArticle(in *content.Input) error {
	return validate([]string{"title", "content"},
		field{"title", in.Title, maxTitleLen},
		field{"excerpt", in.Excerpt, maxExcerptLen},
		field{"content", in.Content, maxBodyLen},
		field{"author", in.Author, maxFieldLen},
		field{"category", in.Category, maxFieldLen},
		field{"image", in.Image, maxURLLen},
		field{"read_time", in.ReadTime, maxFieldLen},
		field{"date", in.Date, maxFieldLen},
	)
}

// ListArticles returns every article header.
func (a *Admin) ListArticles(w http.ResponseWriter, r *http.Request) {
	metas, err := a.articles.AllMeta()
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, metas)
}

// CreateArticle writes a new markdown article. The author defaults to the
// logged-in admin.
func (a *Admin) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var in content.Input
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, err)
		return
	}
	if err := checkArticle(&in); err != nil {
		respond.Error(w, r, err)
		return
	}
	if in.Author == "" {
		in.Author = middleware.PrincipalFromCtx(r.Context()).Name
	}

	s, err := a.articles.CreatePost(in)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]string{"slug": s})
}

// UpdateArticle rewrites an article in place. Its slug never changes.
func (a *Admin) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	var in content.Input
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, err)
		return
	}
	if err := checkArticle(&in); err != nil {
		respond.Error(w, r, err)
		return
	}

	s := urlParam(r, "slug")
	ok, err := a.articles.UpdatePost(s, in)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if !ok {
		notFound(w, "Article")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"slug": s})
}

// DeleteArticle removes an article file.
func (a *Admin) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	ok, err := a.articles.DeletePost(urlParam(r, "slug"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if !ok {
		notFound(w, "Article")
		return
	}
	deleted(w, "Article")
}
