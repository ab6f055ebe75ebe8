// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"

	"devflink/internal/errs"
	"devflink/internal/models"
)

// PostStore handles blog-post persistence.
type PostStore struct {
	repo *Repository[models.BlogPost]
}

// NewPostStore creates a PostStore on the given backend.
func NewPostStore(backend CollectionStore) *PostStore {
	return &PostStore{repo: NewRepository[models.BlogPost](backend, BlogPosts)}
}

// List returns all posts, newest first.
func (s *PostStore) List(ctx context.Context) ([]models.BlogPost, error) {
	return s.repo.List(ctx, nil)
}

// ListPublished returns published posts, newest first.
func (s *PostStore) ListPublished(ctx context.Context) ([]models.BlogPost, error) {
	return s.repo.List(ctx, Fields{"published": true})
}

// Find retrieves a post by id. Returns nil if not found.
func (s *PostStore) Find(ctx context.Context, id string) (*models.BlogPost, error) {
	return s.repo.Find(ctx, id)
}

// FindBySlug retrieves a post by slug. Returns nil if not found.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	return s.repo.FindOne(ctx, Fields{"slug": slug})
}

// Create inserts a new post. It fails with errs.ErrConflict if another
// post already uses the same slug.
func (s *PostStore) Create(ctx context.Context, p *models.BlogPost) (*models.BlogPost, error) {
	if err := s.checkSlug(ctx, p.Slug, ""); err != nil {
		return nil, err
	}
	p.Tags = models.NormalizeTags(p.Tags)
	return s.repo.Create(ctx, p)
}

// Update merges fields into the post with the given id. It returns nil if
// the post does not exist, and errs.ErrConflict if fields carries a slug
// owned by a different post.
func (s *PostStore) Update(ctx context.Context, id string, fields Fields) (*models.BlogPost, error) {
	existing, err := s.repo.Find(ctx, id)
	if err != nil || existing == nil {
		return nil, err
	}
	if slug, ok := fields["slug"].(string); ok && slug != existing.Slug {
		if err := s.checkSlug(ctx, slug, id); err != nil {
			return nil, err
		}
	}
	return s.repo.Update(ctx, id, fields)
}

// Delete removes a post, reporting whether it existed.
func (s *PostStore) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}

func (s *PostStore) checkSlug(ctx context.Context, slug, ownerID string) error {
	other, err := s.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if other != nil && other.ID != ownerID {
		return errs.Conflict("slug", slug)
	}
	return nil
}
