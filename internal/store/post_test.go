package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devflink/internal/errs"
	"devflink/internal/models"
	"devflink/internal/store"
)

func TestPostStoreCreateAndFindBySlug(t *testing.T) {
	s := store.NewPostStore(testBackend(t))
	ctx := context.Background()

	created, err := s.Create(ctx, &models.BlogPost{
		Title: "Hello World",
		Slug:  "hello-world",
		Tags:  []string{" go ", "go", "", "web"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, []string{"go", "web"}, created.Tags)

	found, err := s.FindBySlug(ctx, "hello-world")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	missing, err := s.FindBySlug(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPostStoreSlugConflict(t *testing.T) {
	s := store.NewPostStore(testBackend(t))
	ctx := context.Background()

	first, err := s.Create(ctx, &models.BlogPost{Title: "A", Slug: "same"})
	require.NoError(t, err)

	_, err = s.Create(ctx, &models.BlogPost{Title: "A again", Slug: "same"})
	assert.True(t, errors.Is(err, errs.ErrConflict), "create: %v", err)

	second, err := s.Create(ctx, &models.BlogPost{Title: "B", Slug: "other"})
	require.NoError(t, err)

	_, err = s.Update(ctx, second.ID, store.Fields{"slug": "same"})
	assert.True(t, errors.Is(err, errs.ErrConflict), "update: %v", err)

	// Re-saving a post under its own slug is not a conflict.
	updated, err := s.Update(ctx, first.ID, store.Fields{"slug": "same", "title": "A2"})
	require.NoError(t, err)
	assert.Equal(t, "A2", updated.Title)
}

func TestPostStoreListPublished(t *testing.T) {
	s := store.NewPostStore(testBackend(t))
	ctx := context.Background()

	for _, p := range []models.BlogPost{
		{Title: "Draft", Slug: "draft"},
		{Title: "Live", Slug: "live", Published: true},
	} {
		_, err := s.Create(ctx, &p)
		require.NoError(t, err)
	}

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	published, err := s.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "live", published[0].Slug)
}

func TestPostStoreUpdateAndDeleteUnknown(t *testing.T) {
	s := store.NewPostStore(testBackend(t))
	ctx := context.Background()

	got, err := s.Update(ctx, "missing", store.Fields{"title": "x"})
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err := s.Delete(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
