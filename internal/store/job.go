package store

import (
	"context"

	"devflink/internal/errs"
	"devflink/internal/models"
)

// JobStore handles job-post persistence.
type JobStore struct {
	repo *Repository[models.JobPost]
}

// NewJobStore creates a JobStore on the given backend.
func NewJobStore(backend CollectionStore) *JobStore {
	return &JobStore{repo: NewRepository[models.JobPost](backend, JobPosts)}
}

// List returns all job posts, newest first.
func (s *JobStore) List(ctx context.Context) ([]models.JobPost, error) {
	return s.repo.List(ctx, nil)
}

// ListPublished returns published job posts, newest first.
func (s *JobStore) ListPublished(ctx context.Context) ([]models.JobPost, error) {
	return s.repo.List(ctx, Fields{"published": true})
}

// Find retrieves a job post by id. Returns nil if not found.
func (s *JobStore) Find(ctx context.Context, id string) (*models.JobPost, error) {
	return s.repo.Find(ctx, id)
}

// Create inserts a new job post. The employment type must be one of
// models.JobTypes.
func (s *JobStore) Create(ctx context.Context, j *models.JobPost) (*models.JobPost, error) {
	if !j.Type.Valid() {
		return nil, errs.Invalid("type", "type must be one of Full-time, Part-time, Contract, Remote")
	}
	return s.repo.Create(ctx, j)
}

// Update merges fields into the job post with the given id. Returns nil
// if not found.
func (s *JobStore) Update(ctx context.Context, id string, fields Fields) (*models.JobPost, error) {
	if t, ok := fields["type"]; ok && !jobType(t).Valid() {
		return nil, errs.Invalid("type", "type must be one of Full-time, Part-time, Contract, Remote")
	}
	return s.repo.Update(ctx, id, fields)
}

// Delete removes a job post, reporting whether it existed.
func (s *JobStore) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}

func jobType(v any) models.JobType {
	switch t := v.(type) {
	case models.JobType:
		return t
	case string:
		return models.JobType(t)
	}
	return ""
}
