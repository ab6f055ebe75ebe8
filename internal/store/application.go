// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"

	"devflink/internal/errs"
	"devflink/internal/models"
)

// ApplicationStore handles job applications.
type ApplicationStore struct {
	repo *Repository[models.JobApplication]
}

// NewApplicationStore creates an ApplicationStore on the given backend.
func NewApplicationStore(backend CollectionStore) *ApplicationStore {
	return &ApplicationStore{repo: NewRepository[models.JobApplication](backend, Applications)}
}

// List returns applications newest first. Empty jobID or status match all.
func (s *ApplicationStore) List(ctx context.Context, jobID string, status models.ApplicationStatus) ([]models.JobApplication, error) {
	where := Fields{}
	if jobID != "" {
		where["job_id"] = jobID
	}
	if status != "" {
		where["status"] = status
	}
	return s.repo.List(ctx, where)
}

// Find retrieves an application by id. Returns nil if not found.
func (s *ApplicationStore) Find(ctx context.Context, id string) (*models.JobApplication, error) {
	return s.repo.Find(ctx, id)
}

// Create stores an application as given.
func (s *ApplicationStore) Create(ctx context.Context, a *models.JobApplication) (*models.JobApplication, error) {
	return s.repo.Create(ctx, a)
}

// UpdateStatus moves an application through the hiring pipeline.
// Returns nil if the application does not exist.
func (s *ApplicationStore) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) (*models.JobApplication, error) {
	if !status.Valid() {
		return nil, errs.Invalid("status", "status must be one of new, reviewed, interview, rejected, hired")
	}
	return s.repo.Update(ctx, id, Fields{"status": status})
}

// Delete removes an application, reporting whether it existed.
func (s *ApplicationStore) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}
