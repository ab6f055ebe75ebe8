// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"

	"devflink/internal/errs"
	"devflink/internal/models"
)

// SubmissionStore handles contact-form submissions.
type SubmissionStore struct {
	repo *Repository[models.ContactSubmission]
}

// NewSubmissionStore creates a SubmissionStore on the given backend.
func NewSubmissionStore(backend CollectionStore) *SubmissionStore {
	return &SubmissionStore{repo: NewRepository[models.ContactSubmission](backend, Contacts)}
}

// List returns submissions newest first, optionally restricted to one status.
func (s *SubmissionStore) List(ctx context.Context, status models.SubmissionStatus) ([]models.ContactSubmission, error) {
	var where Fields
	if status != "" {
		where = Fields{"status": status}
	}
	return s.repo.List(ctx, where)
}

// Find retrieves a submission by id. Returns nil if not found.
func (s *SubmissionStore) Find(ctx context.Context, id string) (*models.ContactSubmission, error) {
	return s.repo.Find(ctx, id)
}

// Create stores a submission as given.
func (s *SubmissionStore) Create(ctx context.Context, sub *models.ContactSubmission) (*models.ContactSubmission, error) {
	return s.repo.Create(ctx, sub)
}

// UpdateStatus moves a submission to status. Any transition is allowed.
// Returns nil if the submission does not exist.
func (s *SubmissionStore) UpdateStatus(ctx context.Context, id string, status models.SubmissionStatus) (*models.ContactSubmission, error) {
	if !status.Valid() {
		return nil, errs.Invalid("status", "status must be one of new, contacted, in_progress, completed")
	}
	return s.repo.Update(ctx, id, Fields{"status": status})
}

// Delete removes a submission, reporting whether it existed.
func (s *SubmissionStore) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}
