// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"devflink/internal/errs"
	"devflink/internal/models"
)

// PasswordCost is the bcrypt work factor for new password hashes.
var PasswordCost = 12

// UserStore handles admin account persistence.
type UserStore struct {
	repo *Repository[models.User]
}

// NewUserStore creates a UserStore on the given backend.
func NewUserStore(backend CollectionStore) *UserStore {
	return &UserStore{repo: NewRepository[models.User](backend, Users)}
}

// FindByEmail retrieves a user by exact email. Returns nil if not found.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.FindOne(ctx, Fields{"email": email})
}

// Find retrieves a user by id. Returns nil if not found.
func (s *UserStore) Find(ctx context.Context, id string) (*models.User, error) {
	return s.repo.Find(ctx, id)
}

// Count returns the number of accounts.
func (s *UserStore) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Create inserts a new user with a bcrypt-hashed password.
func (s *UserStore) Create(ctx context.Context, email, password, name string, role models.Role) (*models.User, error) {
	email = strings.TrimSpace(email)
	var missing []string
	if email == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if err := errs.Missing(missing...); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, errs.Invalid("role", "role must be admin or editor")
	}

	existing, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errs.Conflict("email", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.repo.Create(ctx, &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
	})
}

// CheckPassword compares a plaintext password against the user's hash.
func (s *UserStore) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// SetTOTPSecret stores a new, not yet enabled, TOTP secret for the user.
func (s *UserStore) SetTOTPSecret(ctx context.Context, id, secret string) error {
	u, err := s.repo.Update(ctx, id, Fields{"totp_secret": secret, "totp_enabled": false})
	if err != nil {
		return fmt.Errorf("set totp secret: %w", err)
	}
	if u == nil {
		return fmt.Errorf("set totp secret: user %s: %w", id, errs.ErrNotFound)
	}
	return nil
}

// EnableTOTP marks the user's stored TOTP secret as active.
func (s *UserStore) EnableTOTP(ctx context.Context, id string) error {
	u, err := s.repo.Update(ctx, id, Fields{"totp_enabled": true})
	if err != nil {
		return fmt.Errorf("enable totp: %w", err)
	}
	if u == nil {
		return fmt.Errorf("enable totp: user %s: %w", id, errs.ErrNotFound)
	}
	return nil
}

// EnsureAdmin provisions the bootstrap admin account when the users
// collection is empty. It reports whether an account was created.
func (s *UserStore) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	if _, err := s.Create(ctx, email, password, name, models.RoleAdmin); err != nil {
		return false, fmt.Errorf("create bootstrap admin: %w", err)
	}

	slog.Info("bootstrap admin created", "email", email)
	return true, nil
}
