// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth is the credential gate for the admin area: password
// checks against the users collection and the optional TOTP second factor.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"devflink/internal/errs"
	"devflink/internal/models"
	"devflink/internal/store"
)

// Issuer names the site in authenticator apps.
const Issuer = "Dev Flink"

var (
	// ErrCodeRequired is returned by Login when the user has TOTP enabled
	// and sent no code.
	ErrCodeRequired = errors.New("verification code required")

	// ErrInvalidCode is returned when a TOTP code does not verify.
	ErrInvalidCode = errors.New("invalid verification code")
)

// Users is the subset of store.UserStore the gate needs.
type Users interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Find(ctx context.Context, id string) (*models.User, error)
	CheckPassword(user *models.User, password string) bool
	SetTOTPSecret(ctx context.Context, id, secret string) error
	EnableTOTP(ctx context.Context, id string) error
}

var _ Users = (*store.UserStore)(nil)

// Gate checks admin credentials.
type Gate struct {
	users Users
}

// NewGate creates a Gate over the given user store.
func NewGate(users Users) *Gate {
	return &Gate{users: users}
}

// Authorize returns the principal for a matching email and password, or
// nil when either is wrong. Unknown emails and wrong passwords are not
// told apart.
func (g *Gate) Authorize(ctx context.Context, email, password string) (*models.Principal, error) {
	user, err := g.check(ctx, email, password)
	if err != nil || user == nil {
		return nil, err
	}
	return user.Principal(), nil
}

// Login is Authorize followed by the second factor for users who enabled
// it. Bad credentials still yield nil, nil; a missing or wrong code yields
// ErrCodeRequired or ErrInvalidCode.
func (g *Gate) Login(ctx context.Context, email, password, code string) (*models.Principal, error) {
	user, err := g.check(ctx, email, password)
	if err != nil || user == nil {
		return nil, err
	}
	if user.TOTPEnabled {
		if strings.TrimSpace(code) == "" {
			return nil, ErrCodeRequired
		}
		if !g.VerifySecondFactor(user, code) {
			return nil, ErrInvalidCode
		}
	}
	return user.Principal(), nil
}

func (g *Gate) check(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, nil
	}

	user, err := g.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("authorize: %w", err)
	}
	if user == nil || !g.users.CheckPassword(user, password) {
		return nil, nil
	}
	return user, nil
}

// VerifySecondFactor checks code against the user's TOTP secret. Users
// without TOTP enabled pass unconditionally.
func (g *Gate) VerifySecondFactor(user *models.User, code string) bool {
	if !user.TOTPEnabled {
		return true
	}
	return user.TOTPSecret != "" && totp.Validate(strings.TrimSpace(code), user.TOTPSecret)
}

// Enrolment is a freshly generated, not yet enabled, TOTP secret.
type Enrolment struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
	QRCode []byte `json:"qr_code"` // PNG
}

// BeginTOTP generates and stores a new TOTP secret for the user. It stays
// inactive until EnableTOTP confirms a code from it.
func (g *Gate) BeginTOTP(ctx context.Context, userID string) (*Enrolment, error) {
	user, err := g.users.Find(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("totp setup: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("totp setup: user %s: %w", userID, errs.ErrNotFound)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      Issuer,
		AccountName: user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("totp generate: %w", err)
	}

	if err := g.users.SetTOTPSecret(ctx, user.ID, key.Secret()); err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("totp qr code: %w", err)
	}

	return &Enrolment{Secret: key.Secret(), URL: key.URL(), QRCode: png}, nil
}

// EnableTOTP turns on the second factor after checking a code against
// the pending secret.
func (g *Gate) EnableTOTP(ctx context.Context, userID, code string) error {
	user, err := g.users.Find(ctx, userID)
	if err != nil {
		return fmt.Errorf("totp enable: %w", err)
	}
	if user == nil {
		return fmt.Errorf("totp enable: user %s: %w", userID, errs.ErrNotFound)
	}
	if user.TOTPSecret == "" {
		return errs.Invalid("code", "start two-factor setup first")
	}
	if !totp.Validate(strings.TrimSpace(code), user.TOTPSecret) {
		return ErrInvalidCode
	}
	return g.users.EnableTOTP(ctx, user.ID)
}
