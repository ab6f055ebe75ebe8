// Package session issues and verifies signed session tokens. A token is an
// HS256 JWT carrying the principal; it travels either in an HttpOnly
// cookie or in an Authorization: Bearer header. When a Valkey client is
// configured, logout adds the token id to a revocation list that lives
// until the token would have expired anyway.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"devflink/internal/models"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "df_session"

	// DefaultTTL is how long an issued token stays valid.
	DefaultTTL = 24 * time.Hour

	// keyPrefix namespaces revoked token ids in Valkey.
	keyPrefix = "revoked:"
)

// ErrInvalidToken is returned for tokens that are malformed, expired,
// wrongly signed or revoked.
var ErrInvalidToken = errors.New("invalid session token")

// Data is the verified content of a session token.
type Data struct {
	ID        string
	Principal models.Principal
	ExpiresAt time.Time
}

type claims struct {
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs, verifies and revokes session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	client *redis.Client
	now    func() time.Time
}

// NewManager creates a Manager. client may be nil, in which case logout
// only clears the cookie and tokens stay valid until they expire.
func NewManager(secret string, ttl time.Duration, secure bool, client *redis.Client) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		client: client,
		now:    time.Now,
	}
}

// TTL returns the lifetime of issued tokens.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for p.
func (m *Manager) Issue(p models.Principal) (string, *Data, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	id := uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: p.Email,
		Name:  p.Name,
		Role:  p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}
	return signed, &Data{ID: id, Principal: p, ExpiresAt: exp}, nil
}

// Verify parses and checks a token, including the revocation list when
// Valkey is configured.
func (m *Manager) Verify(ctx context.Context, raw string) (*Data, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.ID == "" || c.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject or id", ErrInvalidToken)
	}

	if m.client != nil {
		n, err := m.client.Exists(ctx, keyPrefix+c.ID).Result()
		if err != nil {
			return nil, fmt.Errorf("session revocation check: %w", err)
		}
		if n > 0 {
			return nil, fmt.Errorf("%w: revoked", ErrInvalidToken)
		}
	}

	return &Data{
		ID: c.ID,
		Principal: models.Principal{
			ID:    c.Subject,
			Email: c.Email,
			Name:  c.Name,
			Role:  c.Role,
		},
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

// Revoke blocks the token id until its expiry. Without Valkey it does
// nothing.
func (m *Manager) Revoke(ctx context.Context, d *Data) error {
	if m.client == nil || d == nil {
		return nil
	}
	ttl := d.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	if err := m.client.Set(ctx, keyPrefix+d.ID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("session revoke: %w", err)
	}
	return nil
}

// SetCookie writes the session cookie carrying token.
func (m *Manager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl.Seconds()),
	})
}

// ClearCookie expires the session cookie immediately.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// TokenFromRequest returns the raw token from the Authorization header or,
// failing that, the session cookie. The second result reports whether the
// token came from the header.
func TokenFromRequest(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok && token != "" {
			return strings.TrimSpace(token), true
		}
	}
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value, false
	}
	return "", false
}
