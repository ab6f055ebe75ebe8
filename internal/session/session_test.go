package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devflink/internal/models"
)

var admin = models.Principal{ID: "u-1", Email: "admin@devflink.test", Name: "Admin", Role: models.RoleAdmin}

// testValkeyClient returns a client on the test Valkey, skipping the test
// when Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15, // isolate from dev data
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, keyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("test-secret", time.Hour, false, nil)

	token, issued, err := m.Issue(admin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := m.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, admin, got.Principal)
	assert.Equal(t, issued.ID, got.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), got.ExpiresAt, 5*time.Second)
}

func TestVerifyRejects(t *testing.T) {
	m := NewManager("test-secret", time.Hour, false, nil)
	token, _, err := m.Issue(admin)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewManager("other-secret", time.Hour, false, nil)
		_, err := other.Verify(context.Background(), token)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("expired", func(t *testing.T) {
		later := NewManager("test-secret", time.Hour, false, nil)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Verify(context.Background(), token)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Verify(context.Background(), "not.a.token")
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("unsigned", func(t *testing.T) {
		none := jwt.NewWithClaims(jwt.SigningMethodNone, claims{
			Role: models.RoleAdmin,
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "x",
				Subject:   "u-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		raw, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Verify(context.Background(), raw)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("no expiry", func(t *testing.T) {
		forever := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
			RegisteredClaims: jwt.RegisteredClaims{ID: "x", Subject: "u-1"},
		})
		raw, err := forever.SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = m.Verify(context.Background(), raw)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})
}

func TestRevokeWithoutValkeyIsNoop(t *testing.T) {
	m := NewManager("test-secret", time.Hour, false, nil)
	token, data, err := m.Issue(admin)
	require.NoError(t, err)

	require.NoError(t, m.Revoke(context.Background(), data))
	_, err = m.Verify(context.Background(), token)
	assert.NoError(t, err)
}

func TestRevokeWithValkey(t *testing.T) {
	client := testValkeyClient(t)
	m := NewManager("test-secret", time.Hour, false, client)
	ctx := context.Background()

	token, data, err := m.Issue(admin)
	require.NoError(t, err)
	_, err = m.Verify(ctx, token)
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, data))
	_, err = m.Verify(ctx, token)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	ttl, err := client.TTL(ctx, keyPrefix+data.ID).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Hour)
}

func TestCookies(t *testing.T) {
	m := NewManager("test-secret", 2*time.Hour, true, nil)

	w := httptest.NewRecorder()
	m.SetCookie(w, "abc")
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, "abc", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, 7200, cookies[0].MaxAge)

	w = httptest.NewRecorder()
	m.ClearCookie(w)
	cookies = w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		cookie     string
		wantToken  string
		wantBearer bool
	}{
		{"none", "", "", "", false},
		{"bearer", "Bearer tok-h", "", "tok-h", true},
		{"cookie", "", "tok-c", "tok-c", false},
		{"header wins", "Bearer tok-h", "tok-c", "tok-h", true},
		{"other scheme falls back to cookie", "Basic abc", "tok-c", "tok-c", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookie})
			}
			token, bearer := TokenFromRequest(r)
			assert.Equal(t, tt.wantToken, token)
			assert.Equal(t, tt.wantBearer, bearer)
		})
	}
}
