package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strconv"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func allowed(rl *RateLimiter, key string) bool {
	ok, _ := rl.allow(key)
	return ok
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, 1*time.Second)
	defer rl.Stop()

	// First 3 requests should be allowed.
	for i := 0; i < 3; i++ {
		if !allowed(rl, "test-ip") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	// 4th request should be denied.
	if allowed(rl, "test-ip") {
		t.Error("4th request should be rate-limited")
	}

	// Different IP should still be allowed.
	if !allowed(rl, "other-ip") {
		t.Error("different IP should be allowed")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := NewRateLimiter(2, 100*time.Millisecond)
	defer rl.Stop()

	// Use up the limit.
	allowed(rl, "test-ip")
	allowed(rl, "test-ip")

	if allowed(rl, "test-ip") {
		t.Error("should be rate-limited")
	}

	// Wait for the window to expire.
	time.Sleep(150 * time.Millisecond)

	if !allowed(rl, "test-ip") {
		t.Error("should be allowed after window expires")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(2, 1*time.Second)
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// First 2 requests should succeed.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d, want 200", i+1, rr.Code)
		}
	}

	// 3rd request should be rate-limited.
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("got status %d, want 429", rr.Code)
	}

	retry, err := strconv.Atoi(rr.Header().Get("Retry-After"))
	if err != nil || retry < 1 || retry > 1 {
		t.Errorf("Retry-After: got %q, want 1", rr.Header().Get("Retry-After"))
	}

	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body["error"] == "" {
		t.Errorf("expected a JSON error body, got %q", rr.Body.String())
	}
}

func TestRateLimiterStopReleasesGoroutine(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := NewRateLimiter(1, time.Second)
	allowed(rl, "ip")
	rl.Stop()
	rl.Stop() // second call is harmless
}

func TestClientIP(t *testing.T) {
	proxies := []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.1/32"),
	}

	tests := []struct {
		name       string
		trusted    []netip.Prefix
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{
			name:       "no trusted proxies ignores x-forwarded-for",
			xff:        "203.0.113.9",
			remoteAddr: "198.51.100.4:1234",
			want:       "198.51.100.4",
		},
		{
			name:       "untrusted peer ignores x-real-ip",
			trusted:    proxies,
			xri:        "203.0.113.9",
			remoteAddr: "198.51.100.4:1234",
			want:       "198.51.100.4",
		},
		{
			name:       "trusted proxy single hop",
			trusted:    proxies,
			xff:        "203.0.113.9",
			remoteAddr: "192.168.1.1:1234",
			want:       "203.0.113.9",
		},
		{
			name:       "spoofed leftmost entry is skipped",
			trusted:    proxies,
			xff:        "1.2.3.4, 203.0.113.9, 10.0.0.5",
			remoteAddr: "192.168.1.1:1234",
			want:       "203.0.113.9",
		},
		{
			name:       "garbage hop falls back to peer",
			trusted:    proxies,
			xff:        "not-an-ip",
			remoteAddr: "192.168.1.1:1234",
			want:       "192.168.1.1",
		},
		{
			name:       "trusted proxy x-real-ip",
			trusted:    proxies,
			xri:        "203.0.113.10",
			remoteAddr: "10.1.2.3:1234",
			want:       "203.0.113.10",
		},
		{
			name:       "remote addr only",
			remoteAddr: "192.168.1.1:1234",
			want:       "192.168.1.1",
		},
		{
			name:       "remote addr no port",
			remoteAddr: "192.168.1.1",
			want:       "192.168.1.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			got := clientIP(req, tt.trusted)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// TestRateLimiterIgnoresRotatedForwardedFor sends every request from one
// peer with a fresh X-Forwarded-For value; the peer must still be limited.
func TestRateLimiterIgnoresRotatedForwardedFor(t *testing.T) {
	for _, trusted := range [][]netip.Prefix{nil, {netip.MustParsePrefix("10.0.0.0/8")}} {
		rl := NewRateLimiter(2, time.Minute).TrustProxies(trusted...)

		handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		passed := 0
		for i := 0; i < 20; i++ {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
			req.RemoteAddr = "198.51.100.4:40000"
			req.Header.Set("X-Forwarded-For", "203.0.113."+strconv.Itoa(i))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code == http.StatusOK {
				passed++
			}
		}
		rl.Stop()

		if passed != 2 {
			t.Errorf("trusted=%v: %d requests passed, want 2", trusted, passed)
		}
	}
}

// TestRateLimiterBehindTrustedProxy keys clients behind a trusted proxy on
// their forwarded address.
func TestRateLimiterBehindTrustedProxy(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute).TrustProxies(netip.MustParsePrefix("10.0.0.0/8"))
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(client string) int {
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.RemoteAddr = "10.0.0.2:8080"
		req.Header.Set("X-Forwarded-For", client)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := send("203.0.113.1"); code != http.StatusOK {
		t.Fatalf("first client: got %d, want 200", code)
	}
	if code := send("203.0.113.2"); code != http.StatusOK {
		t.Errorf("second client: got %d, want 200", code)
	}
	if code := send("203.0.113.1"); code != http.StatusTooManyRequests {
		t.Errorf("first client again: got %d, want 429", code)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(5, 50*time.Millisecond)
	defer rl.Stop()

	// Add some entries.
	allowed(rl, "ip1")
	allowed(rl, "ip2")

	// Wait for entries to expire.
	time.Sleep(100 * time.Millisecond)

	rl.cleanup()

	rl.mu.RLock()
	count := len(rl.clients)
	rl.mu.RUnlock()

	if count != 0 {
		t.Errorf("cleanup should remove expired entries, got %d", count)
	}
}

// TestRateLimiterCleanupRetainsRecentEntries verifies that cleanup keeps
// entries that still have recent (non-expired) timestamps.
func TestRateLimiterCleanupRetainsRecentEntries(t *testing.T) {
	rl := NewRateLimiter(10, 200*time.Millisecond)
	defer rl.Stop()

	// Add entries for two IPs.
	allowed(rl, "ip-old")
	allowed(rl, "ip-fresh")

	// Wait long enough for "ip-old" to expire.
	time.Sleep(250 * time.Millisecond)

	// Add a new entry for "ip-fresh" so it has a recent timestamp.
	allowed(rl, "ip-fresh")

	rl.cleanup()

	rl.mu.RLock()
	_, oldExists := rl.clients["ip-old"]
	_, freshExists := rl.clients["ip-fresh"]
	count := len(rl.clients)
	rl.mu.RUnlock()

	if oldExists {
		t.Error("ip-old should have been cleaned up (all timestamps expired)")
	}
	if !freshExists {
		t.Error("ip-fresh should still exist (has recent timestamp)")
	}
	if count != 1 {
		t.Errorf("expected 1 remaining client, got %d", count)
	}
}
