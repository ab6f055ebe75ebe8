// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"devflink/internal/storage"
)

// Storage backends selectable with STORE_BACKEND.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Development fallbacks that production refuses to run with.
const (
	devSessionSecret   = "devflink-dev-session-secret-change-me"
	devAdminPassword   = "admin123"
	devDBPassword      = "changeme"
	defaultNotifyQueue = "site_notifications"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string
	Port     string
	Env      string // "development", "production", "testing"
	LogLevel string

	// Persistence
	StoreBackend string // "file" or "postgres"
	DataDir      string
	ContentDir   string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible), used for token revocation. Disabled when
	// ValkeyHost is empty.
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Sessions
	SessionSecret string
	SessionTTL    time.Duration

	// Bootstrap admin, created when the users collection is empty.
	AdminEmail    string
	AdminPassword string
	AdminName     string

	// Notifications
	AMQPURL   string
	AMQPQueue string
	RelayURL  string

	// S3-compatible object storage
	S3 storage.Config

	CORSOrigins []string

	// TrustedProxies are the reverse proxies whose X-Forwarded-For header
	// the rate limiters believe. Empty means clients are keyed on the peer
	// address.
	TrustedProxies []netip.Prefix
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		StoreBackend: strings.ToLower(envOrDefault("STORE_BACKEND", BackendFile)),
		DataDir:      envOrDefault("DATA_DIR", "data"),
		ContentDir:   envOrDefault("CONTENT_DIR", "content/blog"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "devflink"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", devDBPassword),
		DBName:     envOrDefault("POSTGRES_DB", "devflink"),

		ValkeyHost:     os.Getenv("VALKEY_HOST"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		SessionSecret: envOrDefault("SESSION_SECRET", devSessionSecret),

		AdminEmail:    envOrDefault("ADMIN_EMAIL", "admin@devflink.com"),
		AdminPassword: envOrDefault("ADMIN_PASSWORD", devAdminPassword),
		AdminName:     envOrDefault("ADMIN_NAME", "Admin User"),

		AMQPURL:   os.Getenv("AMQP_URL"),
		AMQPQueue: envOrDefault("AMQP_QUEUE", defaultNotifyQueue),
		RelayURL:  os.Getenv("RELAY_URL"),

		S3: storage.Config{
			Endpoint:      os.Getenv("S3_ENDPOINT"),
			Region:        os.Getenv("S3_REGION"),
			AccessKey:     os.Getenv("S3_ACCESS_KEY"),
			SecretKey:     os.Getenv("S3_SECRET_KEY"),
			Bucket:        os.Getenv("S3_BUCKET"),
			PrivateBucket: os.Getenv("S3_PRIVATE_BUCKET"),
			PublicURL:     os.Getenv("S3_PUBLIC_URL"),
		},

		CORSOrigins: splitList(envOrDefault("CORS_ORIGINS", "*")),
	}

	defaultLevel := "info"
	if cfg.IsDev() {
		defaultLevel = "debug"
	}
	cfg.LogLevel = strings.ToLower(envOrDefault("LOG_LEVEL", defaultLevel))

	ttl, err := time.ParseDuration(envOrDefault("SESSION_TTL", "24h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be a positive duration, got %q", os.Getenv("SESSION_TTL"))
	}
	cfg.SessionTTL = ttl

	cfg.TrustedProxies, err = parsePrefixes(os.Getenv("TRUSTED_PROXIES"))
	if err != nil {
		return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}

	if cfg.StoreBackend != BackendFile && cfg.StoreBackend != BackendPostgres {
		return nil, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendFile, BackendPostgres, cfg.StoreBackend)
	}

	if cfg.Env == "production" {
		if cfg.SessionSecret == devSessionSecret {
			return nil, fmt.Errorf("SESSION_SECRET must be set in production")
		}
		if cfg.AdminPassword == devAdminPassword {
			return nil, fmt.Errorf("ADMIN_PASSWORD must be set in production")
		}
		if cfg.StoreBackend == BackendPostgres && cfg.DBPassword == devDBPassword {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ValkeyEnabled reports whether a Valkey host is configured.
func (c *Config) ValkeyEnabled() bool {
	return c.ValkeyHost != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitList splits a comma-separated value, trimming blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parsePrefixes reads a comma-separated list of CIDRs or bare addresses.
func parsePrefixes(s string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, item := range splitList(s) {
		if p, err := netip.ParsePrefix(item); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("%q is neither an address nor a CIDR", item)
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}
