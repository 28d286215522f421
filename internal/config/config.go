package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// defaultOrigins are the hosts the portfolio is served from.
var defaultOrigins = []string{
	"http://localhost:3001",
	"https://ai-hack-1.onrender.com",
	"http://127.0.0.1:3001",
}

// Config holds all configuration for the application.
type Config struct {
	Port string
	Env  string

	// Storage
	StoreBackend string // file, redis, sqlite, postgres, memory
	DataDir      string
	SQLitePath   string
	DatabaseURL  string
	RedisURL     string

	// HTTP
	StaticDir      string
	AllowedOrigins []string

	// Rate limiting
	RateLimitWhitelist []string // IPs or CIDRs exempt from rate limiting
	TrustedProxies     []string // IPs or CIDRs allowed to set forwarding headers
	AutoBlockEnabled   bool     // Enable auto-blocking after repeated violations
	ContactRateLimit   int
	ContactRateWindow  time.Duration
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "3001"),
		Env:              getEnv("ENV", "development"),
		StoreBackend:     strings.ToLower(getEnv("STORE_BACKEND", "file")),
		DataDir:          getEnv("DATA_DIR", "./data"),
		SQLitePath:       getEnv("SQLITE_PATH", "./data/contact.db"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		StaticDir:        os.Getenv("STATIC_DIR"),
		AllowedOrigins:   splitList(os.Getenv("ALLOWED_ORIGINS")),
		AutoBlockEnabled: getEnv("AUTO_BLOCK_ENABLED", "false") == "true",
	}

	// Parse whitelist (comma-separated IPs or CIDRs)
	cfg.RateLimitWhitelist = splitList(os.Getenv("RATE_LIMIT_WHITELIST"))
	cfg.TrustedProxies = splitList(os.Getenv("TRUSTED_PROXIES"))

	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = append([]string(nil), defaultOrigins...)
	}

	limit, err := strconv.Atoi(getEnv("CONTACT_RATE_LIMIT", "5"))
	if err != nil {
		return nil, fmt.Errorf("config: CONTACT_RATE_LIMIT: %w", err)
	}
	cfg.ContactRateLimit = limit

	window, err := time.ParseDuration(getEnv("CONTACT_RATE_WINDOW", "15m"))
	if err != nil {
		return nil, fmt.Errorf("config: CONTACT_RATE_WINDOW: %w", err)
	}
	cfg.ContactRateWindow = window

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case "file", "sqlite", "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("config: REDIS_URL is required for the redis backend")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.IsProduction() && c.StoreBackend == "memory" {
		return fmt.Errorf("config: the memory backend cannot be used in production")
	}
	if c.ContactRateLimit <= 0 {
		return fmt.Errorf("config: CONTACT_RATE_LIMIT must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}
