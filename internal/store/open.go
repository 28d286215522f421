package store

import (
	"context"
	"fmt"
)

// Options selects and configures a backend.
type Options struct {
	Backend     string // file, redis, sqlite, postgres, memory
	DataDir     string
	SQLitePath  string
	DatabaseURL string
	RedisURL    string
}

// Open connects to the backend named in opts.
func Open(ctx context.Context, opts Options) (DocumentStore, error) {
	switch opts.Backend {
	case "", "file":
		return NewFileStore(opts.DataDir)
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(ctx, opts.SQLitePath)
	case "redis":
		if opts.RedisURL == "" {
			return nil, fmt.Errorf("store: redis backend requires REDIS_URL")
		}
		return NewRedisStore(ctx, opts.RedisURL)
	case "postgres":
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("store: postgres backend requires DATABASE_URL")
		}
		return NewPostgresStore(ctx, opts.DatabaseURL)
	default:
		return nil, fmt.Errorf("store: unknown backend %q", opts.Backend)
	}
}
