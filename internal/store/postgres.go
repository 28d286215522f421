package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps documents in a PostgreSQL table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool
// and makes sure the documents table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			name TEXT PRIMARY KEY,
			body JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// Name returns the backend name.
func (s *PostgresStore) Name() string { return "postgres" }

// Close closes the database connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Load retrieves a document by name.
func (s *PostgresStore) Load(ctx context.Context, name string) ([]byte, error) {
	var body []byte
	err := s.pool.QueryRow(ctx, `SELECT body::text FROM documents WHERE name = $1`, name).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: postgres load %s: %w", name, err)
	}
	return body, nil
}

// Save upserts all documents in one transaction.
func (s *PostgresStore) Save(ctx context.Context, docs ...Document) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store: postgres begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, doc := range docs {
		_, err := tx.Exec(ctx, `
			INSERT INTO documents (name, body, updated_at)
			VALUES ($1, $2::jsonb, NOW())
			ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()
		`, doc.Name, string(doc.Body))
		if err != nil {
			return fmt.Errorf("store: postgres save %s: %w", doc.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("store: postgres commit: %w", err)
	}
	return nil
}
