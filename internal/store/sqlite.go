package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps documents in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/contact.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/contact.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	store := &SQLiteStore{db: db}

	// Initialize schema
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		name TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Name returns the backend name.
func (s *SQLiteStore) Name() string { return "sqlite" }

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Load retrieves a document by name.
func (s *SQLiteStore) Load(ctx context.Context, name string) ([]byte, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = ?`, name).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: sqlite load %s: %w", name, err)
	}
	return []byte(body), nil
}

// Save upserts all documents in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, docs ...Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: sqlite begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, doc := range docs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO documents (name, body, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
		`, doc.Name, string(doc.Body), now)
		if err != nil {
			return fmt.Errorf("store: sqlite save %s: %w", doc.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: sqlite commit: %w", err)
	}
	return nil
}
