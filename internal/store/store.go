package store

import (
	"context"
	"errors"
)

// Document names for the two persisted collections.
const (
	DocMessages = "messages"
	DocArchived = "archived"
)

// ErrNotFound is returned by Load when a document has never been written.
var ErrNotFound = errors.New("store: document not found")

// Document is a named blob holding a whole collection.
type Document struct {
	Name string
	Body []byte
}

// DocumentStore persists whole-collection documents.
// FileStore, RedisStore, SQLiteStore, PostgresStore and MemoryStore implement this interface.
type DocumentStore interface {
	// Name identifies the backend, e.g. "file" or "redis".
	Name() string

	// Connection management
	Close() error
	Ping(ctx context.Context) error

	// Load returns the full body of the named document, or ErrNotFound.
	Load(ctx context.Context, name string) ([]byte, error)

	// Save replaces every given document. Transactional backends write them
	// atomically; the others write them in the order given.
	Save(ctx context.Context, docs ...Document) error
}
