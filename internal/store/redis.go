package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps documents as plain string keys in Redis.
// This is the key-value deployment of the contact backend.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return NewRedisStoreFromClient(client), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "contact:doc:"}
}

// Client exposes the underlying client for the rate limiter.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Name returns the backend name.
func (s *RedisStore) Name() string { return "redis" }

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// docKey returns the key holding a document.
func (s *RedisStore) docKey(name string) string {
	return s.prefix + name
}

// Load fetches the named document.
func (s *RedisStore) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.docKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: redis get %s: %w", name, err)
	}
	return data, nil
}

// Save writes all documents in a single MULTI/EXEC transaction.
func (s *RedisStore) Save(ctx context.Context, docs ...Document) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, doc := range docs {
			pipe.Set(ctx, s.docKey(doc.Name), doc.Body, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: redis save: %w", err)
	}
	return nil
}
