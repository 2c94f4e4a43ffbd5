// Package redis provides a Store backed by Redis, for deployments where
// several frontend replicas should share one fetch cache.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	fetchcache "github.com/rkRashik/go-fetch-cache"
	"github.com/rkRashik/go-fetch-cache/stores"
)

const defaultKeyPrefix = "fetchcache:"

// Config defines the configuration options for the Redis store.
type Config struct {
	// KeyPrefix namespaces this store's keys inside the Redis keyspace.
	// Clear only touches keys under the prefix. Defaults to "fetchcache:".
	KeyPrefix string

	// Retention is set as the Redis TTL on every entry, so Redis itself
	// garbage-collects entries too old for any plausible read-time TTL.
	// Zero means stores.DefaultRetention.
	Retention time.Duration
}

// Store implements the fetchcache.Store interface on top of a Redis client.
type Store struct {
	client redis.UniversalClient

	prefix    string
	retention time.Duration
}

// storedEntry is the JSON document persisted per cache key.
type storedEntry struct {
	Value    json.RawMessage `json:"value"`
	StoredAt time.Time       `json:"stored_at"`
}

func (s *Store) Get(ctx context.Context, key string) (*fetchcache.Entry, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fetchcache.ErrNotFound
		}
		return nil, err
	}

	var se storedEntry
	if err := json.Unmarshal(raw, &se); err != nil {
		return nil, err
	}

	return &fetchcache.Entry{Value: se.Value, StoredAt: se.StoredAt}, nil
}

func (s *Store) Set(ctx context.Context, key string, entry *fetchcache.Entry) error {
	raw, err := json.Marshal(storedEntry{Value: entry.Value, StoredAt: entry.StoredAt})
	if err != nil {
		return err
	}

	return s.client.Set(ctx, s.prefix+key, raw, s.retention).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Clear removes every entry under the store's prefix. Other keys in the
// Redis instance are left alone.
func (s *Store) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// New creates a Redis-backed store. It verifies connectivity with a ping
// before returning.
func New(ctx context.Context, client redis.UniversalClient, config *Config) (*Store, error) {
	if client == nil {
		return nil, stores.ValidationError{
			Reason: "nil client",
		}
	}

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	c := Config{}
	if config != nil {
		c = *config
	}

	if c.KeyPrefix == "" {
		c.KeyPrefix = defaultKeyPrefix
	}
	if c.Retention == 0 {
		c.Retention = stores.DefaultRetention
	}

	return &Store{
		client: client,

		prefix:    c.KeyPrefix,
		retention: c.Retention,
	}, nil
}
