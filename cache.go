package fetchcache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("cache entry not found")
)

// Entry is a single cached fetch result. Entries are immutable once stored:
// a fresh fetch always produces a new Entry, it never mutates an existing one.
// Freshness is judged lazily at read time against the caller's TTL, so stores
// persist StoredAt verbatim and never decide staleness themselves.
type Entry struct {
	Value    json.RawMessage
	StoredAt time.Time
}

// Store is the persistence contract for cached fetch results. Implementations
// live under stores/ and must be safe for concurrent use.
//
// Get returns ErrNotFound when no entry exists for the key. Delete on an
// absent key is a no-op, not an error.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
