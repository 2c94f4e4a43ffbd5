// Package memory provides the default in-process Store: a map guarded by a
// RWMutex with lazy expiry. Entries are only ever dropped by Delete, Clear or
// an overwriting Set; there is no eviction and no background sweep.
package memory

import (
	"context"
	"sync"

	fetchcache "github.com/rkRashik/go-fetch-cache"
)

type Store struct {
	entries map[string]*fetchcache.Entry

	lock sync.RWMutex
}

func (s *Store) Get(_ context.Context, key string) (*fetchcache.Entry, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	entry, found := s.entries[key]
	if !found {
		return nil, fetchcache.ErrNotFound
	}

	return entry, nil
}

func (s *Store) Set(_ context.Context, key string, entry *fetchcache.Entry) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.entries[key] = entry

	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.entries, key)

	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.entries = make(map[string]*fetchcache.Entry)

	return nil
}

// Len reports the number of stored entries, stale ones included.
func (s *Store) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.entries)
}

func New() *Store {
	return &Store{
		entries: make(map[string]*fetchcache.Entry),
	}
}
