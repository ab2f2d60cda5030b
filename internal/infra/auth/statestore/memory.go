// Package statestore provides the in-process backing store for pending
// OAuth state entries. The StateStore interface is the seam for swapping
// in a shared store when the service runs multi-instance.
package statestore

import (
	"sync"
	"time"

	"pentrack/internal/domain/service"
)

// memoryStore holds pending entries in a mutex-guarded map.
type memoryStore struct {
	mu      sync.Mutex
	entries map[string]service.OAuthState
}

// NewMemoryStore is the constructor for memoryStore.
func NewMemoryStore() service.StateStore {
	return &memoryStore{
		entries: make(map[string]service.OAuthState),
	}
}

// Put records a pending state entry under its opaque key.
func (s *memoryStore) Put(key string, state service.OAuthState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = state
}

// TakeOnce atomically retrieves and deletes the entry for key. Holding the
// lock across lookup and delete guarantees at most one caller can claim a key.
func (s *memoryStore) TakeOnce(key string) (service.OAuthState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.entries[key]
	if !ok {
		return service.OAuthState{}, false
	}
	delete(s.entries, key)

	return state, true
}

// SweepExpired removes entries older than the TTL and returns the count.
func (s *memoryStore) SweepExpired(now time.Time, ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, state := range s.entries {
		if state.Expired(now, ttl) {
			delete(s.entries, key)
			removed++
		}
	}

	return removed
}
