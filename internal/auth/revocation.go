package auth

import (
	"context"
	"sync"
	"time"
)

// RevocationStore tracks revoked token identifiers (jti). Entries only
// need to live as long as the token they belong to; implementations are
// expected to evict them once the TTL elapses.
type RevocationStore interface {
	// Add marks a jti as revoked for the given TTL and reports whether
	// a new entry was recorded. Re-adding an already revoked jti is a
	// no-op returning false, not an error.
	Add(ctx context.Context, jti string, ttl time.Duration) (bool, error)

	// IsRevoked reports whether the jti has been revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// MemoryRevocationStore is a mutex-guarded in-process RevocationStore.
// State does not survive restarts; production deployments should use the
// Redis-backed store in internal/cache instead.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time // jti -> expiry of the revocation entry
	now     func() time.Time
}

// NewMemoryRevocationStore creates an empty in-memory revocation store.
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Add marks the jti revoked until its TTL elapses. Returns false when
// the jti is already revoked or the token has already expired.
func (s *MemoryRevocationStore) Add(_ context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		// Token already expired; expiry check rejects it on its own.
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if expiry, ok := s.entries[jti]; ok && s.now().Before(expiry) {
		return false, nil
	}
	s.entries[jti] = s.now().Add(ttl)
	return true, nil
}

// IsRevoked reports whether the jti is currently revoked. Expired
// entries are removed opportunistically.
func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.RLock()
	expiry, ok := s.entries[jti]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if s.now().After(expiry) {
		s.mu.Lock()
		delete(s.entries, jti)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// Len returns the number of live revocation entries.
func (s *MemoryRevocationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
