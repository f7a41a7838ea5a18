package cache

import (
	"context"
	"fmt"
	"time"
)

// revokedKeyPrefix is the Redis key prefix for revoked token ids.
const revokedKeyPrefix = "auth:revoked:"

// RevocationCache is a Redis-backed revocation store. Each revoked jti
// is stored with a TTL equal to the remaining token lifetime, so the set
// is bounded and survives process restarts.
//
// It implements auth.RevocationStore.
type RevocationCache struct {
	cache *Cache
}

// NewRevocationCache creates a RevocationCache on top of the shared
// Redis client.
func NewRevocationCache(cache *Cache) *RevocationCache {
	return &RevocationCache{cache: cache}
}

// Add marks the jti revoked until ttl elapses and reports whether the
// entry is new. SETNX leaves an existing entry untouched, so a repeat
// revocation of the same jti returns false. A non-positive ttl means the
// token is already expired and nothing needs recording.
func (r *RevocationCache) Add(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}

	key := revokedKeyPrefix + jti
	added, err := r.cache.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("store revocation: %w", err)
	}
	return added, nil
}

// IsRevoked reports whether the jti is currently revoked.
func (r *RevocationCache) IsRevoked(ctx context.Context, jti string) (bool, error) {
	key := revokedKeyPrefix + jti
	n, err := r.cache.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}
