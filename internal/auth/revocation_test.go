package auth

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryRevocationStore_AddAndCheck(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryRevocationStore()

	revoked, err := store.IsRevoked(ctx, "unknown-jti")
	if err != nil {
		t.Fatalf("IsRevoked failed: %v", err)
	}
	if revoked {
		t.Error("unknown jti should not be revoked")
	}

	added, err := store.Add(ctx, "jti-1", time.Hour)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !added {
		t.Error("first Add should record a new entry")
	}

	revoked, err = store.IsRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("IsRevoked failed: %v", err)
	}
	if !revoked {
		t.Error("added jti should be revoked")
	}

	added, err = store.Add(ctx, "jti-1", time.Hour)
	if err != nil {
		t.Fatalf("repeat Add failed: %v", err)
	}
	if added {
		t.Error("re-adding a live entry should report nothing new")
	}
}

func TestMemoryRevocationStore_EntryExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryRevocationStore()

	current := time.Now()
	var mu sync.Mutex
	store.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	if _, err := store.Add(ctx, "jti-ttl", 30*time.Minute); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// Advance past the entry TTL; the token it guarded is expired by
	// now anyway, so the entry can go.
	mu.Lock()
	current = current.Add(31 * time.Minute)
	mu.Unlock()

	revoked, err := store.IsRevoked(ctx, "jti-ttl")
	if err != nil {
		t.Fatalf("IsRevoked failed: %v", err)
	}
	if revoked {
		t.Error("entry should have expired with the token")
	}
	if store.Len() != 0 {
		t.Errorf("expected expired entry to be evicted, have %d", store.Len())
	}

	// A lapsed entry no longer blocks a fresh revocation of the jti.
	added, err := store.Add(ctx, "jti-ttl", time.Hour)
	if err != nil {
		t.Fatalf("Add after expiry failed: %v", err)
	}
	if !added {
		t.Error("re-adding after the entry lapsed should record a new entry")
	}
}

func TestMemoryRevocationStore_NonPositiveTTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryRevocationStore()

	added, err := store.Add(ctx, "jti-dead", -time.Minute)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if added {
		t.Error("expired token should not count as a new revocation")
	}
	if store.Len() != 0 {
		t.Error("expired token should not create a revocation entry")
	}
}

func TestMemoryRevocationStore_ConcurrentLogout(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryRevocationStore()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Add(ctx, "shared-jti", time.Hour)
			_, _ = store.IsRevoked(ctx, "shared-jti")
		}()
	}
	wg.Wait()

	revoked, err := store.IsRevoked(ctx, "shared-jti")
	if err != nil {
		t.Fatalf("IsRevoked failed: %v", err)
	}
	if !revoked {
		t.Error("jti should be revoked after concurrent logouts")
	}
}
