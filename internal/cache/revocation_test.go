package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRevocationCache(t *testing.T) (*RevocationCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRevocationCache(NewFromClient(client)), mr
}

func TestRevocationCache_AddAndCheck(t *testing.T) {
	ctx := context.Background()
	rc, _ := newTestRevocationCache(t)

	revoked, err := rc.IsRevoked(ctx, "unknown-jti")
	if err != nil {
		t.Fatalf("IsRevoked failed: %v", err)
	}
	if revoked {
		t.Error("unknown jti should not be revoked")
	}

	added, err := rc.Add(ctx, "jti-1", time.Hour)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !added {
		t.Error("first Add should record a new entry")
	}

	revoked, err = rc.IsRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("IsRevoked failed: %v", err)
	}
	if !revoked {
		t.Error("added jti should be revoked")
	}
}

func TestRevocationCache_TTLMatchesTokenLifetime(t *testing.T) {
	ctx := context.Background()
	rc, mr := newTestRevocationCache(t)

	if _, err := rc.Add(ctx, "jti-ttl", 45*time.Minute); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	ttl := mr.TTL(revokedKeyPrefix + "jti-ttl")
	if ttl != 45*time.Minute {
		t.Errorf("expected entry TTL 45m, got %v", ttl)
	}

	// Once the token would have expired anyway the entry disappears.
	mr.FastForward(46 * time.Minute)

	revoked, err := rc.IsRevoked(ctx, "jti-ttl")
	if err != nil {
		t.Fatalf("IsRevoked failed: %v", err)
	}
	if revoked {
		t.Error("entry should be evicted after the token lifetime")
	}
}

func TestRevocationCache_NonPositiveTTL(t *testing.T) {
	ctx := context.Background()
	rc, mr := newTestRevocationCache(t)

	added, err := rc.Add(ctx, "jti-dead", -time.Second)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if added {
		t.Error("expired token should not count as a new revocation")
	}
	if mr.Exists(revokedKeyPrefix + "jti-dead") {
		t.Error("expired token should not create a revocation entry")
	}
}

func TestRevocationCache_Idempotent(t *testing.T) {
	ctx := context.Background()
	rc, _ := newTestRevocationCache(t)

	for i := 0; i < 3; i++ {
		added, err := rc.Add(ctx, "jti-again", time.Hour)
		if err != nil {
			t.Fatalf("Add %d failed: %v", i, err)
		}
		if added != (i == 0) {
			t.Errorf("Add %d: added = %v, only the first call should record", i, added)
		}
	}

	revoked, err := rc.IsRevoked(ctx, "jti-again")
	if err != nil {
		t.Fatalf("IsRevoked failed: %v", err)
	}
	if !revoked {
		t.Error("jti should remain revoked")
	}
}
