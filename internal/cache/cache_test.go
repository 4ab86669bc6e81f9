// cache_test.go exercises the tree cache against a running Valkey instance.
// Tests are skipped if Valkey is not available.
package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testClient connects to the test Valkey instance or skips the test.
func testClient(t *testing.T) *redis.Client {
	t.Helper()
	client, err := ConnectValkey(
		envOr("VALKEY_HOST", "localhost"),
		envOr("VALKEY_PORT", "6379"),
		os.Getenv("VALKEY_PASSWORD"),
	)
	if err != nil {
		t.Skipf("skipping integration test: valkey not reachable: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestTreeCacheRoundTrip(t *testing.T) {
	client := testClient(t)
	tc := NewTreeCache(client, time.Minute)
	ctx := context.Background()

	key := "test-roundtrip"
	t.Cleanup(func() { tc.Invalidate(ctx, key) })

	if _, ok := tc.Get(ctx, key); ok {
		t.Fatal("expected miss on fresh key")
	}

	payload := []byte(`[{"id":"x","children":[]}]`)
	tc.Set(ctx, key, payload)

	got, ok := tc.Get(ctx, key)
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if string(got) != string(payload) {
		t.Errorf("cached payload: got %q, want %q", got, payload)
	}
}

func TestTreeCacheInvalidate(t *testing.T) {
	client := testClient(t)
	tc := NewTreeCache(client, time.Minute)
	ctx := context.Background()

	key := "test-invalidate"
	tc.Set(ctx, key, []byte("[]"))
	tc.Invalidate(ctx, key)

	if _, ok := tc.Get(ctx, key); ok {
		t.Error("expected miss after Invalidate")
	}
}

func TestNewTreeCacheDefaultTTL(t *testing.T) {
	tc := NewTreeCache(nil, 0)
	if tc.ttl != DefaultTreeTTL {
		t.Errorf("ttl: got %v, want %v", tc.ttl, DefaultTreeTTL)
	}
}
