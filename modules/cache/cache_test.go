package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/workspace-chat/domain/chat"
)

// Tests require Redis running on localhost:6379 and skip otherwise.
const testRedisAddr = "localhost:6379"

// setupTestCache creates a cache instance and a cleanup function.
func setupTestCache(t *testing.T, prefix string) (*Cache, func()) {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	cleanupKeys(ctx, client, prefix+"*")
	c := New(client, prefix, 5*time.Minute)

	cleanup := func() {
		cleanupKeys(ctx, client, prefix+"*")
		client.Close()
	}
	return c, cleanup
}

// cleanupKeys removes all keys matching the pattern.
func cleanupKeys(ctx context.Context, client *redis.Client, pattern string) {
	var cursor uint64
	for {
		keys, next, err := client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

func TestCache_SetGetRoundTrip(t *testing.T) {
	c, cleanup := setupTestCache(t, "test:roundtrip:")
	defer cleanup()
	ctx := context.Background()

	stored := []chat.Message{
		{ID: "m1", Author: "alice", Body: "hello", Room: "general", SentAt: time.Now().UTC().Truncate(time.Second)},
	}
	if err := c.Set(ctx, "general:50", stored); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var loaded []chat.Message
	hit, err := c.Get(ctx, "general:50", &loaded)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !hit {
		t.Fatal("Get() reported a miss for a key just set")
	}
	if len(loaded) != 1 || loaded[0].Body != "hello" {
		t.Errorf("loaded = %+v, want the stored message", loaded)
	}

	stats := c.Stats()
	if stats.Hits != 1 {
		t.Errorf("Hits = %d, want 1", stats.Hits)
	}
}

func TestCache_MissOnAbsentKey(t *testing.T) {
	c, cleanup := setupTestCache(t, "test:miss:")
	defer cleanup()

	var dest []chat.Message
	hit, err := c.Get(context.Background(), "absent", &dest)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if hit {
		t.Error("Get() reported a hit for an absent key")
	}
	if c.Stats().Misses != 1 {
		t.Errorf("Misses = %d, want 1", c.Stats().Misses)
	}
}

func TestCache_InvalidatePattern(t *testing.T) {
	c, cleanup := setupTestCache(t, "test:inval:")
	defer cleanup()
	ctx := context.Background()

	for _, key := range []string{"general:10", "general:50", "random:50"} {
		if err := c.Set(ctx, key, []string{"x"}); err != nil {
			t.Fatalf("Set(%q) error = %v", key, err)
		}
	}

	if err := c.InvalidatePattern(ctx, "general:*"); err != nil {
		t.Fatalf("InvalidatePattern() error = %v", err)
	}

	var dest []string
	if hit, _ := c.Get(ctx, "general:10", &dest); hit {
		t.Error("general:10 survived invalidation")
	}
	if hit, _ := c.Get(ctx, "random:50", &dest); !hit {
		t.Error("random:50 was invalidated by a general:* pattern")
	}
}
