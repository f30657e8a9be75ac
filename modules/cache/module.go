package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	"github.com/redis/go-redis/v9"
)

// Default cache configuration.
const (
	defaultPrefix = "history:"
	defaultTTL    = 2 * time.Minute
)

// Module owns the Redis connection and exposes the history cache to the chat
// module. Register it only when a Redis address is configured; the chat
// module runs uncached without it.
type Module struct {
	cache     *Cache
	client    *redis.Client
	redisAddr string
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a cache module connecting to redisAddr. The cache exists
// from construction so the chat module can be wired against it before Start;
// the connection itself is verified in Start.
func NewModule(redisAddr string) *Module {
	client := redis.NewClient(&redis.Options{
		Addr:         redisAddr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return &Module{
		cache:     New(client, defaultPrefix, defaultTTL),
		client:    client,
		redisAddr: redisAddr,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "cache"
}

// Start verifies the Redis connection.
func (m *Module) Start(ctx context.Context) error {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Printf("[cache] Connected to Redis at %s (prefix: %s, TTL: %s)",
		m.redisAddr, defaultPrefix, defaultTTL)
	return nil
}

// Stop closes the Redis connection.
func (m *Module) Stop(_ context.Context) error {
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			return fmt.Errorf("failed to close Redis connection: %w", err)
		}
	}
	log.Println("[cache] Module stopped")
	return nil
}

// Health reports the Redis connection state.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.cache == nil {
		return mono.HealthStatus{Healthy: false, Message: "cache not initialized"}
	}
	if err := m.cache.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("redis ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"stats": m.cache.Stats()},
	}
}

// Cache returns the cache instance.
func (m *Module) Cache() *Cache {
	return m.cache
}
