package chat

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	domain "github.com/example/workspace-chat/domain/chat"
	"github.com/example/workspace-chat/modules/cache"
)

// HistoryService answers room-history reads, optionally fronted by a Redis
// cache. Concurrent reads of the same room collapse into one database query.
type HistoryService struct {
	store  *Store
	cache  *cache.Cache
	group  singleflight.Group
	logger *slog.Logger
}

// NewHistoryService creates a history service. c may be nil, in which case
// every read goes to the store.
func NewHistoryService(store *Store, c *cache.Cache, logger *slog.Logger) *HistoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryService{store: store, cache: c, logger: logger}
}

// RecentMessages returns the last limit messages of a room in chronological
// order. Cache failures are logged and fall through to the database.
func (h *HistoryService) RecentMessages(ctx context.Context, room string, limit int) ([]domain.Message, error) {
	if room == "" {
		room = domain.DefaultRoom
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	key := fmt.Sprintf("%s:%d", room, limit)

	if h.cache != nil {
		var cached []domain.Message
		hit, err := h.cache.Get(ctx, key, &cached)
		if err != nil {
			h.logger.Warn("history cache read failed", "room", room, "error", err)
		} else if hit {
			return cached, nil
		}
	}

	v, err, _ := h.group.Do(key, func() (any, error) {
		messages, err := h.store.RecentMessages(ctx, room, limit)
		if err != nil {
			return nil, err
		}
		if h.cache != nil {
			if err := h.cache.Set(ctx, key, messages); err != nil {
				h.logger.Warn("history cache write failed", "room", room, "error", err)
			}
		}
		return messages, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Message), nil
}

// Invalidate drops every cached page of a room after a new message lands.
func (h *HistoryService) Invalidate(ctx context.Context, room string) {
	if h.cache == nil {
		return
	}
	if room == "" {
		room = domain.DefaultRoom
	}
	if err := h.cache.InvalidatePattern(ctx, room+":*"); err != nil {
		h.logger.Warn("history cache invalidation failed", "room", room, "error", err)
	}
}
