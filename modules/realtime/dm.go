package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Router delivers direct messages to a receiver's live connections and then
// persists them. Delivery is best-effort: per-connection failures are logged
// and the dead handle pruned, partial delivery across a receiver's devices is
// an accepted outcome. Persistence always follows delivery, whatever the
// delivery outcome. The caller is responsible for authenticating sender.
type Router struct {
	registry *Registry
	store    MessageStore
	logger   *slog.Logger
}

// NewRouter creates a direct-message router.
func NewRouter(registry *Registry, store MessageStore, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		registry: registry,
		store:    store,
		logger:   logger,
	}
}

// Route delivers body from sender to every live connection of receiver, then
// persists the message. The returned bool reports whether at least one live
// connection existed for receiver; the error reports persistence failure
// only, never delivery failure.
func (r *Router) Route(ctx context.Context, sender, receiver, body string) (bool, error) {
	conns := r.registry.ConnectionsFor(receiver)

	event := PrivateMessageEvent{
		Type:      EventPrivateMessage,
		Sender:    sender,
		Receiver:  receiver,
		Message:   body,
		Timestamp: time.Now().UTC(),
	}
	for _, conn := range conns {
		if err := conn.WriteJSON(event); err != nil {
			r.registry.Deregister(conn)
			r.logger.Debug("pruned dead connection during direct delivery",
				"receiver", receiver, "error", err)
		}
	}

	delivered := len(conns) > 0
	if err := r.store.InsertPrivateMessage(ctx, sender, receiver, body); err != nil {
		return delivered, fmt.Errorf("persist private message: %w", err)
	}
	return delivered, nil
}
