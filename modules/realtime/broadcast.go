package realtime

import "log/slog"

// Broadcaster fans events out to every live connection in a registry. A send
// failure means the connection is gone: the entry is pruned from the registry
// and the fan-out continues with the remaining recipients, so broadcast is
// self-healing against stale handles. Failures never reach the caller.
type Broadcaster struct {
	registry *Registry
	logger   *slog.Logger
}

// NewBroadcaster creates a broadcaster bound to registry.
func NewBroadcaster(registry *Registry, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		registry: registry,
		logger:   logger,
	}
}

// Broadcast sends event to every registered connection except exclude.
// Delivery order across connections is unspecified. Broadcasting the same
// event twice delivers it twice.
func (b *Broadcaster) Broadcast(event any, exclude Conn) {
	for _, conn := range b.registry.snapshot(exclude) {
		if err := conn.WriteJSON(event); err != nil {
			username, _ := b.registry.Deregister(conn)
			b.logger.Debug("pruned dead connection during broadcast",
				"user", username, "error", err)
		}
	}
}

// BroadcastAll sends event to every registered connection.
func (b *Broadcaster) BroadcastAll(event any) {
	b.Broadcast(event, nil)
}
