package realtime

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/go-monolith/mono"
)

// Module wires the realtime subsystem into the application as a mono module.
// The registry and broadcaster exist from construction so other modules can
// be wired against them before Start; presence and routing are assembled in
// Start once the collaborators are set.
type Module struct {
	registry    *Registry
	broadcaster *Broadcaster
	presence    *Presence
	router      *Router

	store    MessageStore
	history  HistorySource
	names    DisplayNameFinder
	notifier Notifier
	logger   *slog.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new realtime module.
func NewModule() *Module {
	logger := slog.Default()
	registry := NewRegistry()
	return &Module{
		registry:    registry,
		broadcaster: NewBroadcaster(registry, logger),
		logger:      logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "realtime"
}

// SetPersistence injects the message store and history source. Called from
// main.go before Start.
func (m *Module) SetPersistence(store MessageStore, history HistorySource) {
	m.store = store
	m.history = history
}

// SetUserDirectory injects the display-name lookup used by presence.
func (m *Module) SetUserDirectory(names DisplayNameFinder) {
	m.names = names
}

// SetNotifier injects the join/leave notification sink.
func (m *Module) SetNotifier(notifier Notifier) {
	m.notifier = notifier
}

// Start assembles presence and routing from the injected collaborators.
func (m *Module) Start(_ context.Context) error {
	if m.store == nil {
		return fmt.Errorf("realtime: message store dependency not set")
	}

	m.presence = NewPresence(m.registry, m.broadcaster, m.names, m.logger)
	m.router = NewRouter(m.registry, m.store, m.logger)

	log.Println("[realtime] Module started")
	return nil
}

// Stop shuts the module down. Connections are owned by the transport, so
// there is nothing to close here.
func (m *Module) Stop(_ context.Context) error {
	log.Printf("[realtime] Module stopped - %d connections were live", m.registry.Len())
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.router != nil,
		Message: "operational",
		Details: map[string]any{
			"connections":  m.registry.Len(),
			"online_users": m.registry.UserCount(),
		},
	}
}

// Handle runs a session for conn and blocks until the connection dies. The
// transport calls this from its per-connection handler goroutine.
func (m *Module) Handle(ctx context.Context, conn ClientConn) {
	session := NewSession(conn, m.registry, m.broadcaster, m.presence,
		m.router, m.store, m.history, m.notifier, m.logger)
	session.Run(ctx)
}

// Registry exposes the connection registry for health and status reporting.
func (m *Module) Registry() *Registry {
	return m.registry
}

// Router exposes the direct-message router for the HTTP private-message path.
func (m *Module) Router() *Router {
	return m.router
}
