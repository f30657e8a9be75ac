// Package chat owns message persistence and history reads. It hands the
// realtime module its MessageStore and HistorySource collaborators and
// publishes storage events on the EventBus.
package chat

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domain "github.com/example/workspace-chat/domain/chat"
	"github.com/example/workspace-chat/events"
	"github.com/example/workspace-chat/modules/cache"
)

// Module wires the chat store, history service, and EventBus publications.
type Module struct {
	dbPath   string
	db       *gorm.DB
	store    *Store
	history  *HistoryService
	cache    *cache.Cache
	eventBus mono.EventBus
	logger   *slog.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the chat module. The database path comes from
// CHAT_DB_PATH, defaulting to workspace_chat.db.
func NewModule(logger *slog.Logger) *Module {
	dbPath := os.Getenv("CHAT_DB_PATH")
	if dbPath == "" {
		dbPath = "workspace_chat.db"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Module{dbPath: dbPath, logger: logger}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "chat"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// SetCache wires an optional Redis cache in front of history reads. Must be
// called before Start.
func (m *Module) SetCache(c *cache.Cache) {
	m.cache = c
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.MessageStoredV1.ToBase(),
		events.PrivateMessageStoredV1.ToBase(),
		events.UserJoinedV1.ToBase(),
		events.UserLeftV1.ToBase(),
	}
}

// RegisterEventConsumers subscribes to MessageStored events so cached history
// pages are dropped whenever a new message lands.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessageStoredV1, m.handleMessageStored, m,
	); err != nil {
		return fmt.Errorf("failed to register MessageStored consumer: %w", err)
	}
	log.Println("[chat] Registered event consumers: MessageStored")
	return nil
}

// Start opens the database, runs migrations, and builds the services.
func (m *Module) Start(_ context.Context) error {
	log.Printf("[chat] Connecting to SQLite database: %s", m.dbPath)

	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "true" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db
	m.store = NewStore(db)

	if err := m.store.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	m.history = NewHistoryService(m.store, m.cache, m.logger)

	if m.cache != nil {
		log.Println("[chat] Module started - history reads cached via Redis")
	} else {
		log.Println("[chat] Module started - history reads uncached")
	}
	return nil
}

// Stop closes the database connection.
func (m *Module) Stop(_ context.Context) error {
	if m.db != nil {
		if sqlDB, err := m.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[chat] Module stopped")
	return nil
}

// Health performs a health check on the chat module.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get sql.DB: %v", err),
		}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	details := map[string]any{
		"driver": "sqlite",
		"path":   m.dbPath,
		"cached": m.cache != nil,
	}
	if m.cache != nil {
		details["cache_stats"] = m.cache.Stats()
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: details,
	}
}

// Store returns the message store. Nil before Start.
func (m *Module) Store() *Store {
	return m.store
}

// History returns the history service. Nil before Start.
func (m *Module) History() *HistoryService {
	return m.history
}

// InsertChatMessage persists a room message and publishes MessageStored.
// Implements the realtime message store contract.
func (m *Module) InsertChatMessage(ctx context.Context, author, body, room string) error {
	msg, err := m.store.CreateChatMessage(ctx, author, body, room)
	if err != nil {
		return err
	}
	m.publishMessageStored(msg)
	return nil
}

// InsertPrivateMessage persists a direct message and publishes
// PrivateMessageStored.
func (m *Module) InsertPrivateMessage(ctx context.Context, sender, receiver, body string) error {
	msg, err := m.store.CreatePrivateMessage(ctx, sender, receiver, body)
	if err != nil {
		return err
	}
	m.publishPrivateMessageStored(msg)
	return nil
}

// RecentMessages returns the room history through the cache layer.
func (m *Module) RecentMessages(ctx context.Context, room string, limit int) ([]domain.Message, error) {
	return m.history.RecentMessages(ctx, room, limit)
}

// UserJoined publishes a UserJoined event. Implements the realtime notifier
// contract; failures are logged, never surfaced to the connection path.
func (m *Module) UserJoined(username string) {
	if m.eventBus == nil {
		return
	}
	event := events.UserJoinedEvent{Username: username, Timestamp: time.Now().UTC()}
	if err := events.UserJoinedV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("failed to publish UserJoined", "username", username, "error", err)
	}
}

// UserLeft publishes a UserLeft event.
func (m *Module) UserLeft(username string) {
	if m.eventBus == nil {
		return
	}
	event := events.UserLeftEvent{Username: username, Timestamp: time.Now().UTC()}
	if err := events.UserLeftV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("failed to publish UserLeft", "username", username, "error", err)
	}
}

func (m *Module) publishMessageStored(msg *domain.Message) {
	if m.eventBus == nil {
		// No bus means no cache consumers either; invalidate directly.
		m.history.Invalidate(context.Background(), msg.Room)
		return
	}
	event := events.MessageStoredEvent{
		MessageID: msg.ID,
		Author:    msg.Author,
		Room:      msg.Room,
		Timestamp: msg.SentAt,
	}
	if err := events.MessageStoredV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("failed to publish MessageStored", "room", msg.Room, "error", err)
		m.history.Invalidate(context.Background(), msg.Room)
	}
}

func (m *Module) publishPrivateMessageStored(msg *domain.PrivateMessage) {
	if m.eventBus == nil {
		return
	}
	event := events.PrivateMessageStoredEvent{
		MessageID: msg.ID,
		Sender:    msg.Sender,
		Receiver:  msg.Receiver,
		Timestamp: msg.SentAt,
	}
	if err := events.PrivateMessageStoredV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("failed to publish PrivateMessageStored", "error", err)
	}
}

func (m *Module) handleMessageStored(ctx context.Context, event events.MessageStoredEvent, _ *mono.Msg) error {
	m.history.Invalidate(ctx, event.Room)
	return nil
}
