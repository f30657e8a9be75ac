package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/workspace-chat/domain/chat"
)

// historyReplayLimit is how many recent room messages a joining connection
// receives.
const historyReplayLimit = 50

// Session is the per-connection protocol state machine. One session goroutine
// owns one connection handle for the connection's lifetime; the registry is
// the only state shared with other sessions.
type Session struct {
	conn        ClientConn
	registry    *Registry
	broadcaster *Broadcaster
	presence    *Presence
	router      *Router
	store       MessageStore
	history     HistorySource
	notifier    Notifier
	logger      *slog.Logger

	username string
}

// NewSession creates a session for conn. The caller (the transport handler)
// is expected to call Run and block until the connection dies.
func NewSession(conn ClientConn, registry *Registry, broadcaster *Broadcaster,
	presence *Presence, router *Router, store MessageStore,
	history HistorySource, notifier Notifier, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		conn:        conn,
		registry:    registry,
		broadcaster: broadcaster,
		presence:    presence,
		router:      router,
		store:       store,
		history:     history,
		notifier:    notifier,
		logger:      logger,
	}
}

// Run drives the session through its lifecycle: wait for the join frame,
// serve the frame loop, and clean up after the transport-level disconnect.
// It returns when the connection is gone.
func (s *Session) Run(ctx context.Context) {
	var join Frame
	if err := s.conn.ReadJSON(&join); err != nil {
		// Transport died before the client ever joined; nothing to clean up.
		return
	}

	s.join(ctx, join)
	s.loop(ctx)
	s.leave(ctx)
}

// join registers the connection and announces it. The desired username comes
// from the join frame; absent one, a placeholder is generated from the live
// connection count. Placeholder names are not guaranteed unique under
// concurrent joins; this preserves the established behavior.
func (s *Session) join(ctx context.Context, frame Frame) {
	username := ""
	if frame.Type == FrameJoin {
		username = frame.User
	}
	if username == "" {
		username = fmt.Sprintf("guest-%d", s.registry.Len()+1)
	}
	s.username = username

	s.registry.Register(s.conn, username)
	s.logger.Info("user joined", "user", username, "connections", s.registry.Len())

	s.broadcaster.BroadcastAll(UserCountEvent{
		Type:  EventUserCount,
		Count: s.registry.UserCount(),
	})
	s.broadcaster.Broadcast(SystemEvent{
		Type:    EventSystem,
		Message: username + " joined the chat",
	}, s.conn)

	s.replayHistory(ctx)
	s.presence.PublishOnlineUsers(ctx)

	if s.notifier != nil {
		s.notifier.UserJoined(username)
	}
}

// replayHistory sends recent room history to the joining connection as
// individual message events, oldest first.
func (s *Session) replayHistory(ctx context.Context) {
	if s.history == nil {
		return
	}
	messages, err := s.history.RecentMessages(ctx, chat.DefaultRoom, historyReplayLimit)
	if err != nil {
		s.logger.Warn("history replay skipped", "user", s.username, "error", err)
		return
	}
	for _, msg := range messages {
		event := MessageEvent{
			Type:      EventMessage,
			User:      msg.Author,
			Message:   msg.Body,
			Timestamp: msg.SentAt,
		}
		if err := s.conn.WriteJSON(event); err != nil {
			// The frame loop will observe the dead connection next read.
			return
		}
	}
}

// loop reads frames until the transport disconnects. This is the session's
// suspension point: between frames the goroutine blocks in ReadJSON and
// touches no shared state.
func (s *Session) loop(ctx context.Context) {
	for {
		var frame Frame
		if err := s.conn.ReadJSON(&frame); err != nil {
			return
		}

		switch frame.Type {
		case FrameMessage:
			s.handleMessage(ctx, frame)
		case FramePrivateMessage:
			s.handlePrivateMessage(ctx, frame)
		case FrameTyping:
			s.broadcaster.BroadcastAll(TypingEvent{
				Type: EventTyping,
				User: s.username,
			})
		default:
			// Unknown frame types are ignored; no error frame goes back.
		}
	}
}

// handleMessage broadcasts a room message to all connections, sender
// included, and persists it afterwards. Broadcast-before-persist is a
// correctness-relevant contract: the sender-visible echo never waits on
// storage, and a storage failure never suppresses delivery.
func (s *Session) handleMessage(ctx context.Context, frame Frame) {
	s.broadcaster.BroadcastAll(MessageEvent{
		Type:      EventMessage,
		User:      s.username,
		Message:   frame.Message,
		Timestamp: time.Now().UTC(),
	})

	if err := s.store.InsertChatMessage(ctx, s.username, frame.Message, chat.DefaultRoom); err != nil {
		s.logger.Error("chat message not persisted", "user", s.username, "error", err)
	}
}

// handlePrivateMessage delivers to the receiver's live connections before
// persisting, via the router.
func (s *Session) handlePrivateMessage(ctx context.Context, frame Frame) {
	if _, err := s.router.Route(ctx, s.username, frame.Receiver, frame.Message); err != nil {
		s.logger.Error("private message not persisted",
			"sender", s.username, "receiver", frame.Receiver, "error", err)
	}
}

// leave deregisters the connection and announces the departure. Reached only
// after the transport-level disconnect; the session performs no further
// actions afterwards.
func (s *Session) leave(ctx context.Context) {
	username, ok := s.registry.Deregister(s.conn)
	if !ok {
		// Already pruned by a failed broadcast send.
		username = s.username
	}

	s.logger.Info("user left", "user", username, "connections", s.registry.Len())

	s.broadcaster.BroadcastAll(SystemEvent{
		Type:    EventSystem,
		Message: username + " left the chat",
	})
	s.broadcaster.BroadcastAll(UserCountEvent{
		Type:  EventUserCount,
		Count: s.registry.UserCount(),
	})
	s.presence.PublishOnlineUsers(ctx)

	if s.notifier != nil {
		s.notifier.UserLeft(username)
	}
}
