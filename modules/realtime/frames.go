package realtime

import (
	"time"

	"github.com/example/workspace-chat/domain/chat"
)

// Inbound frame types.
const (
	FrameJoin           = "join"
	FrameMessage        = "message"
	FramePrivateMessage = "private_message"
	FrameTyping         = "typing"
)

// Outbound event types.
const (
	EventUserCount      = "user_count"
	EventSystem         = "system"
	EventOnlineUsers    = "online_users"
	EventMessage        = "message"
	EventPrivateMessage = "private_message"
	EventTyping         = "typing"
)

// Frame is an inbound client frame. Type selects which fields are meaningful;
// unrecognized types are ignored by the session.
type Frame struct {
	Type     string `json:"type"`
	User     string `json:"user,omitempty"`
	Receiver string `json:"receiver,omitempty"`
	Message  string `json:"message,omitempty"`
}

// UserCountEvent announces the number of distinct online users.
type UserCountEvent struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// SystemEvent carries a system announcement (joins, leaves).
type SystemEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// OnlineUsersEvent publishes the current roster.
type OnlineUsersEvent struct {
	Type  string             `json:"type"`
	Users []chat.RosterEntry `json:"users"`
}

// MessageEvent is a room chat message delivered to clients.
type MessageEvent struct {
	Type      string    `json:"type"`
	User      string    `json:"user"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// PrivateMessageEvent is a direct message delivered to the receiver's
// connections.
type PrivateMessageEvent struct {
	Type      string    `json:"type"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// TypingEvent is an ephemeral typing indicator. Never persisted.
type TypingEvent struct {
	Type string `json:"type"`
	User string `json:"user"`
}
