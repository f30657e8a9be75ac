// Package events declares the typed EventBus events exchanged between
// modules. The realtime delivery path never depends on these; they feed
// observability-side consumers (cache invalidation, activity logging).
package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// MessageStoredEvent is emitted after a room message is persisted.
type MessageStoredEvent struct {
	MessageID string    `json:"message_id"`
	Author    string    `json:"author"`
	Room      string    `json:"room"`
	Timestamp time.Time `json:"timestamp"`
}

// PrivateMessageStoredEvent is emitted after a private message is persisted.
type PrivateMessageStoredEvent struct {
	MessageID string    `json:"message_id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Timestamp time.Time `json:"timestamp"`
}

// UserJoinedEvent is emitted when a user joins the chat.
type UserJoinedEvent struct {
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// UserLeftEvent is emitted when a user leaves the chat.
type UserLeftEvent struct {
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the chat domain.
var (
	MessageStoredV1 = helper.EventDefinition[MessageStoredEvent](
		"chat",
		"MessageStored",
		"v1",
	)

	PrivateMessageStoredV1 = helper.EventDefinition[PrivateMessageStoredEvent](
		"chat",
		"PrivateMessageStored",
		"v1",
	)

	UserJoinedV1 = helper.EventDefinition[UserJoinedEvent](
		"chat",
		"UserJoined",
		"v1",
	)

	UserLeftV1 = helper.EventDefinition[UserLeftEvent](
		"chat",
		"UserLeft",
		"v1",
	)
)
