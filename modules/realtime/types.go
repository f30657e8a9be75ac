// Package realtime implements the live connection subsystem: the connection
// registry, broadcast fan-out, presence roster, direct-message routing, and
// the per-connection session state machine. It owns no connections and no
// storage; the transport hands it connection handles and the persistence and
// user-directory collaborators are injected as interfaces.
package realtime

import (
	"context"

	"github.com/example/workspace-chat/domain/chat"
)

// Conn is a non-owning handle to a live bidirectional connection. The
// transport layer owns the connection for its lifetime; the registry only
// writes to it.
type Conn interface {
	WriteJSON(v any) error
}

// ClientConn is the full handle a session drives: reads, writes, and the
// close the session performs when releasing its reference.
type ClientConn interface {
	Conn
	ReadJSON(v any) error
	Close() error
}

// MessageStore persists chat and private messages. Insert failures must be
// tolerated by callers; the realtime path never blocks user-visible behavior
// on storage.
type MessageStore interface {
	InsertChatMessage(ctx context.Context, author, body, room string) error
	InsertPrivateMessage(ctx context.Context, sender, receiver, body string) error
}

// HistorySource retrieves recent room messages for replay to a newly joined
// connection.
type HistorySource interface {
	RecentMessages(ctx context.Context, room string, limit int) ([]chat.Message, error)
}

// DisplayNameFinder resolves usernames to display-name records. A failed or
// empty lookup is not an error condition for presence; callers fall back to
// bare usernames.
type DisplayNameFinder interface {
	FindDisplayNames(ctx context.Context, usernames []string) ([]chat.RosterEntry, error)
}

// Notifier receives join/leave notifications for observability consumers
// (event emission, activity logging). All methods are fire-and-forget.
type Notifier interface {
	UserJoined(username string)
	UserLeft(username string)
}
