package realtime

import (
	"context"
	"log/slog"

	"github.com/example/workspace-chat/domain/chat"
)

// Presence derives the online roster from the registry, enriches it with
// display names from the user directory, and publishes it to all connections.
// A failed or empty lookup degrades to bare usernames; presence publication
// never surfaces an error.
type Presence struct {
	registry    *Registry
	broadcaster *Broadcaster
	names       DisplayNameFinder
	logger      *slog.Logger
}

// NewPresence creates a presence tracker.
func NewPresence(registry *Registry, broadcaster *Broadcaster, names DisplayNameFinder, logger *slog.Logger) *Presence {
	if logger == nil {
		logger = slog.Default()
	}
	return &Presence{
		registry:    registry,
		broadcaster: broadcaster,
		names:       names,
		logger:      logger,
	}
}

// PublishOnlineUsers recomputes the distinct online usernames and broadcasts
// the roster as a single online_users event to all connections.
func (p *Presence) PublishOnlineUsers(ctx context.Context) {
	online := p.registry.Usernames()
	p.broadcaster.BroadcastAll(OnlineUsersEvent{
		Type:  EventOnlineUsers,
		Users: p.roster(ctx, online),
	})
}

// roster builds {username, display_name} pairs for the online users. Users
// missing from the lookup result, or all users when the lookup fails or
// returns nothing, fall back to display_name = username. Nobody is dropped.
func (p *Presence) roster(ctx context.Context, online []string) []chat.RosterEntry {
	entries := make([]chat.RosterEntry, 0, len(online))
	if len(online) == 0 {
		return entries
	}

	var byName map[string]chat.RosterEntry
	if p.names != nil {
		found, err := p.names.FindDisplayNames(ctx, online)
		if err != nil {
			p.logger.Warn("display name lookup failed, falling back to usernames", "error", err)
		} else if len(found) > 0 {
			byName = make(map[string]chat.RosterEntry, len(found))
			for _, entry := range found {
				byName[entry.Username] = entry
			}
		}
	}

	for _, username := range online {
		displayName := username
		if entry, ok := byName[username]; ok && entry.DisplayName != "" {
			displayName = entry.DisplayName
		}
		entries = append(entries, chat.RosterEntry{
			Username:    username,
			DisplayName: displayName,
		})
	}
	return entries
}
