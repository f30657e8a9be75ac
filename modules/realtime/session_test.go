package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/example/workspace-chat/domain/chat"
)

// sessionHarness assembles the realtime pieces around a shared registry so
// tests can run several concurrent sessions against each other.
type sessionHarness struct {
	registry    *Registry
	broadcaster *Broadcaster
	presence    *Presence
	router      *Router
	store       *fakeStore
	history     HistorySource

	wg sync.WaitGroup
}

func newSessionHarness(finder DisplayNameFinder) *sessionHarness {
	reg := NewRegistry()
	bc := NewBroadcaster(reg, nil)
	store := &fakeStore{}
	return &sessionHarness{
		registry:    reg,
		broadcaster: bc,
		presence:    NewPresence(reg, bc, finder, nil),
		router:      NewRouter(reg, store, nil),
		store:       store,
	}
}

// start runs a session over conn in the background.
func (h *sessionHarness) start(conn *scriptedConn) {
	session := NewSession(conn, h.registry, h.broadcaster, h.presence,
		h.router, h.store, h.history, nil, nil)
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		session.Run(context.Background())
	}()
}

func (h *sessionHarness) join(t *testing.T, conn *scriptedConn, username string, wantUsers int) {
	t.Helper()
	h.start(conn)
	conn.frames <- Frame{Type: FrameJoin, User: username}
	waitFor(t, func() bool { return h.registry.UserCount() == wantUsers })
}

func TestSession_JoinAnnouncementExcludesJoiner(t *testing.T) {
	h := newSessionHarness(nil)
	a := newScriptedConn()
	b := newScriptedConn()

	h.join(t, a, "alice", 1)
	h.join(t, b, "bob", 2)

	// The join announcement goes to alice but never back to bob.
	waitFor(t, func() bool { return a.hasSystemMessage("bob joined the chat") })
	if b.hasSystemMessage("bob joined the chat") {
		t.Error("joining connection received its own join announcement")
	}

	// Both subsequently receive an online_users event listing both users.
	for name, conn := range map[string]*scriptedConn{"alice": a, "bob": b} {
		waitFor(t, func() bool {
			event, ok := conn.lastOnlineUsers()
			return ok && len(event.Users) == 2
		})
		roster := rosterByUsername(t, &conn.fakeConn)
		if _, ok := roster["alice"]; !ok {
			t.Errorf("%s roster is missing alice", name)
		}
		if _, ok := roster["bob"]; !ok {
			t.Errorf("%s roster is missing bob", name)
		}
	}

	close(a.frames)
	close(b.frames)
	h.wg.Wait()
}

func TestSession_GeneratedGuestName(t *testing.T) {
	h := newSessionHarness(nil)
	conn := newScriptedConn()

	h.start(conn)
	conn.frames <- Frame{Type: FrameJoin}
	waitFor(t, func() bool { return h.registry.Len() == 1 })

	names := h.registry.Usernames()
	if len(names) != 1 || names[0] != "guest-1" {
		t.Errorf("Usernames() = %v, want [guest-1]", names)
	}

	close(conn.frames)
	h.wg.Wait()
}

func TestSession_RoomMessageBroadcastThenPersisted(t *testing.T) {
	h := newSessionHarness(nil)
	a := newScriptedConn()
	b := newScriptedConn()
	h.join(t, a, "alice", 1)
	h.join(t, b, "bob", 2)

	a.frames <- Frame{Type: FrameMessage, Message: "hello room"}

	// Sender is included in the room broadcast.
	for _, conn := range []*scriptedConn{a, b} {
		conn := conn
		waitFor(t, func() bool {
			for _, ev := range conn.sent() {
				if msg, ok := ev.(MessageEvent); ok && msg.Message == "hello room" {
					return msg.User == "alice"
				}
			}
			return false
		})
	}
	waitFor(t, func() bool { return h.store.chatCount() == 1 })

	close(a.frames)
	close(b.frames)
	h.wg.Wait()
}

func TestSession_PrivateMessageReachesOnlyReceiver(t *testing.T) {
	h := newSessionHarness(nil)
	a := newScriptedConn()
	b := newScriptedConn()
	c := newScriptedConn()
	h.join(t, a, "alice", 1)
	h.join(t, b, "bob", 2)
	h.join(t, c, "carol", 3)

	a.frames <- Frame{Type: FramePrivateMessage, Receiver: "bob", Message: "psst"}

	waitFor(t, func() bool {
		for _, ev := range b.sent() {
			if pm, ok := ev.(PrivateMessageEvent); ok && pm.Message == "psst" {
				return true
			}
		}
		return false
	})
	for _, ev := range c.sent() {
		if _, ok := ev.(PrivateMessageEvent); ok {
			t.Error("third party received a private message")
		}
	}
	waitFor(t, func() bool { return h.store.privateCount() == 1 })

	close(a.frames)
	close(b.frames)
	close(c.frames)
	h.wg.Wait()
}

func TestSession_TypingIndicatorNeverPersisted(t *testing.T) {
	h := newSessionHarness(nil)
	a := newScriptedConn()
	b := newScriptedConn()
	h.join(t, a, "alice", 1)
	h.join(t, b, "bob", 2)

	a.frames <- Frame{Type: FrameTyping}

	waitFor(t, func() bool {
		for _, ev := range b.sent() {
			if typing, ok := ev.(TypingEvent); ok {
				return typing.User == "alice"
			}
		}
		return false
	})
	if h.store.chatCount() != 0 || h.store.privateCount() != 0 {
		t.Error("typing indicator was persisted")
	}

	close(a.frames)
	close(b.frames)
	h.wg.Wait()
}

func TestSession_UnknownFrameIgnored(t *testing.T) {
	h := newSessionHarness(nil)
	a := newScriptedConn()
	b := newScriptedConn()
	h.join(t, a, "alice", 1)
	h.join(t, b, "bob", 2)

	before := len(b.sent())
	a.frames <- Frame{Type: "subscribe", Message: "nope"}
	// Follow with a known frame to prove the loop kept going.
	a.frames <- Frame{Type: FrameMessage, Message: "still here"}

	waitFor(t, func() bool {
		for _, ev := range b.sent() {
			if msg, ok := ev.(MessageEvent); ok && msg.Message == "still here" {
				return true
			}
		}
		return false
	})

	for _, ev := range b.sent()[before:] {
		if msg, ok := ev.(MessageEvent); ok && msg.Message == "nope" {
			t.Error("unknown frame type was broadcast")
		}
	}

	close(a.frames)
	close(b.frames)
	h.wg.Wait()
}

func TestSession_DisconnectAnnouncesLeaveAndUpdatesPresence(t *testing.T) {
	h := newSessionHarness(nil)
	a := newScriptedConn()
	b := newScriptedConn()
	h.join(t, a, "alice", 1)
	h.join(t, b, "bob", 2)

	close(b.frames)
	waitFor(t, func() bool { return h.registry.UserCount() == 1 })

	waitFor(t, func() bool { return a.hasSystemMessage("bob left the chat") })
	waitFor(t, func() bool {
		event, ok := a.lastOnlineUsers()
		return ok && len(event.Users) == 1 && event.Users[0].Username == "alice"
	})

	var lastCount *UserCountEvent
	for _, ev := range a.sent() {
		if count, ok := ev.(UserCountEvent); ok {
			c := count
			lastCount = &c
		}
	}
	if lastCount == nil || lastCount.Count != 1 {
		t.Errorf("last user_count = %+v, want count 1", lastCount)
	}

	close(a.frames)
	h.wg.Wait()
}

// fixedHistory is a canned HistorySource for replay tests.
type fixedHistory struct {
	messages []chat.Message
}

func (f *fixedHistory) RecentMessages(_ context.Context, _ string, _ int) ([]chat.Message, error) {
	return f.messages, nil
}

func TestSession_HistoryReplayOnJoin(t *testing.T) {
	h := newSessionHarness(nil)
	h.history = &fixedHistory{messages: []chat.Message{
		{Author: "alice", Body: "first", SentAt: time.Now().Add(-2 * time.Minute)},
		{Author: "bob", Body: "second", SentAt: time.Now().Add(-time.Minute)},
	}}

	conn := newScriptedConn()
	h.join(t, conn, "carol", 1)

	waitFor(t, func() bool {
		var replayed []string
		for _, ev := range conn.sent() {
			if msg, ok := ev.(MessageEvent); ok {
				replayed = append(replayed, msg.Message)
			}
		}
		return len(replayed) == 2 && replayed[0] == "first" && replayed[1] == "second"
	})

	close(conn.frames)
	h.wg.Wait()
}
