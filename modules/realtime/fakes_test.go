package realtime

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/example/workspace-chat/domain/chat"
)

// fakeConn records every event written to it. With fail set it behaves like
// a closed transport connection.
type fakeConn struct {
	mu     sync.Mutex
	events []any
	fail   bool
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("write on closed connection")
	}
	c.events = append(c.events, v)
	return nil
}

func (c *fakeConn) sent() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]any, len(c.events))
	copy(out, c.events)
	return out
}

// lastOnlineUsers returns the most recent online_users event written to the
// connection, if any.
func (c *fakeConn) lastOnlineUsers() (OnlineUsersEvent, bool) {
	var last OnlineUsersEvent
	found := false
	for _, ev := range c.sent() {
		if ou, ok := ev.(OnlineUsersEvent); ok {
			last = ou
			found = true
		}
	}
	return last, found
}

func (c *fakeConn) hasSystemMessage(msg string) bool {
	for _, ev := range c.sent() {
		if sys, ok := ev.(SystemEvent); ok && sys.Message == msg {
			return true
		}
	}
	return false
}

// scriptedConn extends fakeConn with an inbound frame script for driving
// sessions. Closing the frames channel simulates a transport disconnect.
type scriptedConn struct {
	fakeConn
	frames chan Frame
}

func newScriptedConn() *scriptedConn {
	return &scriptedConn{frames: make(chan Frame)}
}

func (c *scriptedConn) ReadJSON(v any) error {
	frame, ok := <-c.frames
	if !ok {
		return io.EOF
	}
	*(v.(*Frame)) = frame
	return nil
}

func (c *scriptedConn) Close() error {
	return nil
}

// fakeStore records persisted messages in memory.
type fakeStore struct {
	mu          sync.Mutex
	chatBodies  []string
	privBodies  []string
	failInserts bool
}

type persistedPrivate struct {
	sender, receiver, body string
}

func (s *fakeStore) InsertChatMessage(_ context.Context, author, body, room string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInserts {
		return errors.New("store unavailable")
	}
	s.chatBodies = append(s.chatBodies, author+"|"+body+"|"+room)
	return nil
}

func (s *fakeStore) InsertPrivateMessage(_ context.Context, sender, receiver, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInserts {
		return errors.New("store unavailable")
	}
	s.privBodies = append(s.privBodies, sender+"|"+receiver+"|"+body)
	return nil
}

func (s *fakeStore) chatCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chatBodies)
}

func (s *fakeStore) privateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.privBodies)
}

// fakeFinder returns a canned display-name lookup result.
type fakeFinder struct {
	entries []chat.RosterEntry
	err     error
}

func (f *fakeFinder) FindDisplayNames(_ context.Context, _ []string) ([]chat.RosterEntry, error) {
	return f.entries, f.err
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
