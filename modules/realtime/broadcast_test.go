package realtime

import "testing"

func TestBroadcaster_DeliversToAll(t *testing.T) {
	reg := NewRegistry()
	bc := NewBroadcaster(reg, nil)

	conns := []*fakeConn{{}, {}, {}}
	for i, c := range conns {
		reg.Register(c, "user-"+string(rune('a'+i)))
	}

	bc.BroadcastAll(SystemEvent{Type: EventSystem, Message: "hello"})

	for i, c := range conns {
		if got := len(c.sent()); got != 1 {
			t.Errorf("conn %d received %d events, want 1", i, got)
		}
	}
}

func TestBroadcaster_ExcludesOneConnection(t *testing.T) {
	reg := NewRegistry()
	bc := NewBroadcaster(reg, nil)

	included := &fakeConn{}
	excluded := &fakeConn{}
	reg.Register(included, "alice")
	reg.Register(excluded, "bob")

	bc.Broadcast(SystemEvent{Type: EventSystem, Message: "bob joined the chat"}, excluded)

	if got := len(included.sent()); got != 1 {
		t.Errorf("included conn received %d events, want 1", got)
	}
	if got := len(excluded.sent()); got != 0 {
		t.Errorf("excluded conn received %d events, want 0", got)
	}
}

func TestBroadcaster_PrunesFailingConnection(t *testing.T) {
	reg := NewRegistry()
	bc := NewBroadcaster(reg, nil)

	healthy := []*fakeConn{{}, {}, {}, {}}
	for i, c := range healthy {
		reg.Register(c, "user-"+string(rune('a'+i)))
	}
	dead := &fakeConn{fail: true}
	reg.Register(dead, "ghost")

	bc.BroadcastAll(SystemEvent{Type: EventSystem, Message: "ping"})

	for i, c := range healthy {
		if got := len(c.sent()); got != 1 {
			t.Errorf("healthy conn %d received %d events, want 1", i, got)
		}
	}
	if got := reg.Len(); got != len(healthy) {
		t.Errorf("registry size after broadcast = %d, want %d", got, len(healthy))
	}
	if conns := reg.ConnectionsFor("ghost"); len(conns) != 0 {
		t.Errorf("ghost still has %d registered conns, want 0", len(conns))
	}

	// A second broadcast must not fail on the pruned handle.
	bc.BroadcastAll(SystemEvent{Type: EventSystem, Message: "ping"})
	for i, c := range healthy {
		if got := len(c.sent()); got != 2 {
			t.Errorf("healthy conn %d received %d events after second broadcast, want 2", i, got)
		}
	}
}

func TestBroadcaster_NoDeduplication(t *testing.T) {
	reg := NewRegistry()
	bc := NewBroadcaster(reg, nil)
	conn := &fakeConn{}
	reg.Register(conn, "alice")

	event := SystemEvent{Type: EventSystem, Message: "same"}
	bc.BroadcastAll(event)
	bc.BroadcastAll(event)

	if got := len(conn.sent()); got != 2 {
		t.Errorf("conn received %d events, want 2 deliveries for 2 broadcasts", got)
	}
}
