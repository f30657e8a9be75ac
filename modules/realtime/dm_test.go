package realtime

import (
	"context"
	"testing"
)

func TestRouter_DeliversToAllReceiverConnections(t *testing.T) {
	reg := NewRegistry()
	store := &fakeStore{}
	router := NewRouter(reg, store, nil)

	phone := &fakeConn{}
	laptop := &fakeConn{}
	bystander := &fakeConn{}
	reg.Register(phone, "bob")
	reg.Register(laptop, "bob")
	reg.Register(bystander, "carol")

	delivered, err := router.Route(context.Background(), "alice", "bob", "hi bob")
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if !delivered {
		t.Error("Route() delivered = false, want true")
	}

	for i, conn := range []*fakeConn{phone, laptop} {
		events := conn.sent()
		if len(events) != 1 {
			t.Fatalf("receiver conn %d got %d events, want 1", i, len(events))
		}
		pm, ok := events[0].(PrivateMessageEvent)
		if !ok {
			t.Fatalf("receiver conn %d got %T, want PrivateMessageEvent", i, events[0])
		}
		if pm.Sender != "alice" || pm.Receiver != "bob" || pm.Message != "hi bob" {
			t.Errorf("event = %+v, wrong fields", pm)
		}
	}
	if got := len(bystander.sent()); got != 0 {
		t.Errorf("bystander got %d events, want 0", got)
	}
	if got := store.privateCount(); got != 1 {
		t.Errorf("persisted %d private messages, want 1", got)
	}
}

func TestRouter_NoLiveRecipientStillPersists(t *testing.T) {
	reg := NewRegistry()
	store := &fakeStore{}
	router := NewRouter(reg, store, nil)

	delivered, err := router.Route(context.Background(), "alice", "offline-bob", "you there?")
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if delivered {
		t.Error("Route() delivered = true, want false for offline receiver")
	}
	if got := store.privateCount(); got != 1 {
		t.Errorf("persisted %d private messages, want exactly 1", got)
	}
}

func TestRouter_DeadConnectionPrunedDeliveryContinues(t *testing.T) {
	reg := NewRegistry()
	store := &fakeStore{}
	router := NewRouter(reg, store, nil)

	dead := &fakeConn{fail: true}
	alive := &fakeConn{}
	reg.Register(dead, "bob")
	reg.Register(alive, "bob")

	delivered, err := router.Route(context.Background(), "alice", "bob", "hi")
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if !delivered {
		t.Error("Route() delivered = false, want true")
	}
	if got := len(alive.sent()); got != 1 {
		t.Errorf("alive conn got %d events, want 1", got)
	}
	if got := len(reg.ConnectionsFor("bob")); got != 1 {
		t.Errorf("bob has %d registered conns after prune, want 1", got)
	}
	if got := store.privateCount(); got != 1 {
		t.Errorf("persisted %d private messages, want 1", got)
	}
}

func TestRouter_PersistenceFailureReturnsError(t *testing.T) {
	reg := NewRegistry()
	store := &fakeStore{failInserts: true}
	router := NewRouter(reg, store, nil)

	conn := &fakeConn{}
	reg.Register(conn, "bob")

	delivered, err := router.Route(context.Background(), "alice", "bob", "hi")
	if err == nil {
		t.Fatal("Route() error = nil, want persistence error")
	}
	// Live delivery already happened and is not rolled back.
	if !delivered {
		t.Error("Route() delivered = false, want true")
	}
	if got := len(conn.sent()); got != 1 {
		t.Errorf("receiver got %d events, want 1 despite persistence failure", got)
	}
}
