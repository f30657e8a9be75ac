package realtime

import (
	"sort"
	"testing"
)

func TestRegistry_RegisterAndDeregister(t *testing.T) {
	reg := NewRegistry()
	conn := &fakeConn{}

	reg.Register(conn, "alice")
	if got := reg.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}

	username, ok := reg.Deregister(conn)
	if !ok {
		t.Fatal("Deregister() ok = false, want true")
	}
	if username != "alice" {
		t.Errorf("Deregister() username = %q, want %q", username, "alice")
	}
	if got := reg.Len(); got != 0 {
		t.Errorf("Len() after deregister = %d, want 0", got)
	}
}

func TestRegistry_DeregisterUnknownIsNoOp(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeConn{}, "alice")

	username, ok := reg.Deregister(&fakeConn{})
	if ok {
		t.Error("Deregister() of unknown conn ok = true, want false")
	}
	if username != "" {
		t.Errorf("Deregister() of unknown conn username = %q, want empty", username)
	}
	if got := reg.Len(); got != 1 {
		t.Errorf("Len() = %d, registry should be unchanged", got)
	}
}

func TestRegistry_MultipleConnectionsPerUsername(t *testing.T) {
	reg := NewRegistry()
	tab1 := &fakeConn{}
	tab2 := &fakeConn{}
	reg.Register(tab1, "alice")
	reg.Register(tab2, "alice")
	reg.Register(&fakeConn{}, "bob")

	if got := len(reg.ConnectionsFor("alice")); got != 2 {
		t.Errorf("ConnectionsFor(alice) = %d conns, want 2", got)
	}
	if got := len(reg.ConnectionsFor("carol")); got != 0 {
		t.Errorf("ConnectionsFor(carol) = %d conns, want 0", got)
	}
	if got := reg.UserCount(); got != 2 {
		t.Errorf("UserCount() = %d, want 2", got)
	}
	if got := reg.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
}

func TestRegistry_UsernamesNeverStale(t *testing.T) {
	reg := NewRegistry()

	type step struct {
		register bool
		conn     *fakeConn
		username string
	}

	a1, a2, b1 := &fakeConn{}, &fakeConn{}, &fakeConn{}
	steps := []step{
		{register: true, conn: a1, username: "alice"},
		{register: true, conn: b1, username: "bob"},
		{register: true, conn: a2, username: "alice"},
		{register: false, conn: a1},
		{register: false, conn: b1},
		{register: false, conn: a2},
	}
	want := [][]string{
		{"alice"},
		{"alice", "bob"},
		{"alice", "bob"},
		{"alice", "bob"}, // alice still has a2
		{"alice"},
		{},
	}

	for i, st := range steps {
		if st.register {
			reg.Register(st.conn, st.username)
		} else {
			reg.Deregister(st.conn)
		}

		got := reg.Usernames()
		sort.Strings(got)
		if len(got) != len(want[i]) {
			t.Fatalf("step %d: Usernames() = %v, want %v", i, got, want[i])
		}
		for j := range got {
			if got[j] != want[i][j] {
				t.Fatalf("step %d: Usernames() = %v, want %v", i, got, want[i])
			}
		}
	}
}

func BenchmarkRegistry_Usernames(b *testing.B) {
	reg := NewRegistry()
	for i := 0; i < 100; i++ {
		reg.Register(&fakeConn{}, "user-"+string(rune('a'+i%26)))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.Usernames()
	}
}
