package realtime

import "sync"

// Registry maps live connections to usernames. A username may own any number
// of connections (multiple tabs or devices); a connection maps to exactly one
// username. Every session goroutine mutates the registry concurrently, so all
// operations take a single atomic step under the mutex.
type Registry struct {
	mu    sync.RWMutex
	conns map[Conn]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[Conn]string),
	}
}

// Register adds a connection under the given username. Registering a handle
// that is already present is a caller error; the username mapping is simply
// overwritten.
func (r *Registry) Register(conn Conn, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn] = username
}

// Deregister removes the entry for conn if present and returns the username
// it was registered under. Removing an unknown connection is a no-op.
func (r *Registry) Deregister(conn Conn) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	username, ok := r.conns[conn]
	if !ok {
		return "", false
	}
	delete(r.conns, conn)
	return username, true
}

// ConnectionsFor returns all live connections registered under username,
// possibly none.
func (r *Registry) ConnectionsFor(username string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var conns []Conn
	for conn, name := range r.conns {
		if name == username {
			conns = append(conns, conn)
		}
	}
	return conns
}

// Usernames returns a snapshot of the distinct usernames currently present.
func (r *Registry) Usernames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, len(r.conns))
	names := make([]string, 0, len(r.conns))
	for _, name := range r.conns {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// UserCount returns the number of distinct online usernames.
func (r *Registry) UserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, len(r.conns))
	for _, name := range r.conns {
		seen[name] = true
	}
	return len(seen)
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// snapshot returns the current connections except exclude. Broadcast iterates
// over this copy so that pruning dead connections cannot corrupt an
// in-progress iteration.
func (r *Registry) snapshot(exclude Conn) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]Conn, 0, len(r.conns))
	for conn := range r.conns {
		if conn == exclude {
			continue
		}
		conns = append(conns, conn)
	}
	return conns
}
