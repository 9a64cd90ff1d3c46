package websocket

import (
	"sync"

	"cookalong/pkg/interfaces"
)

// Registry tracks live connections and the transport-level room groups
// used for broadcast fan-out. It implements interfaces.Membership for the
// event router; seat and role bookkeeping live in the roster and room
// registries, never here.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Connection                  // connection id -> Connection
	rooms map[string]map[string]interfaces.Conn   // room -> connection id -> Conn
}

// NewRegistry creates an empty transport registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]*Connection),
		rooms: make(map[string]map[string]interfaces.Conn),
	}
}

// AddConnection tracks a freshly admitted connection.
func (r *Registry) AddConnection(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[c.ID()] = c
}

// RemoveConnection drops a connection from global tracking and scrubs it
// out of any room group it still occupies. Idempotent.
func (r *Registry) RemoveConnection(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, c.ID())

	for roomName, members := range r.rooms {
		if _, ok := members[c.ID()]; ok {
			delete(members, c.ID())
			if len(members) == 0 {
				delete(r.rooms, roomName)
			}
		}
	}
}

// Join admits a connection to a room's broadcast group.
func (r *Registry) Join(room string, c interfaces.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms[room] == nil {
		r.rooms[room] = make(map[string]interfaces.Conn)
	}
	r.rooms[room][c.ID()] = c
}

// Leave removes a connection from a room's broadcast group, dropping the
// group once empty. Leaving a room the connection is not in is a no-op.
func (r *Registry) Leave(room string, c interfaces.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		return
	}

	delete(members, c.ID())
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

// Members returns the current broadcast group of a room.
func (r *Registry) Members(room string) []interfaces.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[room]
	out := make([]interfaces.Conn, 0, len(members))
	for _, c := range members {
		out = append(out, c)
	}
	return out
}

// Size returns the current membership count of a room.
func (r *Registry) Size(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms[room])
}

// Stats returns connection and room counts for monitoring.
func (r *Registry) Stats() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[string]int{
		"total_connections": len(r.conns),
		"active_rooms":      len(r.rooms),
	}
}
