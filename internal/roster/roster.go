package roster

import "sync"

// Entry records what the engine knows about one live connection after it
// joined a room: its role, room, display name and, for seated students,
// the claimed seat index.
type Entry struct {
	ConnectionID string
	Role         string
	Room         string
	Username     string
	Seat         *int
}

// Roster is the connection registry: connection id -> Entry. No uniqueness
// is enforced on (role=host, room); a room can hold zero or several
// connections registered as host.
type Roster struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{
		entries: make(map[string]Entry),
	}
}

// Register records or replaces the entry for a connection.
func (r *Roster) Register(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[e.ConnectionID] = e
}

// Lookup returns the entry for a connection.
func (r *Roster) Lookup(connectionID string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[connectionID]
	return e, ok
}

// UpdateSeat overwrites the seat index on an existing entry. Unknown
// connections are ignored.
func (r *Roster) UpdateSeat(connectionID string, seat int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[connectionID]
	if !ok {
		return
	}

	e.Seat = &seat
	r.entries[connectionID] = e
}

// Remove deletes the entry for a connection. Removing an absent entry is a
// silent no-op.
func (r *Roster) Remove(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, connectionID)
}

// Count returns the number of registered connections.
func (r *Roster) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}
