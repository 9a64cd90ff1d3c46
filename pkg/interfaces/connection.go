package interfaces

// Conn is one live client channel. The coordination engine only needs to
// address a connection, push events to it, and force it closed; the
// transport wrapper lives in internal/websocket.
type Conn interface {
	// ID returns the server-assigned connection identifier.
	ID() string

	// Emit writes one outbound event frame to this connection.
	Emit(event string, data any) error

	// Close tears the underlying transport down. Safe to call twice.
	Close() error
}

// Membership tracks transport-level room occupancy: which connections are
// currently admitted to a room's broadcast group. Seat and role bookkeeping
// live elsewhere; this is only the fan-out group.
type Membership interface {
	Join(room string, c Conn)
	Leave(room string, c Conn)
	Members(room string) []Conn
	Size(room string) int
}
