package room

import (
	"sort"
	"sync"

	"github.com/samber/lo"
)

// state is the mutable record for one active room. occupied and seats are
// kept strictly in step: a seat index is in occupied iff it keys seats.
type state struct {
	capacity      int // requested student seats + 1 for the host
	occupied      map[int]struct{}
	seats         map[int]string // seat index -> connection id
	recipeID      string
	sessionActive bool
}

// Status is a read-only snapshot of a room, returned to hosts.
type Status struct {
	Capacity        int
	OccupiedSeats   []int
	SeatAssignments map[int]string
	RecipeID        string
	SessionActive   bool
}

// Registry owns all room state. The raw maps are never exposed; every
// mutation goes through an operation that preserves the seat invariants.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*state
}

// NewRegistry creates an empty room registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*state),
	}
}

// Create makes a room with capacity maxClients+1, unconditionally
// overwriting any room already registered under the same name. Previous
// occupants are orphaned; their later teardown is a no-op against the
// fresh state.
func (r *Registry) Create(name string, maxClients int, recipeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rooms[name] = &state{
		capacity:      maxClients + 1,
		occupied:      make(map[int]struct{}),
		seats:         make(map[int]string),
		recipeID:      recipeID,
		sessionActive: false,
	}
}

// Exists reports whether a room is registered.
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rooms[name]
	return ok
}

// Delete removes a room. Removing an absent room is a silent no-op.
func (r *Registry) Delete(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rooms, name)
}

// Capacity returns the room's total capacity (students + host).
func (r *Registry) Capacity(name string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.rooms[name]
	if !ok {
		return 0, false
	}
	return st.capacity, true
}

// MaxSeats returns the number of student seats, capacity minus the host.
func (r *Registry) MaxSeats(name string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.rooms[name]
	if !ok {
		return 0, false
	}
	return st.capacity - 1, true
}

// OccupiedSeats returns the claimed seat indices in ascending order.
func (r *Registry) OccupiedSeats(name string) ([]int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.rooms[name]
	if !ok {
		return nil, false
	}

	seats := lo.Keys(st.occupied)
	sort.Ints(seats)
	return seats, true
}

// ClaimSeat assigns a seat to a connection. A seat index is valid iff
// 0 <= seat < capacity-1; a valid seat can be held by at most one
// connection at a time.
func (r *Registry) ClaimSeat(name string, seat int, connectionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.rooms[name]
	if !ok {
		return ErrRoomNotFound
	}

	if seat < 0 || seat >= st.capacity-1 {
		return ErrInvalidSeat
	}

	if _, taken := st.occupied[seat]; taken {
		return ErrSeatOccupied
	}

	st.occupied[seat] = struct{}{}
	st.seats[seat] = connectionID
	return nil
}

// ReleaseSeat frees a seat. Releasing an unclaimed seat or a seat in an
// absent room is a silent no-op so that leave and disconnect teardown can
// both run against the same connection.
func (r *Registry) ReleaseSeat(name string, seat int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.rooms[name]
	if !ok {
		return
	}

	delete(st.occupied, seat)
	delete(st.seats, seat)
}

// StartSession marks the room active and overwrites its recipe id.
// Returns false when the room does not exist.
func (r *Registry) StartSession(name, recipeID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.rooms[name]
	if !ok {
		return false
	}

	st.sessionActive = true
	st.recipeID = recipeID
	return true
}

// EndSession clears the active flag. Returns false when the room does not
// exist.
func (r *Registry) EndSession(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.rooms[name]
	if !ok {
		return false
	}

	st.sessionActive = false
	return true
}

// Status returns a copy of the full room state for host introspection.
func (r *Registry) Status(name string) (Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.rooms[name]
	if !ok {
		return Status{}, false
	}

	seats := lo.Keys(st.occupied)
	sort.Ints(seats)

	assignments := make(map[int]string, len(st.seats))
	for seat, connID := range st.seats {
		assignments[seat] = connID
	}

	return Status{
		Capacity:        st.capacity,
		OccupiedSeats:   seats,
		SeatAssignments: assignments,
		RecipeID:        st.recipeID,
		SessionActive:   st.sessionActive,
	}, true
}
