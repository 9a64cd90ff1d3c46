package room

import (
	"errors"
	"testing"
)

func TestRegistry_CreateAndExists(t *testing.T) {
	reg := NewRegistry()

	if reg.Exists("kitchen-1") {
		t.Error("Expected room to not exist before creation")
	}

	reg.Create("kitchen-1", 5, "pasta-42")

	if !reg.Exists("kitchen-1") {
		t.Error("Expected room to exist after creation")
	}
}

// Capacity is always the requested student count plus one host slot.
func TestRegistry_CapacityIncludesHost(t *testing.T) {
	reg := NewRegistry()
	reg.Create("kitchen-1", 5, "")

	capacity, ok := reg.Capacity("kitchen-1")
	if !ok {
		t.Fatal("Expected room to exist")
	}
	if capacity != 6 {
		t.Errorf("Expected capacity 6, got %d", capacity)
	}

	maxSeats, ok := reg.MaxSeats("kitchen-1")
	if !ok {
		t.Fatal("Expected room to exist")
	}
	if maxSeats != 5 {
		t.Errorf("Expected 5 student seats, got %d", maxSeats)
	}
}

func TestRegistry_CapacityMissingRoom(t *testing.T) {
	reg := NewRegistry()

	if _, ok := reg.Capacity("nope"); ok {
		t.Error("Expected no capacity for missing room")
	}
	if _, ok := reg.MaxSeats("nope"); ok {
		t.Error("Expected no max seats for missing room")
	}
	if _, ok := reg.OccupiedSeats("nope"); ok {
		t.Error("Expected no occupied seats for missing room")
	}
}

// Re-creating a room under the same name discards the previous seat state.
func TestRegistry_CreateOverwrites(t *testing.T) {
	reg := NewRegistry()
	reg.Create("kitchen-1", 5, "old-recipe")

	if err := reg.ClaimSeat("kitchen-1", 2, "conn-a"); err != nil {
		t.Fatalf("Expected seat claim to succeed, got %v", err)
	}

	reg.Create("kitchen-1", 3, "new-recipe")

	occupied, ok := reg.OccupiedSeats("kitchen-1")
	if !ok {
		t.Fatal("Expected room to exist")
	}
	if len(occupied) != 0 {
		t.Errorf("Expected fresh room to have no occupied seats, got %v", occupied)
	}

	capacity, _ := reg.Capacity("kitchen-1")
	if capacity != 4 {
		t.Errorf("Expected overwritten capacity 4, got %d", capacity)
	}
}

func TestRegistry_ClaimSeat(t *testing.T) {
	reg := NewRegistry()
	reg.Create("kitchen-1", 3, "")

	if err := reg.ClaimSeat("kitchen-1", 0, "conn-a"); err != nil {
		t.Errorf("Expected seat 0 claim to succeed, got %v", err)
	}

	// Same seat twice is a conflict.
	if err := reg.ClaimSeat("kitchen-1", 0, "conn-b"); !errors.Is(err, ErrSeatOccupied) {
		t.Errorf("Expected ErrSeatOccupied, got %v", err)
	}

	// Valid range is [0, capacity-2]: capacity 4 means seats 0..2.
	if err := reg.ClaimSeat("kitchen-1", 3, "conn-b"); !errors.Is(err, ErrInvalidSeat) {
		t.Errorf("Expected ErrInvalidSeat for seat at capacity-1, got %v", err)
	}
	if err := reg.ClaimSeat("kitchen-1", -1, "conn-b"); !errors.Is(err, ErrInvalidSeat) {
		t.Errorf("Expected ErrInvalidSeat for negative seat, got %v", err)
	}
	if err := reg.ClaimSeat("kitchen-1", 2, "conn-b"); err != nil {
		t.Errorf("Expected last valid seat claim to succeed, got %v", err)
	}

	if err := reg.ClaimSeat("nope", 0, "conn-c"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("Expected ErrRoomNotFound, got %v", err)
	}
}

func TestRegistry_OccupiedSeatsSorted(t *testing.T) {
	reg := NewRegistry()
	reg.Create("kitchen-1", 10, "")

	for _, seat := range []int{7, 1, 4} {
		if err := reg.ClaimSeat("kitchen-1", seat, "conn"); err != nil {
			t.Fatalf("Expected seat %d claim to succeed, got %v", seat, err)
		}
	}

	occupied, _ := reg.OccupiedSeats("kitchen-1")
	want := []int{1, 4, 7}
	if len(occupied) != len(want) {
		t.Fatalf("Expected %v, got %v", want, occupied)
	}
	for i := range want {
		if occupied[i] != want[i] {
			t.Errorf("Expected occupied seats %v, got %v", want, occupied)
			break
		}
	}
}

func TestRegistry_ReleaseSeat(t *testing.T) {
	reg := NewRegistry()
	reg.Create("kitchen-1", 3, "")

	if err := reg.ClaimSeat("kitchen-1", 1, "conn-a"); err != nil {
		t.Fatalf("Expected seat claim to succeed, got %v", err)
	}

	reg.ReleaseSeat("kitchen-1", 1)

	if err := reg.ClaimSeat("kitchen-1", 1, "conn-b"); err != nil {
		t.Errorf("Expected released seat to be claimable, got %v", err)
	}

	// Releasing an unclaimed seat or a missing room never errors.
	reg.ReleaseSeat("kitchen-1", 2)
	reg.ReleaseSeat("nope", 0)
}

func TestRegistry_SessionLifecycle(t *testing.T) {
	reg := NewRegistry()
	reg.Create("kitchen-1", 3, "initial")

	if !reg.StartSession("kitchen-1", "pasta-42") {
		t.Error("Expected StartSession to succeed")
	}

	status, ok := reg.Status("kitchen-1")
	if !ok {
		t.Fatal("Expected room to exist")
	}
	if !status.SessionActive {
		t.Error("Expected session to be active")
	}
	if status.RecipeID != "pasta-42" {
		t.Errorf("Expected recipe to be overwritten to pasta-42, got %q", status.RecipeID)
	}

	if !reg.EndSession("kitchen-1") {
		t.Error("Expected EndSession to succeed")
	}

	status, _ = reg.Status("kitchen-1")
	if status.SessionActive {
		t.Error("Expected session to be inactive after end")
	}

	if reg.StartSession("nope", "x") {
		t.Error("Expected StartSession on missing room to fail")
	}
	if reg.EndSession("nope") {
		t.Error("Expected EndSession on missing room to fail")
	}
}

func TestRegistry_Status(t *testing.T) {
	reg := NewRegistry()
	reg.Create("kitchen-1", 4, "bread-7")

	if err := reg.ClaimSeat("kitchen-1", 2, "conn-a"); err != nil {
		t.Fatalf("Expected seat claim to succeed, got %v", err)
	}

	status, ok := reg.Status("kitchen-1")
	if !ok {
		t.Fatal("Expected room to exist")
	}
	if status.Capacity != 5 {
		t.Errorf("Expected capacity 5, got %d", status.Capacity)
	}
	if len(status.OccupiedSeats) != 1 || status.OccupiedSeats[0] != 2 {
		t.Errorf("Expected occupied seats [2], got %v", status.OccupiedSeats)
	}
	if status.SeatAssignments[2] != "conn-a" {
		t.Errorf("Expected seat 2 assigned to conn-a, got %q", status.SeatAssignments[2])
	}
	if status.RecipeID != "bread-7" {
		t.Errorf("Expected recipe bread-7, got %q", status.RecipeID)
	}

	if _, ok := reg.Status("nope"); ok {
		t.Error("Expected no status for missing room")
	}
}

func TestRegistry_Delete(t *testing.T) {
	reg := NewRegistry()
	reg.Create("kitchen-1", 3, "")

	reg.Delete("kitchen-1")
	if reg.Exists("kitchen-1") {
		t.Error("Expected room to be gone after delete")
	}

	// Deleting an absent room is a no-op.
	reg.Delete("kitchen-1")
}
