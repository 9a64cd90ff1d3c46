package roster

import "testing"

func TestRoster_RegisterAndLookup(t *testing.T) {
	ros := NewRoster()

	if _, ok := ros.Lookup("conn-a"); ok {
		t.Error("Expected lookup to miss before registration")
	}

	ros.Register(Entry{
		ConnectionID: "conn-a",
		Role:         "student",
		Room:         "kitchen-1",
		Username:     "alice",
	})

	entry, ok := ros.Lookup("conn-a")
	if !ok {
		t.Fatal("Expected lookup to hit after registration")
	}
	if entry.Role != "student" || entry.Room != "kitchen-1" || entry.Username != "alice" {
		t.Errorf("Unexpected entry: %+v", entry)
	}
	if entry.Seat != nil {
		t.Error("Expected no seat on an unseated entry")
	}
}

// Re-registering the same connection replaces the entry wholesale.
func TestRoster_RegisterReplaces(t *testing.T) {
	ros := NewRoster()

	seat := 3
	ros.Register(Entry{ConnectionID: "conn-a", Role: "student", Room: "kitchen-1", Seat: &seat})
	ros.Register(Entry{ConnectionID: "conn-a", Role: "host", Room: "kitchen-2"})

	entry, _ := ros.Lookup("conn-a")
	if entry.Role != "host" || entry.Room != "kitchen-2" {
		t.Errorf("Expected replacement entry, got %+v", entry)
	}
	if entry.Seat != nil {
		t.Error("Expected seat to be cleared by replacement")
	}

	if ros.Count() != 1 {
		t.Errorf("Expected 1 entry, got %d", ros.Count())
	}
}

func TestRoster_UpdateSeat(t *testing.T) {
	ros := NewRoster()
	ros.Register(Entry{ConnectionID: "conn-a", Role: "student", Room: "kitchen-1"})

	ros.UpdateSeat("conn-a", 2)

	entry, _ := ros.Lookup("conn-a")
	if entry.Seat == nil || *entry.Seat != 2 {
		t.Errorf("Expected seat 2, got %v", entry.Seat)
	}

	// Unknown connections are ignored.
	ros.UpdateSeat("conn-b", 1)
	if ros.Count() != 1 {
		t.Errorf("Expected UpdateSeat to not create entries, got %d", ros.Count())
	}
}

func TestRoster_Remove(t *testing.T) {
	ros := NewRoster()
	ros.Register(Entry{ConnectionID: "conn-a", Role: "student", Room: "kitchen-1"})

	ros.Remove("conn-a")
	if _, ok := ros.Lookup("conn-a"); ok {
		t.Error("Expected entry to be gone after remove")
	}

	// Removing an absent entry is a no-op.
	ros.Remove("conn-a")
	if ros.Count() != 0 {
		t.Errorf("Expected 0 entries, got %d", ros.Count())
	}
}
