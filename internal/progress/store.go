package progress

import (
	"sync"
	"time"
)

// Record is the last progress report for one user: the step they are on,
// the recipe it belongs to, and when the report arrived.
type Record struct {
	CurrentStep int
	RecipeID    string
	LastUpdate  time.Time
}

// Store keeps per-user progress records. Records are created or
// overwritten on studentProgress and dropped on leave or disconnect.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewStore creates an empty progress store.
func NewStore() *Store {
	return &Store{
		records: make(map[string]Record),
	}
}

// Upsert records the latest progress report for a user, stamping the
// update time server-side.
func (s *Store) Upsert(userID string, currentStep int, recipeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[userID] = Record{
		CurrentStep: currentStep,
		RecipeID:    recipeID,
		LastUpdate:  time.Now(),
	}
}

// Get returns the progress record for a user.
func (s *Store) Get(userID string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[userID]
	return rec, ok
}

// Delete drops a user's record. Deleting an absent record is a silent
// no-op.
func (s *Store) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, userID)
}

// Count returns the number of tracked users.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}
