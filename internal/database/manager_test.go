package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"cookalong/pkg/interfaces"
	"cookalong/pkg/types"
)

func testManager(t *testing.T) *Manager {
	t.Helper()

	m, err := NewManager(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	t.Cleanup(func() {
		if err := m.Close(); err != nil {
			t.Errorf("Failed to close manager: %v", err)
		}
	})

	return m
}

func testUser(id, username string) *types.User {
	return &types.User{
		ID:           id,
		Username:     username,
		PasswordHash: "$2a$10$fakehash",
		Permission:   "student",
		CreatedAt:    time.Now(),
	}
}

func TestManager_CreateAndGetUser(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	if err := m.CreateUser(ctx, testUser("user-1", "alice")); err != nil {
		t.Fatalf("Expected create to succeed, got %v", err)
	}

	user, err := m.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("Expected get to succeed, got %v", err)
	}
	if user.Username != "alice" || user.Permission != "student" {
		t.Errorf("Unexpected user: %+v", user)
	}

	byName, err := m.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("Expected get by username to succeed, got %v", err)
	}
	if byName.ID != "user-1" {
		t.Errorf("Expected user-1, got %q", byName.ID)
	}
}

func TestManager_GetUserNotFound(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	if _, err := m.GetUser(ctx, "nope"); err != interfaces.ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
	if _, err := m.GetUserByUsername(ctx, "nope"); err != interfaces.ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestManager_DuplicateUsername(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	if err := m.CreateUser(ctx, testUser("user-1", "alice")); err != nil {
		t.Fatalf("Expected first create to succeed, got %v", err)
	}

	if err := m.CreateUser(ctx, testUser("user-2", "alice")); err != interfaces.ErrUsernameTaken {
		t.Errorf("Expected ErrUsernameTaken, got %v", err)
	}
}

func TestManager_ListUsers(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	users, err := m.ListUsers(ctx)
	if err != nil {
		t.Fatalf("Expected list to succeed, got %v", err)
	}
	if len(users) != 0 {
		t.Errorf("Expected empty list, got %d users", len(users))
	}

	first := testUser("user-1", "alice")
	first.CreatedAt = time.Now().Add(-time.Hour)
	if err := m.CreateUser(ctx, first); err != nil {
		t.Fatalf("Expected create to succeed, got %v", err)
	}
	if err := m.CreateUser(ctx, testUser("user-2", "bob")); err != nil {
		t.Fatalf("Expected create to succeed, got %v", err)
	}

	users, err = m.ListUsers(ctx)
	if err != nil {
		t.Fatalf("Expected list to succeed, got %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("Expected 2 users, got %d", len(users))
	}
	if users[0].Username != "alice" || users[1].Username != "bob" {
		t.Errorf("Expected oldest first, got %q then %q", users[0].Username, users[1].Username)
	}
}

func TestManager_UpdateUser(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	if err := m.CreateUser(ctx, testUser("user-1", "alice")); err != nil {
		t.Fatalf("Expected create to succeed, got %v", err)
	}

	updated := testUser("user-1", "alice2")
	updated.Permission = "host"
	if err := m.UpdateUser(ctx, updated); err != nil {
		t.Fatalf("Expected update to succeed, got %v", err)
	}

	user, err := m.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("Expected get to succeed, got %v", err)
	}
	if user.Username != "alice2" || user.Permission != "host" {
		t.Errorf("Expected updated fields, got %+v", user)
	}

	if err := m.UpdateUser(ctx, testUser("nope", "x")); err != interfaces.ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestManager_DeleteUser(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	if err := m.CreateUser(ctx, testUser("user-1", "alice")); err != nil {
		t.Fatalf("Expected create to succeed, got %v", err)
	}

	if err := m.DeleteUser(ctx, "user-1"); err != nil {
		t.Fatalf("Expected delete to succeed, got %v", err)
	}

	if _, err := m.GetUser(ctx, "user-1"); err != interfaces.ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound after delete, got %v", err)
	}

	if err := m.DeleteUser(ctx, "user-1"); err != interfaces.ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound on double delete, got %v", err)
	}
}

func TestManager_HealthCheck(t *testing.T) {
	m := testManager(t)

	for i := 0; i < 20; i++ {
		if err := m.HealthCheck(context.Background()); err != nil {
			t.Fatalf("Expected healthy database, got %v", err)
		}
	}

	// Every probe returns its pooled connection.
	if inUse := m.db.Stats().InUse; inUse != 0 {
		t.Errorf("Expected no connections held after health checks, got %d in use", inUse)
	}
}

func TestManager_CloseIsIdempotent(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := m.Close(); err != nil {
		t.Errorf("Expected close to succeed, got %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("Expected second close to be a no-op, got %v", err)
	}

	if err := m.CreateUser(context.Background(), testUser("user-1", "alice")); err == nil {
		t.Error("Expected writes after close to fail")
	}
}
