package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"cookalong/pkg/interfaces"
	"cookalong/pkg/types"
)

// Manager implements the UserStore interface over SQLite. All writes are
// funneled through a single goroutine; SQLite serializes writers anyway,
// so queueing them avoids busy-lock churn under concurrent REST calls.
type Manager struct {
	db           *sql.DB
	writeChannel chan writeOperation
	shutdown     chan struct{}
	wg           sync.WaitGroup
	closed       bool
	mu           sync.RWMutex
	log          *logrus.Entry
}

// writeOperation represents one queued write.
type writeOperation struct {
	operation func(*sql.DB) error
	result    chan error
}

// NewManager opens the database, applies pragmas and the schema, and
// starts the writer goroutine.
func NewManager(path string) (*Manager, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	m := &Manager{
		db:           db,
		writeChannel: make(chan writeOperation, 100),
		shutdown:     make(chan struct{}),
		log:          logrus.WithField("component", "database"),
	}

	m.wg.Add(1)
	go m.writeLoop()

	return m, nil
}

// writeLoop processes all writes on a single goroutine, retrying each
// failed write once after a short backoff.
func (m *Manager) writeLoop() {
	defer m.wg.Done()

	for {
		select {
		case op := <-m.writeChannel:
			err := op.operation(m.db)
			if err != nil {
				m.log.WithError(err).Warn("write failed, retrying")
				time.Sleep(time.Second)
				err = op.operation(m.db)
				if err != nil {
					m.log.WithError(err).Error("write failed after retry")
				}
			}
			op.result <- err

		case <-m.shutdown:
			m.log.Info("write loop shutting down")
			return
		}
	}
}

// executeWrite queues a write and waits for it to complete.
func (m *Manager) executeWrite(operation func(*sql.DB) error) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return errors.New("database manager is closed")
	}
	m.mu.RUnlock()

	result := make(chan error, 1)

	select {
	case m.writeChannel <- writeOperation{operation: operation, result: result}:
		return <-result
	case <-time.After(30 * time.Second):
		return errors.New("write operation timeout")
	case <-m.shutdown:
		return errors.New("database manager is shutting down")
	}
}

// CreateUser inserts a user record.
func (m *Manager) CreateUser(ctx context.Context, user *types.User) error {
	return m.executeWrite(func(db *sql.DB) error {
		query := `
			INSERT INTO users (id, username, password_hash, permission, created_at)
			VALUES (?, ?, ?, ?, ?)
		`
		_, err := db.ExecContext(ctx, query,
			user.ID,
			user.Username,
			user.PasswordHash,
			user.Permission,
			user.CreatedAt,
		)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return interfaces.ErrUsernameTaken
			}
			return fmt.Errorf("failed to insert user: %w", err)
		}
		return nil
	})
}

// GetUser retrieves a user by id.
func (m *Manager) GetUser(ctx context.Context, id string) (*types.User, error) {
	return m.queryUser(ctx, `
		SELECT id, username, password_hash, permission, created_at
		FROM users
		WHERE id = ?
	`, id)
}

// GetUserByUsername retrieves a user by username.
func (m *Manager) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	return m.queryUser(ctx, `
		SELECT id, username, password_hash, permission, created_at
		FROM users
		WHERE username = ?
	`, username)
}

func (m *Manager) queryUser(ctx context.Context, query string, arg any) (*types.User, error) {
	row := m.db.QueryRowContext(ctx, query, arg)

	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Permission,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, interfaces.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// ListUsers returns all user records, oldest first.
func (m *Manager) ListUsers(ctx context.Context) ([]*types.User, error) {
	query := `
		SELECT id, username, password_hash, permission, created_at
		FROM users
		ORDER BY created_at ASC
	`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []*types.User
	for rows.Next() {
		var user types.User
		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.PasswordHash,
			&user.Permission,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, &user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

// UpdateUser overwrites a user's mutable fields.
func (m *Manager) UpdateUser(ctx context.Context, user *types.User) error {
	return m.executeWrite(func(db *sql.DB) error {
		query := `
			UPDATE users
			SET username = ?, password_hash = ?, permission = ?
			WHERE id = ?
		`

		res, err := db.ExecContext(ctx, query,
			user.Username,
			user.PasswordHash,
			user.Permission,
			user.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read update result: %w", err)
		}
		if affected == 0 {
			return interfaces.ErrUserNotFound
		}

		return nil
	})
}

// DeleteUser removes a user record.
func (m *Manager) DeleteUser(ctx context.Context, id string) error {
	return m.executeWrite(func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read delete result: %w", err)
		}
		if affected == 0 {
			return interfaces.ErrUserNotFound
		}

		return nil
	})
}

// HealthCheck validates database connectivity.
func (m *Manager) HealthCheck(ctx context.Context) error {
	if err := m.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	rows, err := m.db.QueryContext(ctx, "SELECT COUNT(*) FROM users LIMIT 1")
	if err != nil {
		return fmt.Errorf("database read test failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return rows.Err()
}

// Close shuts the manager down, draining the write loop first.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	close(m.shutdown)
	m.wg.Wait()

	if err := m.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// applyPragmas applies SQLite performance settings.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma %s: %w", pragma, err)
		}
	}

	return nil
}
