package database

import (
	"database/sql"
	"fmt"
)

// ensureSchema creates the user table if it is not present. Room and seat
// state is in-memory only and has no tables.
func ensureSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			permission    TEXT NOT NULL DEFAULT 'student',
			created_at    TIMESTAMP NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	return nil
}
