// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// SQLite is embedded — a single file, no separate database server — which is
// all a single-campus deployment needs. We use modernc.org/sqlite, a pure Go
// translation of SQLite, so there is no CGo and cross-compilation stays
// painless.
//
// Dietary-preference and food-item columns are string slices; SQLite has no
// array type, so they are stored as JSON text and decoded at the scan
// boundary.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements every repository
// interface (users, events, notifications, rsvps) on one receiver.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
// Use ":memory:" in tests for a throwaway database.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Ping forces a real connection so a bad path or permissions issue
	// surfaces here instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in flight — needed for a
	// web server where requests hit the DB in parallel.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite; events/notifications/rsvps
	// all reference other tables, so turn them on.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Callers should defer this right
// after New so the WAL is flushed and the file lock released on shutdown.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent
// — safe to run on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			email               TEXT PRIMARY KEY,
			name                TEXT NOT NULL DEFAULT '',
			dietary_preferences TEXT NOT NULL DEFAULT '[]',
			role                TEXT NOT NULL DEFAULT 'user',
			created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id                  TEXT PRIMARY KEY,
			title               TEXT NOT NULL,
			description         TEXT NOT NULL DEFAULT '',
			location            TEXT NOT NULL DEFAULT '',
			latitude            REAL NOT NULL DEFAULT 0,
			longitude           REAL NOT NULL DEFAULT 0,
			campus              TEXT NOT NULL DEFAULT 'Other',
			status              TEXT NOT NULL DEFAULT 'plenty',
			created_by          TEXT NOT NULL REFERENCES users(email),
			foods               TEXT NOT NULL DEFAULT '[]',
			dietary_preferences TEXT NOT NULL DEFAULT '[]',
			duration_minutes    INTEGER NOT NULL,
			expires_at          DATETIME NOT NULL,
			created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_events_expires_at ON events(expires_at);
		CREATE INDEX IF NOT EXISTS idx_events_created_by ON events(created_by);
	`)
	if err != nil {
		return fmt.Errorf("creating events table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS notifications (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			event_id    TEXT NOT NULL REFERENCES events(id),
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating notifications table: %w", err)
	}

	// The application rejects duplicate RSVPs with a check-then-insert, but
	// the unique index makes the invariant hold even if two requests race.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS rsvps (
			id         TEXT PRIMARY KEY,
			event_id   TEXT NOT NULL REFERENCES events(id),
			user_email TEXT NOT NULL REFERENCES users(email),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_rsvps_event_user ON rsvps(event_id, user_email);
	`)
	if err != nil {
		return fmt.Errorf("creating rsvps table: %w", err)
	}

	return nil
}

// encodeStrings serializes a string slice for a TEXT column. nil encodes as
// "[]" so the column never holds SQL NULL.
func encodeStrings(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encoding string list: %w", err)
	}
	return string(data), nil
}

// decodeStrings parses a JSON-encoded TEXT column back into a string slice.
func decodeStrings(data string) ([]string, error) {
	if data == "" {
		return []string{}, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		return nil, fmt.Errorf("decoding string list: %w", err)
	}
	return list, nil
}
