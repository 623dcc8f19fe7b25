// Package sqlite implements the repository interfaces on SQLite using the
// pure-Go modernc.org/sqlite driver (no cgo).
//
// The default path ":memory:" keeps every account and grid for the lifetime
// of the process only. Pointing DB_PATH at a file makes them durable without
// any code change.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DB wraps the connection pool and implements repository.UserRepository and
// repository.GridRepository.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection: SQLite has a single writer anyway, and for ":memory:"
	// every extra connection would open a separate, empty database.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

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

// Close releases the connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. Every statement is idempotent so it runs on
// each start.
//
// floors is keyed by username rather than users.id: a valid session cookie
// for a user the store no longer knows (e.g. after a restart with a
// persistent SESSION_SECRET) still gets a grid, the same as a fresh login.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS floors (
			username  TEXT    NOT NULL,
			block     TEXT    NOT NULL CHECK (length(block) = 1 AND block BETWEEN 'A' AND 'Z'),
			floor     INTEGER NOT NULL CHECK (floor >= 0 AND floor < 7),
			completed INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (username, block, floor)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating floors table: %w", err)
	}

	return nil
}
