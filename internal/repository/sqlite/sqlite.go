package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// Schema is the DDL of the local photo store.
const Schema = `
CREATE TABLE IF NOT EXISTS photos (
	id INTEGER PRIMARY KEY,
	utc_unix_timestamp INTEGER,
	rgb_path TEXT,
	depth_bytes BLOB,
	depth_width INTEGER,
	depth_height INTEGER,
	confidence_bytes BLOB,
	confidence_width INTEGER,
	confidence_height INTEGER,
	estimated_length REAL DEFAULT 0,
	fish_found INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_photos_timestamp ON photos(utc_unix_timestamp);
`

// DB wraps the SQLite database connection with thread-safe access.
type DB struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// Open opens (creating if needed) the database file at dbPath and verifies
// the connection. The schema is not touched; call EnsureSchema.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &DB{conn: conn, path: dbPath}, nil
}

// New opens the database and ensures the schema exists.
func New(dbPath string) (*DB, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the photos table if it doesn't exist.
func (db *DB) EnsureSchema() error {
	db.Lock()
	defer db.Unlock()

	_, err := db.conn.Exec(Schema)
	return err
}

// Path returns the database file location.
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection for use by repositories.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Lock acquires a write lock.
func (db *DB) Lock() {
	db.mu.Lock()
}

// Unlock releases the write lock.
func (db *DB) Unlock() {
	db.mu.Unlock()
}

// RLock acquires a read lock.
func (db *DB) RLock() {
	db.mu.RLock()
}

// RUnlock releases the read lock.
func (db *DB) RUnlock() {
	db.mu.RUnlock()
}
