// Package localstore is the small key-value substrate the session uses to
// survive process restarts. The primary implementation is a SQLite file; a
// process-local in-memory store serves as the fallback when no writable
// directory is available. Which one to use is decided once at startup by
// Open — callers only ever see the Store interface.
package localstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// Store is a string key-value store. Get reports ok=false for a missing
// key; Delete of a missing key is a no-op.
type Store interface {
	Set(name, value string) error
	Get(name string) (value string, ok bool, err error)
	Delete(name string) error
	Close() error
}

// Open selects a store for the given directory: SQLite when the directory
// is usable, the in-memory fallback otherwise. The probe happens exactly
// once here; nothing downstream branches on the backing implementation.
func Open(dir string) (Store, error) {
	if dir != "" {
		s, err := OpenSQLite(dir)
		if err == nil {
			return s, nil
		}
	}
	return NewMemory(), nil
}

// SQLiteStore persists key-value pairs in dir/local.db.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the SQLite store at dir/local.db.
func OpenSQLite(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating local store dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "local.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		name       TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating kv table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Set stores or replaces a value.
func (s *SQLiteStore) Set(name, value string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO kv (name, value) VALUES (?, ?)`,
		name, value,
	)
	return err
}

// Get retrieves a value.
func (s *SQLiteStore) Get(name string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE name = ?`, name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Delete removes a value.
func (s *SQLiteStore) Delete(name string) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE name = ?`, name)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// MemoryStore is the in-memory fallback. Contents vanish with the process.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{m: make(map[string]string)}
}

func (s *MemoryStore) Set(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[name] = value
	return nil
}

func (s *MemoryStore) Get(name string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[name]
	return v, ok, nil
}

func (s *MemoryStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, name)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
