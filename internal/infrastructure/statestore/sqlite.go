package statestore

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/orderexport/amazon-order-exporter/internal/domain/model"
)

// SQLiteStore persists export state as JSON blobs in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS export_state (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load returns the state stored under key, or ErrNotFound.
func (s *SQLiteStore) Load(key string) (*model.ExportState, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM export_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}

	var state model.ExportState
	if err := json.Unmarshal([]byte(value), &state); err != nil {
		return nil, fmt.Errorf("decoding state: %w", err)
	}
	return &state, nil
}

// Save upserts the state under key.
func (s *SQLiteStore) Save(key string, state *model.ExportState) error {
	value, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO export_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)`, key, string(value))
	if err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}

// Clear removes the state stored under key. Clearing a missing key is not an
// error.
func (s *SQLiteStore) Clear(key string) error {
	if _, err := s.db.Exec(`DELETE FROM export_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("clearing state: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
