package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver
)

// SQLiteStore persists every key in a single kv table.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) the database file and ensures the kv
// table exists.
func NewSQLiteStore(file string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite", file)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}

	createKVTable := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)
	`
	if _, err := db.Exec(createKVTable); err != nil {
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get returns the value stored under key.
func (s *SQLiteStore) Get(key string) (string, bool) {
	var value string
	if err := s.db.Get(&value, "SELECT value FROM kv WHERE key = ?", key); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("kv read failed",
				slog.String("key", key),
				slog.Any("error", err),
			)
		}
		return "", false
	}
	return value, true
}

// Set stores value under key. Failures are logged and swallowed; callers
// treat a failed write as "did not happen".
func (s *SQLiteStore) Set(key, value string) {
	upsert := "INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value"
	if _, err := s.db.Exec(upsert, key, value); err != nil {
		slog.Error("kv write failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return
	}

	slog.Debug("kv written",
		slog.String("key", key),
		slog.Int("bytes", len(value)),
	)
}

// Remove drops the record for key.
func (s *SQLiteStore) Remove(key string) {
	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		slog.Error("kv delete failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return
	}

	slog.Debug("kv removed",
		slog.String("key", key),
	)
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
