package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SnapshotRepository provides key-value access to persisted snapshots.
// Keys are opaque strings derived from the owning identity; values are
// serialized JSON documents.
type SnapshotRepository struct {
	conn *sql.DB
}

// NewSnapshotRepository creates a repository bound to the given connection.
func NewSnapshotRepository(conn *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{conn: conn}
}

// Get returns the value stored under key. The second return is false when
// no snapshot exists for the key.
func (r *SnapshotRepository) Get(key string) (string, bool, error) {
	var value string
	err := r.conn.QueryRow("SELECT value FROM snapshots WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read snapshot %q: %w", key, err)
	}
	return value, true, nil
}

// Set writes the value under key, replacing any previous snapshot.
func (r *SnapshotRepository) Set(key, value string) error {
	_, err := r.conn.Exec(
		`INSERT INTO snapshots (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("write snapshot %q: %w", key, err)
	}
	return nil
}
