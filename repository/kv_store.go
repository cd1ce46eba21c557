package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"troop-fundraiser/db"
)

// KVStore stores JSON blobs in the kv_store table
type KVStore struct {
	conn    *sql.DB
	dialect db.Dialect
}

// NewKVStore creates a KVStore over an already-migrated connection
func NewKVStore(conn *sql.DB, dialect db.Dialect) *KVStore {
	return &KVStore{conn: conn, dialect: dialect}
}

// Ensure KVStore implements KVStoreInterface
var _ KVStoreInterface = (*KVStore)(nil)

// Get returns the value stored under key
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := db.Rebind(s.dialect, `SELECT value FROM kv_store WHERE key = ?`)

	var value string
	err := s.conn.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

// Put inserts or replaces the value under key
func (s *KVStore) Put(ctx context.Context, key, value string) error {
	query := db.Rebind(s.dialect, `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
	if _, err := s.conn.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
