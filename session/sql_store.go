package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"troop-fundraiser/db"
)

// SQLStore keeps sessions in the session_values table so they survive restarts
type SQLStore struct {
	conn    *sql.DB
	dialect db.Dialect
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a store over an already-migrated connection
func NewSQLStore(conn *sql.DB, dialect db.Dialect) *SQLStore {
	return &SQLStore{conn: conn, dialect: dialect}
}

func (s *SQLStore) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	query := db.Rebind(s.dialect, `SELECT value FROM session_values WHERE session_id = ? AND key = ?`)
	var value string
	err := s.conn.QueryRowContext(ctx, query, sessionID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session value: %w", err)
	}
	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, sessionID, key, value string) error {
	query := db.Rebind(s.dialect, `
		INSERT INTO session_values (session_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (session_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
	if _, err := s.conn.ExecContext(ctx, query, sessionID, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write session value: %w", err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, sessionID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	query := db.Rebind(s.dialect, `DELETE FROM session_values WHERE session_id = ? AND key IN (`+placeholders+`)`)

	args := make([]interface{}, 0, len(keys)+1)
	args = append(args, sessionID)
	for _, key := range keys {
		args = append(args, key)
	}
	if _, err := s.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete session values: %w", err)
	}
	return nil
}

func (s *SQLStore) Clear(ctx context.Context, sessionID string) error {
	query := db.Rebind(s.dialect, `DELETE FROM session_values WHERE session_id = ?`)
	if _, err := s.conn.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Prune removes sessions whose newest value is older than maxIdle and returns the number of values removed.
func (s *SQLStore) Prune(ctx context.Context, maxIdle time.Duration) (int, error) {
	query := db.Rebind(s.dialect, `
		DELETE FROM session_values WHERE session_id IN (
			SELECT session_id FROM session_values GROUP BY session_id HAVING MAX(updated_at) < ?
		)
	`)
	result, err := s.conn.ExecContext(ctx, query, time.Now().UTC().Add(-maxIdle))
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}
