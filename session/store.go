// Package session keeps per-browser state (attribution, cart, admin login)
// behind a small key/value interface so handlers never touch cookies or globals directly.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store holds string values per session id
type Store interface {
	Get(ctx context.Context, sessionID, key string) (string, bool, error)
	Set(ctx context.Context, sessionID, key, value string) error
	Delete(ctx context.Context, sessionID string, keys ...string) error
	Clear(ctx context.Context, sessionID string) error
	// Prune drops sessions idle for longer than maxIdle
	Prune(ctx context.Context, maxIdle time.Duration) (int, error)
}

// Values is the view of a single session handed to services
type Values interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
}

type boundValues struct {
	store Store
	id    string
}

// Bind returns the Values of one session.
func Bind(store Store, sessionID string) Values {
	return &boundValues{store: store, id: sessionID}
}

func (b *boundValues) Get(ctx context.Context, key string) (string, bool, error) {
	return b.store.Get(ctx, b.id, key)
}

func (b *boundValues) Set(ctx context.Context, key, value string) error {
	return b.store.Set(ctx, b.id, key, value)
}

func (b *boundValues) Delete(ctx context.Context, keys ...string) error {
	return b.store.Delete(ctx, b.id, keys...)
}

func (b *boundValues) Clear(ctx context.Context) error {
	return b.store.Clear(ctx, b.id)
}

// GetJSON decodes the value under key into out. found is false when the key is absent.
func GetJSON(ctx context.Context, values Values, key string, out interface{}) (bool, error) {
	raw, ok, err := values.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("failed to decode session value %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v under key as JSON.
func SetJSON(ctx context.Context, values Values, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode session value %s: %w", key, err)
	}
	return values.Set(ctx, key, string(raw))
}
