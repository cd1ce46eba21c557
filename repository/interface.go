package repository

import (
	"context"

	"troop-fundraiser/models"
)

// DataBackendInterface defines the Data Access Facade shared by the storefront and the admin dashboard.
// SaveScout and SaveOrder are upserts keyed by id. GetConfig returns nil when no configuration was saved yet.
type DataBackendInterface interface {
	Name() string
	GetScouts(ctx context.Context) ([]models.Scout, error)
	GetOrders(ctx context.Context) ([]models.Order, error)
	SaveOrder(ctx context.Context, order *models.Order) error
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error
	DeleteOrder(ctx context.Context, orderID string) error
	SaveScout(ctx context.Context, scout *models.Scout) error
	DeleteScout(ctx context.Context, scoutID string) error
	GetConfig(ctx context.Context) (*models.SiteConfig, error)
	SaveConfig(ctx context.Context, cfg *models.SiteConfig) error
}

// RosterCacheInterface is implemented by backends that can take a full roster snapshot
type RosterCacheInterface interface {
	ReplaceScouts(ctx context.Context, scouts []models.Scout) error
}

// Pending write kinds
const (
	PendingScout  = "scout"
	PendingOrder  = "order"
	PendingConfig = "config"
)

// PendingWrite names a record changed on the local store while the primary backend was unavailable
type PendingWrite struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
}

// SyncJournalInterface records writes that still have to reach the primary backend
type SyncJournalInterface interface {
	MarkPending(ctx context.Context, w PendingWrite) error
	PendingWrites(ctx context.Context) ([]PendingWrite, error)
	ClearPending(ctx context.Context, w PendingWrite) error
}

// KVStoreInterface is the persistent key/value store behind the local backend
type KVStoreInterface interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}
