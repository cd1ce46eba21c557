package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"troop-fundraiser/models"
)

// Local store keys
const (
	KeyScouts  = "troop-fundraiser:scouts"
	KeyOrders  = "troop-fundraiser:orders"
	KeyConfig  = "troop-fundraiser:siteConfig"
	KeyPending = "troop-fundraiser:pendingSync"
)

// LocalBackend keeps the roster, orders and configuration as JSON blobs in a key/value store.
// It supports the full operation set and is the fallback for the remote backends.
type LocalBackend struct {
	kv KVStoreInterface
	mu sync.Mutex
}

// NewLocalBackend creates a new LocalBackend
func NewLocalBackend(kv KVStoreInterface) *LocalBackend {
	return &LocalBackend{kv: kv}
}

// Ensure LocalBackend implements DataBackendInterface
var _ DataBackendInterface = (*LocalBackend)(nil)
var _ RosterCacheInterface = (*LocalBackend)(nil)
var _ SyncJournalInterface = (*LocalBackend)(nil)

func (b *LocalBackend) Name() string { return "local" }

// GetScouts returns the stored roster
func (b *LocalBackend) GetScouts(ctx context.Context) ([]models.Scout, error) {
	scouts := []models.Scout{}
	if _, err := b.read(ctx, KeyScouts, &scouts); err != nil {
		return nil, err
	}
	return scouts, nil
}

// GetOrders returns the stored orders
func (b *LocalBackend) GetOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	if _, err := b.read(ctx, KeyOrders, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// SaveOrder inserts the order or replaces the one with the same id
func (b *LocalBackend) SaveOrder(ctx context.Context, order *models.Order) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	orders, err := b.GetOrders(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range orders {
		if orders[i].OrderID == order.OrderID {
			orders[i] = *order
			replaced = true
			break
		}
	}
	if !replaced {
		orders = append(orders, *order)
	}

	log.Printf("💾 LocalBackend.SaveOrder: orderId=%s replaced=%t", order.OrderID, replaced)
	return b.write(ctx, KeyOrders, orders)
}

// UpdateOrderStatus changes the status of one order, leaving every other field untouched
func (b *LocalBackend) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	orders, err := b.GetOrders(ctx)
	if err != nil {
		return err
	}
	for i := range orders {
		if orders[i].OrderID == orderID {
			orders[i].Status = status
			return b.write(ctx, KeyOrders, orders)
		}
	}
	return models.ErrOrderNotFound
}

// DeleteOrder removes an order permanently
func (b *LocalBackend) DeleteOrder(ctx context.Context, orderID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	orders, err := b.GetOrders(ctx)
	if err != nil {
		return err
	}
	for i := range orders {
		if orders[i].OrderID == orderID {
			orders = append(orders[:i], orders[i+1:]...)
			return b.write(ctx, KeyOrders, orders)
		}
	}
	return models.ErrOrderNotFound
}

// SaveScout inserts the scout or replaces the one with the same id
func (b *LocalBackend) SaveScout(ctx context.Context, scout *models.Scout) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	scouts, err := b.GetScouts(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range scouts {
		if scouts[i].ID == scout.ID {
			scouts[i] = *scout
			replaced = true
			break
		}
	}
	if !replaced {
		scouts = append(scouts, *scout)
	}
	return b.write(ctx, KeyScouts, scouts)
}

// DeleteScout removes a scout from the roster. Orders keep their scout id.
func (b *LocalBackend) DeleteScout(ctx context.Context, scoutID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	scouts, err := b.GetScouts(ctx)
	if err != nil {
		return err
	}
	for i := range scouts {
		if scouts[i].ID == scoutID {
			scouts = append(scouts[:i], scouts[i+1:]...)
			return b.write(ctx, KeyScouts, scouts)
		}
	}
	return models.ErrScoutNotFound
}

// ReplaceScouts overwrites the stored roster with a snapshot
func (b *LocalBackend) ReplaceScouts(ctx context.Context, scouts []models.Scout) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if scouts == nil {
		scouts = []models.Scout{}
	}
	return b.write(ctx, KeyScouts, scouts)
}

// GetConfig returns the stored configuration or nil
func (b *LocalBackend) GetConfig(ctx context.Context) (*models.SiteConfig, error) {
	var cfg models.SiteConfig
	found, err := b.read(ctx, KeyConfig, &cfg)
	if err != nil || !found {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig replaces the stored configuration
func (b *LocalBackend) SaveConfig(ctx context.Context, cfg *models.SiteConfig) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.write(ctx, KeyConfig, cfg)
}

// MarkPending adds w to the sync journal unless it is already there
func (b *LocalBackend) MarkPending(ctx context.Context, w PendingWrite) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	pending, err := b.pending(ctx)
	if err != nil {
		return err
	}
	for _, p := range pending {
		if p == w {
			return nil
		}
	}
	return b.write(ctx, KeyPending, append(pending, w))
}

// PendingWrites returns the journal in the order the writes happened
func (b *LocalBackend) PendingWrites(ctx context.Context) ([]PendingWrite, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending(ctx)
}

// ClearPending removes w from the sync journal
func (b *LocalBackend) ClearPending(ctx context.Context, w PendingWrite) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	pending, err := b.pending(ctx)
	if err != nil {
		return err
	}
	kept := pending[:0]
	for _, p := range pending {
		if p != w {
			kept = append(kept, p)
		}
	}
	return b.write(ctx, KeyPending, kept)
}

func (b *LocalBackend) pending(ctx context.Context) ([]PendingWrite, error) {
	pending := []PendingWrite{}
	if _, err := b.read(ctx, KeyPending, &pending); err != nil {
		return nil, err
	}
	return pending, nil
}

func (b *LocalBackend) read(ctx context.Context, key string, out interface{}) (bool, error) {
	raw, found, err := b.kv.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (b *LocalBackend) write(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return b.kv.Put(ctx, key, string(raw))
}
