package repository

import (
	"context"
	"errors"
	"log"
	"sync"

	"troop-fundraiser/models"
)

// FallbackBackend tries a primary backend and, when it fails, repeats the same operation on a secondary.
// Successful primary writes are mirrored to the secondary so it stays usable as a warm copy.
// Writes that only reached the secondary are journaled when the secondary supports it and replayed
// to the primary before the primary serves reads again.
type FallbackBackend struct {
	primary   DataBackendInterface
	secondary DataBackendInterface
	syncMu    sync.Mutex
}

// NewFallbackBackend creates a new FallbackBackend
func NewFallbackBackend(primary, secondary DataBackendInterface) *FallbackBackend {
	return &FallbackBackend{primary: primary, secondary: secondary}
}

// Ensure FallbackBackend implements DataBackendInterface
var _ DataBackendInterface = (*FallbackBackend)(nil)

func (b *FallbackBackend) Name() string {
	return b.primary.Name() + "+" + b.secondary.Name()
}

func (b *FallbackBackend) GetScouts(ctx context.Context) ([]models.Scout, error) {
	if !b.syncPending(ctx) {
		return b.secondary.GetScouts(ctx)
	}
	scouts, err := b.primary.GetScouts(ctx)
	if err != nil {
		b.logFallback("GetScouts", err)
		return b.secondary.GetScouts(ctx)
	}
	if cache, ok := b.secondary.(RosterCacheInterface); ok {
		if err := cache.ReplaceScouts(ctx, scouts); err != nil {
			log.Printf("⚠️ FallbackBackend.GetScouts: failed to cache roster in %s: %v", b.secondary.Name(), err)
		}
	}
	return scouts, nil
}

func (b *FallbackBackend) GetOrders(ctx context.Context) ([]models.Order, error) {
	if !b.syncPending(ctx) {
		return b.secondary.GetOrders(ctx)
	}
	orders, err := b.primary.GetOrders(ctx)
	if err != nil {
		b.logFallback("GetOrders", err)
		return b.secondary.GetOrders(ctx)
	}
	return orders, nil
}

// GetConfig falls through to the secondary when the primary has no configuration saved.
func (b *FallbackBackend) GetConfig(ctx context.Context) (*models.SiteConfig, error) {
	if !b.syncPending(ctx) {
		return b.secondary.GetConfig(ctx)
	}
	cfg, err := b.primary.GetConfig(ctx)
	if err != nil {
		b.logFallback("GetConfig", err)
		return b.secondary.GetConfig(ctx)
	}
	if cfg == nil {
		return b.secondary.GetConfig(ctx)
	}
	if err := b.secondary.SaveConfig(ctx, cfg); err != nil {
		log.Printf("⚠️ FallbackBackend.GetConfig: failed to cache config in %s: %v", b.secondary.Name(), err)
	}
	return cfg, nil
}

func (b *FallbackBackend) SaveOrder(ctx context.Context, order *models.Order) error {
	return b.write(ctx, "SaveOrder", PendingWrite{Kind: PendingOrder, ID: order.OrderID}, func(backend DataBackendInterface) error {
		return backend.SaveOrder(ctx, order)
	})
}

func (b *FallbackBackend) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	return b.write(ctx, "UpdateOrderStatus", PendingWrite{Kind: PendingOrder, ID: orderID}, func(backend DataBackendInterface) error {
		return backend.UpdateOrderStatus(ctx, orderID, status)
	})
}

func (b *FallbackBackend) DeleteOrder(ctx context.Context, orderID string) error {
	return b.write(ctx, "DeleteOrder", PendingWrite{Kind: PendingOrder, ID: orderID}, func(backend DataBackendInterface) error {
		return backend.DeleteOrder(ctx, orderID)
	})
}

func (b *FallbackBackend) SaveScout(ctx context.Context, scout *models.Scout) error {
	return b.write(ctx, "SaveScout", PendingWrite{Kind: PendingScout, ID: scout.ID}, func(backend DataBackendInterface) error {
		return backend.SaveScout(ctx, scout)
	})
}

func (b *FallbackBackend) DeleteScout(ctx context.Context, scoutID string) error {
	return b.write(ctx, "DeleteScout", PendingWrite{Kind: PendingScout, ID: scoutID}, func(backend DataBackendInterface) error {
		return backend.DeleteScout(ctx, scoutID)
	})
}

func (b *FallbackBackend) SaveConfig(ctx context.Context, cfg *models.SiteConfig) error {
	return b.write(ctx, "SaveConfig", PendingWrite{Kind: PendingConfig}, func(backend DataBackendInterface) error {
		return backend.SaveConfig(ctx, cfg)
	})
}

// write runs op on the primary, then mirrors it to the secondary.
// A not-found from the primary still reaches the secondary, which may hold records
// written while the primary was down. Whatever lands only on the secondary is journaled.
func (b *FallbackBackend) write(ctx context.Context, op string, pending PendingWrite, fn func(DataBackendInterface) error) error {
	err := fn(b.primary)
	if err != nil {
		if !isNotFound(err) {
			b.logFallback(op, err)
		}

		b.syncMu.Lock()
		defer b.syncMu.Unlock()
		if err := fn(b.secondary); err != nil {
			return err
		}
		if journal, ok := b.secondary.(SyncJournalInterface); ok {
			if err := journal.MarkPending(ctx, pending); err != nil {
				log.Printf("❌ FallbackBackend.%s: failed to journal %s %s for %s: %v", op, pending.Kind, pending.ID, b.primary.Name(), err)
			}
		}
		return nil
	}

	if err := fn(b.secondary); err != nil && !isNotFound(err) {
		log.Printf("⚠️ FallbackBackend.%s: mirror to %s failed: %v", op, b.secondary.Name(), err)
	}
	return nil
}

// syncPending replays journaled writes to the primary and reports whether the primary is caught up.
// Until it is, reads are answered by the secondary.
func (b *FallbackBackend) syncPending(ctx context.Context) bool {
	journal, ok := b.secondary.(SyncJournalInterface)
	if !ok {
		return true
	}

	b.syncMu.Lock()
	defer b.syncMu.Unlock()

	pending, err := journal.PendingWrites(ctx)
	if err != nil {
		log.Printf("❌ FallbackBackend: failed to read sync journal: %v", err)
		return false
	}
	if len(pending) == 0 {
		return true
	}

	for i, w := range pending {
		if err := b.replay(ctx, w); err != nil {
			log.Printf("🔄 FallbackBackend: %d local writes still waiting for %s: %v", len(pending)-i, b.primary.Name(), err)
			return false
		}
		if err := journal.ClearPending(ctx, w); err != nil {
			log.Printf("❌ FallbackBackend: failed to clear sync journal entry %s %s: %v", w.Kind, w.ID, err)
			return false
		}
	}
	log.Printf("✅ FallbackBackend: replayed %d local writes to %s", len(pending), b.primary.Name())
	return true
}

// replay copies the secondary's current state of one record to the primary
func (b *FallbackBackend) replay(ctx context.Context, w PendingWrite) error {
	switch w.Kind {
	case PendingScout:
		scouts, err := b.secondary.GetScouts(ctx)
		if err != nil {
			return err
		}
		for i := range scouts {
			if scouts[i].ID == w.ID {
				return b.primary.SaveScout(ctx, &scouts[i])
			}
		}
		return ignoreNotFound(b.primary.DeleteScout(ctx, w.ID))

	case PendingOrder:
		orders, err := b.secondary.GetOrders(ctx)
		if err != nil {
			return err
		}
		for i := range orders {
			if orders[i].OrderID == w.ID {
				return b.primary.SaveOrder(ctx, &orders[i])
			}
		}
		return ignoreNotFound(b.primary.DeleteOrder(ctx, w.ID))

	case PendingConfig:
		cfg, err := b.secondary.GetConfig(ctx)
		if err != nil || cfg == nil {
			return err
		}
		return b.primary.SaveConfig(ctx, cfg)
	}

	log.Printf("⚠️ FallbackBackend: dropping unknown sync journal entry %q", w.Kind)
	return nil
}

func (b *FallbackBackend) logFallback(op string, err error) {
	log.Printf("🔄 FallbackBackend.%s: %s failed, using %s: %v", op, b.primary.Name(), b.secondary.Name(), err)
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrOrderNotFound) || errors.Is(err, models.ErrScoutNotFound)
}

func ignoreNotFound(err error) error {
	if isNotFound(err) {
		return nil
	}
	return err
}
