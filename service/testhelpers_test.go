package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"troop-fundraiser/db"
	"troop-fundraiser/models"
	"troop-fundraiser/repository"
	"troop-fundraiser/session"
)

func newTestBackend(t *testing.T) *repository.LocalBackend {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(context.Background(), conn))
	return repository.NewLocalBackend(repository.NewKVStore(conn, db.DialectSQLite))
}

func newTestValues(sessionID string) session.Values {
	return session.Bind(session.NewMemoryStore(), sessionID)
}

func testScout(id, slug string, active bool) models.Scout {
	return models.Scout{
		ID:           id,
		Name:         "Scout " + id,
		Slug:         slug,
		Rank:         models.RankWolf,
		ParentName:   "Parent " + id,
		ParentEmails: []string{id + "-parent@example.com"},
		Active:       active,
	}
}

// sequentialIDs hands out ORDER-1, ORDER-2, ...
type sequentialIDs struct {
	mu sync.Mutex
	n  int
}

func (s *sequentialIDs) NewOrderID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("ORDER-%d", s.n)
}

// failingBackend fails every operation
type failingBackend struct{}

var errBackendDown = errors.New("backend down")

func (failingBackend) Name() string { return "failing" }
func (failingBackend) GetScouts(context.Context) ([]models.Scout, error) {
	return nil, errBackendDown
}
func (failingBackend) GetOrders(context.Context) ([]models.Order, error) {
	return nil, errBackendDown
}
func (failingBackend) SaveOrder(context.Context, *models.Order) error { return errBackendDown }
func (failingBackend) UpdateOrderStatus(context.Context, string, models.OrderStatus) error {
	return errBackendDown
}
func (failingBackend) DeleteOrder(context.Context, string) error { return errBackendDown }
func (failingBackend) SaveScout(context.Context, *models.Scout) error { return errBackendDown }
func (failingBackend) DeleteScout(context.Context, string) error { return errBackendDown }
func (failingBackend) SaveConfig(context.Context, *models.SiteConfig) error { return errBackendDown }
func (failingBackend) GetConfig(context.Context) (*models.SiteConfig, error) {
	return nil, errBackendDown
}

// fixture wires the storefront services over one backend
type fixture struct {
	backend     repository.DataBackendInterface
	config      *ConfigService
	scouts      *ScoutService
	orders      *OrderService
	carts       *CartService
	attribution *AttributionService
	checkout    *CheckoutService
	sender      *NoopSender
}

func newFixture(t *testing.T, backend repository.DataBackendInterface) *fixture {
	t.Helper()
	f := &fixture{backend: backend, sender: &NoopSender{}}
	ids := &sequentialIDs{}
	f.config = NewConfigService(backend)
	f.scouts = NewScoutService(backend)
	f.orders = NewOrderService(backend, f.scouts, f.config, ids)
	f.carts = NewCartService(f.config)
	f.attribution = NewAttributionService(f.scouts)
	emails := NewEmailService(f.sender, f.scouts, f.config)
	f.checkout = NewCheckoutService(backend, f.carts, f.attribution, f.config, ids, emails)
	return f
}

func (f *fixture) addScout(t *testing.T, scout models.Scout) {
	t.Helper()
	require.NoError(t, f.backend.SaveScout(context.Background(), &scout))
}
