package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"troop-fundraiser/db"
	"troop-fundraiser/models"
)

func newLocalBackend(t *testing.T) *LocalBackend {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(context.Background(), conn))
	return NewLocalBackend(NewKVStore(conn, db.DialectSQLite))
}

func sampleScout(id string, active bool) models.Scout {
	return models.Scout{
		ID:           id,
		Name:         "Sam Rivera",
		Slug:         "sam-" + id,
		Rank:         models.RankWolf,
		ParentName:   "Ana Rivera",
		ParentEmails: []string{"ana@example.com", "luis@example.com"},
		Active:       active,
	}
}

func sampleOrder(id string) models.Order {
	scoutID := "scout-1"
	items := []models.OrderItem{
		{ProductID: "caramel-corn", ProductName: "Caramel Corn", Price: 3500, Quantity: 2},
		{ProductID: "kettle-corn", ProductName: "Kettle Corn", Price: 1250, Quantity: 1},
	}
	return models.Order{
		OrderID:       id,
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@example.com",
		CustomerPhone: "555-0100",
		Items:         items,
		Total:         models.SumItems(items),
		ScoutID:       &scoutID,
		OrderDate:     time.Date(2026, 10, 1, 15, 4, 5, 0, time.UTC),
		Status:        models.OrderStatusPending,
		Type:          models.ChannelOnline,
	}
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

// switchableBackend wraps a backend that can be taken down and brought back
type switchableBackend struct {
	DataBackendInterface
	down bool
}

func (s *switchableBackend) GetScouts(ctx context.Context) ([]models.Scout, error) {
	if s.down {
		return nil, errBackendDown
	}
	return s.DataBackendInterface.GetScouts(ctx)
}

func (s *switchableBackend) GetOrders(ctx context.Context) ([]models.Order, error) {
	if s.down {
		return nil, errBackendDown
	}
	return s.DataBackendInterface.GetOrders(ctx)
}

func (s *switchableBackend) SaveOrder(ctx context.Context, order *models.Order) error {
	if s.down {
		return errBackendDown
	}
	return s.DataBackendInterface.SaveOrder(ctx, order)
}

func (s *switchableBackend) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	if s.down {
		return errBackendDown
	}
	return s.DataBackendInterface.UpdateOrderStatus(ctx, orderID, status)
}

func (s *switchableBackend) DeleteOrder(ctx context.Context, orderID string) error {
	if s.down {
		return errBackendDown
	}
	return s.DataBackendInterface.DeleteOrder(ctx, orderID)
}

func (s *switchableBackend) SaveScout(ctx context.Context, scout *models.Scout) error {
	if s.down {
		return errBackendDown
	}
	return s.DataBackendInterface.SaveScout(ctx, scout)
}

func (s *switchableBackend) DeleteScout(ctx context.Context, scoutID string) error {
	if s.down {
		return errBackendDown
	}
	return s.DataBackendInterface.DeleteScout(ctx, scoutID)
}

func (s *switchableBackend) GetConfig(ctx context.Context) (*models.SiteConfig, error) {
	if s.down {
		return nil, errBackendDown
	}
	return s.DataBackendInterface.GetConfig(ctx)
}

func (s *switchableBackend) SaveConfig(ctx context.Context, cfg *models.SiteConfig) error {
	if s.down {
		return errBackendDown
	}
	return s.DataBackendInterface.SaveConfig(ctx, cfg)
}

// memorySheets is an in-memory SheetValuesInterface. Like the Sheets API, reads stop at the
// last non-blank row.
type memorySheets struct {
	sheets   map[string][][]interface{}
	writes   int
	writeErr error
}

func newMemorySheets() *memorySheets {
	return &memorySheets{sheets: make(map[string][][]interface{})}
}

func (m *memorySheets) Read(ctx context.Context, sheet string, width int) ([][]interface{}, error) {
	rows := m.sheets[sheet]
	if len(rows) <= 1 {
		return nil, nil
	}
	data := rows[1:]
	for len(data) > 0 && isBlankRow(data[len(data)-1]) {
		data = data[:len(data)-1]
	}
	return data, nil
}

func (m *memorySheets) Write(ctx context.Context, writes []SheetWrite) error {
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	for _, w := range writes {
		m.sheets[w.Sheet] = w.Values()
	}
	return nil
}

// dataRows returns the rows of sheet as Read sees them
func (m *memorySheets) dataRows(sheet string) [][]interface{} {
	rows, _ := m.Read(context.Background(), sheet, 0)
	return rows
}
