package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"troop-fundraiser/models"
)

func TestFallbackBackend_ReadsFromSecondaryWhenPrimaryFails(t *testing.T) {
	ctx := context.Background()
	local := newLocalBackend(t)
	scout := sampleScout("scout-1", true)
	require.NoError(t, local.SaveScout(ctx, &scout))

	backend := NewFallbackBackend(failingBackend{}, local)

	scouts, err := backend.GetScouts(ctx)
	require.NoError(t, err)
	require.Len(t, scouts, 1)
	assert.Equal(t, "scout-1", scouts[0].ID)

	orders, err := backend.GetOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestFallbackBackend_WritesLandLocallyWhenPrimaryFails(t *testing.T) {
	ctx := context.Background()
	local := newLocalBackend(t)
	backend := NewFallbackBackend(failingBackend{}, local)

	order := sampleOrder("A1")
	require.NoError(t, backend.SaveOrder(ctx, &order))
	require.NoError(t, backend.UpdateOrderStatus(ctx, "A1", models.OrderStatusFulfilled))

	orders, err := local.GetOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderStatusFulfilled, orders[0].Status)
}

func TestFallbackBackend_MirrorsPrimaryWrites(t *testing.T) {
	ctx := context.Background()
	primary := NewSheetsBackend(newMemorySheets())
	local := newLocalBackend(t)
	backend := NewFallbackBackend(primary, local)

	order := sampleOrder("A1")
	require.NoError(t, backend.SaveOrder(ctx, &order))

	fromPrimary, err := primary.GetOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, fromPrimary, 1)

	fromLocal, err := local.GetOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, fromLocal, 1)
}

func TestFallbackBackend_NotFoundOnPrimaryChecksSecondary(t *testing.T) {
	ctx := context.Background()
	primary := NewSheetsBackend(newMemorySheets())
	local := newLocalBackend(t)
	order := sampleOrder("OFFLINE1")
	require.NoError(t, local.SaveOrder(ctx, &order))

	backend := NewFallbackBackend(primary, local)
	require.NoError(t, backend.DeleteOrder(ctx, "OFFLINE1"))

	assert.ErrorIs(t, backend.DeleteOrder(ctx, "OFFLINE1"), models.ErrOrderNotFound)
}

func TestFallbackBackend_CachesRoster(t *testing.T) {
	ctx := context.Background()
	primary := NewSheetsBackend(newMemorySheets())
	scout := sampleScout("scout-1", true)
	require.NoError(t, primary.SaveScout(ctx, &scout))

	local := newLocalBackend(t)
	backend := NewFallbackBackend(primary, local)
	_, err := backend.GetScouts(ctx)
	require.NoError(t, err)

	cached, err := local.GetScouts(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, scout.ParentEmails, cached[0].ParentEmails)
}

func TestFallbackBackend_OutageWritesSurviveRecovery(t *testing.T) {
	ctx := context.Background()
	primary := &switchableBackend{DataBackendInterface: NewSheetsBackend(newMemorySheets())}
	local := newLocalBackend(t)
	backend := NewFallbackBackend(primary, local)

	s1 := sampleScout("s1", true)
	require.NoError(t, backend.SaveScout(ctx, &s1))

	primary.down = true
	s2 := sampleScout("s2", true)
	require.NoError(t, backend.SaveScout(ctx, &s2))
	cfg := &models.SiteConfig{Version: 1, Pack: models.PackInfo{Name: "Pack 42"}}
	require.NoError(t, backend.SaveConfig(ctx, cfg))

	pending, err := local.PendingWrites(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	primary.down = false
	scouts, err := backend.GetScouts(ctx)
	require.NoError(t, err)
	assert.Len(t, scouts, 2)

	fromPrimary, err := primary.GetScouts(ctx)
	require.NoError(t, err)
	assert.Len(t, fromPrimary, 2, "outage write reached the primary")
	primaryCfg, err := primary.GetConfig(ctx)
	require.NoError(t, err)
	require.NotNil(t, primaryCfg)
	assert.Equal(t, "Pack 42", primaryCfg.Pack.Name)

	pending, err = local.PendingWrites(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	primary.down = true
	scouts, err = backend.GetScouts(ctx)
	require.NoError(t, err)
	assert.Len(t, scouts, 2)
}

func TestFallbackBackend_ReadsStayLocalUntilReplaySucceeds(t *testing.T) {
	ctx := context.Background()
	sheets := NewSheetsBackend(newMemorySheets())
	local := newLocalBackend(t)

	s2 := sampleScout("s2", true)
	require.NoError(t, NewFallbackBackend(failingBackend{}, local).SaveScout(ctx, &s2))

	// reads still work on the primary, but it rejects writes
	readOnly := &readOnlyBackend{DataBackendInterface: sheets}
	backend := NewFallbackBackend(readOnly, local)

	scouts, err := backend.GetScouts(ctx)
	require.NoError(t, err)
	require.Len(t, scouts, 1)
	assert.Equal(t, "s2", scouts[0].ID)

	cached, err := local.GetScouts(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 1)
}

func TestFallbackBackend_ReplaysOutageDeletes(t *testing.T) {
	ctx := context.Background()
	primary := &switchableBackend{DataBackendInterface: NewSheetsBackend(newMemorySheets())}
	local := newLocalBackend(t)
	backend := NewFallbackBackend(primary, local)

	order := sampleOrder("A1")
	require.NoError(t, backend.SaveOrder(ctx, &order))

	primary.down = true
	require.NoError(t, backend.DeleteOrder(ctx, "A1"))

	primary.down = false
	orders, err := backend.GetOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)

	fromPrimary, err := primary.GetOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, fromPrimary)
}

type readOnlyBackend struct {
	DataBackendInterface
}

func (readOnlyBackend) SaveScout(context.Context, *models.Scout) error { return errBackendDown }
