package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"troop-fundraiser/models"
	"troop-fundraiser/repository"
)

func TestExportService_ExportOrders(t *testing.T) {
	f := newFixture(t, newTestBackend(t))
	f.addScout(t, testScout("s1", "sam-rivera", true))
	ctx := context.Background()
	_, err := f.orders.CreateOffline(ctx, &models.OfflineOrderRequest{
		CustomerName: "Pat Lee",
		ScoutID:      "s1",
		Items: []models.OfflineOrderItem{
			{ProductID: "caramel-corn", Quantity: 2},
			{ProductID: "kettle-corn", Quantity: 1},
		},
	})
	require.NoError(t, err)

	data, err := NewExportService(f.orders, f.scouts).ExportOrders(ctx)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, []string{repository.SheetOrders, repository.SheetOrderItems, repository.SheetScouts}, wb.GetSheetList())

	orders, err := wb.GetRows(repository.SheetOrders)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, repository.OrderColumns, orders[0])
	assert.Equal(t, "Pat Lee", orders[1][1])
	assert.Equal(t, "s1", orders[1][4])
	assert.Equal(t, "82.50", orders[1][7])

	items, err := wb.GetRows(repository.SheetOrderItems)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestParseRoster(t *testing.T) {
	wb := excelize.NewFile()
	defer wb.Close()
	require.NoError(t, wb.SetSheetName(wb.GetSheetName(0), "Roster"))
	rows := [][]interface{}{
		{"Name", "Rank", "ParentEmails", "Active", "Slug"},
		{"Sam Rivera", "Wolves", "ana@example.com; luis@example.com", "", "sam-rivera"},
		{"Lee Chen", "Arrow of Light", "mei@example.com", "no", ""},
		{"", "", "", "", ""},
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow("Roster", cell, &rows[i]))
	}
	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)

	scouts, err := ParseRoster(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, scouts, 2)

	assert.Equal(t, "Sam Rivera", scouts[0].Name)
	assert.Equal(t, models.RankWolf, scouts[0].Rank)
	assert.Equal(t, []string{"ana@example.com", "luis@example.com"}, scouts[0].ParentEmails)
	assert.True(t, scouts[0].Active)
	assert.Equal(t, "sam-rivera", scouts[0].Slug)

	assert.Equal(t, models.RankArrowOfLight, scouts[1].Rank)
	assert.False(t, scouts[1].Active)

	_, err = ParseRoster(bytes.NewReader([]byte("not a workbook")))
	assert.Error(t, err)
}

func TestExportService_ImportRoster(t *testing.T) {
	f := newFixture(t, newTestBackend(t))
	f.addScout(t, testScout("s1", "sam-rivera", true))
	ctx := context.Background()

	data, err := NewExportService(f.orders, f.scouts).ExportOrders(ctx)
	require.NoError(t, err)

	// re-importing an export leaves the roster unchanged
	result, err := NewExportService(f.orders, f.scouts).ImportRoster(ctx, bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	scouts, err := f.scouts.List(ctx)
	require.NoError(t, err)
	require.Len(t, scouts, 1)
	assert.Equal(t, "s1", scouts[0].ID)
}
