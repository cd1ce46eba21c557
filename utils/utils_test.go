package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"troop-fundraiser/models"
)

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   models.Money
		want string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{8250, "$82.50"},
		{123456789, "$1,234,567.89"},
		{-1999, "-$19.99"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUSD(tt.in))
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "sam-oneil-jr", Slugify("Sam O'Neil Jr."))
	assert.Equal(t, "ana-rivera", Slugify("  Ana   Rivera "))
	assert.True(t, models.IsValidSlug(Slugify("Zoë & Max #2")))
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{"sam": true, "sam-2": true}
	assert.Equal(t, "sam-3", UniqueSlug("sam", taken))
	assert.Equal(t, "ana", UniqueSlug("ana", taken))
}

func TestRankMapping(t *testing.T) {
	assert.Equal(t, models.RankArrowOfLight, MapLabelToRank("Arrow of Light"))
	assert.Equal(t, models.RankWolf, MapLabelToRank(" Wolves "))
	assert.Equal(t, models.Rank(""), MapLabelToRank("eagle"))
	assert.Equal(t, "Webelos", MapRankToLabel(models.RankWebelos))
}

func TestListAndBoolColumns(t *testing.T) {
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, ParseList(" a@x.com; b@x.com ;"))
	assert.Equal(t, "a@x.com;b@x.com", JoinList([]string{"a@x.com", "b@x.com"}))
	assert.True(t, ParseBool("TRUE"))
	assert.False(t, ParseBool("FALSE"))
	assert.Equal(t, "TRUE", FormatBool(true))
}

func TestFilterAndSortOrders(t *testing.T) {
	scoutA := "scout-a"
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	orders := []models.Order{
		{OrderID: "1", CustomerName: "Zed", Total: 1000, Status: models.OrderStatusPaid, Type: models.ChannelOnline, ScoutID: &scoutA, OrderDate: base},
		{OrderID: "2", CustomerName: "amy", Total: 3000, Status: models.OrderStatusPending, Type: models.ChannelOffline, OrderDate: base.Add(time.Hour)},
		{OrderID: "3", CustomerName: "Bob", CustomerEmail: "bob@example.com", Total: 2000, Status: models.OrderStatusPaid, Type: models.ChannelOnline, OrderDate: base.Add(-time.Hour)},
	}

	paid := FilterOrders(orders, OrderFilter{Status: models.OrderStatusPaid})
	require.Len(t, paid, 2)

	byScout := FilterOrders(orders, OrderFilter{ScoutID: "scout-a"})
	require.Len(t, byScout, 1)
	assert.Equal(t, "1", byScout[0].OrderID)

	byQuery := FilterOrders(orders, OrderFilter{Query: "BOB@"})
	require.Len(t, byQuery, 1)
	assert.Equal(t, "3", byQuery[0].OrderID)

	SortOrders(orders, SortByTotal, true)
	assert.Equal(t, []string{"2", "3", "1"}, ids(orders))

	SortOrders(orders, SortByCustomer, false)
	assert.Equal(t, []string{"2", "3", "1"}, ids(orders))

	SortOrders(orders, SortByDate, false)
	assert.Equal(t, []string{"3", "1", "2"}, ids(orders))
}

func ids(orders []models.Order) []string {
	result := make([]string, len(orders))
	for i, o := range orders {
		result[i] = o.OrderID
	}
	return result
}
