package utils

import (
	"sort"
	"strings"

	"troop-fundraiser/models"
)

// OrderFilter narrows the admin order table. Empty fields match everything.
type OrderFilter struct {
	Status  models.OrderStatus
	ScoutID string
	Channel models.Channel
	Query   string // case-insensitive match on id, customer name, email, phone, supporting scout
}

// Order table sort keys
const (
	SortByDate     = "orderDate"
	SortByTotal    = "total"
	SortByCustomer = "customerName"
	SortByStatus   = "status"
)

// Matches reports whether o passes the filter.
func (f OrderFilter) Matches(o models.Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.ScoutID != "" && o.ScoutIDValue() != f.ScoutID {
		return false
	}
	if f.Channel != "" && o.Type != f.Channel {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	for _, field := range []string{o.OrderID, o.CustomerName, o.CustomerEmail, o.CustomerPhone, o.SupportingScout, o.ReferralSlug} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// FilterOrders returns the orders that pass f, preserving order.
func FilterOrders(orders []models.Order, f OrderFilter) []models.Order {
	result := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if f.Matches(o) {
			result = append(result, o)
		}
	}
	return result
}

// SortOrders sorts in place by key. Unknown keys sort by date.
// Ties fall back to order id so the table is stable between reloads.
func SortOrders(orders []models.Order, key string, desc bool) {
	less := func(a, b models.Order) int {
		switch key {
		case SortByTotal:
			return compareInt64(int64(a.Total), int64(b.Total))
		case SortByCustomer:
			return strings.Compare(strings.ToLower(a.CustomerName), strings.ToLower(b.CustomerName))
		case SortByStatus:
			return strings.Compare(string(a.Status), string(b.Status))
		}
		return a.OrderDate.Compare(b.OrderDate)
	}

	sort.SliceStable(orders, func(i, j int) bool {
		c := less(orders[i], orders[j])
		if c == 0 {
			c = strings.Compare(orders[i].OrderID, orders[j].OrderID)
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
