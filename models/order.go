package models

import (
	"strings"
	"time"
)

// OrderStatus is the fulfillment status of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid reports whether s is a known status.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusFulfilled, OrderStatusCancelled:
		return true
	}
	return false
}

// ParseOrderStatus normalizes and validates a status string.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// Channel records where an order was placed.
type Channel string

const (
	ChannelOnline  Channel = "online"
	ChannelOffline Channel = "offline"
)

// OrderItem is a line of an order with the unit price frozen at creation time
type OrderItem struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Price       Money  `json:"price"`
	Quantity    int    `json:"quantity"`
}

// LineTotal returns price × quantity.
func (i OrderItem) LineTotal() Money {
	return i.Price.Times(i.Quantity)
}

// SumItems returns Σ(price × quantity).
func SumItems(items []OrderItem) Money {
	var total Money
	for _, item := range items {
		total += item.LineTotal()
	}
	return total
}

// Order represents a completed transaction
// Example:
//
//	{
//	  "orderId": "2F4K9XQ1ZB0W",
//	  "customerName": "Jane Doe",
//	  "customerEmail": "jane@example.com",
//	  "customerPhone": "555-0100",
//	  "items": [{"productId": "caramel-corn", "productName": "Caramel Corn", "price": 35.00, "quantity": 2}],
//	  "total": 70.00,
//	  "scoutId": "a1b2c3",
//	  "isDonation": false,
//	  "orderDate": "2026-10-18T10:30:00Z",
//	  "status": "pending",
//	  "type": "online"
//	}
type Order struct {
	OrderID         string      `json:"orderId"`
	CustomerName    string      `json:"customerName"`
	CustomerEmail   string      `json:"customerEmail"`
	CustomerPhone   string      `json:"customerPhone"`
	Comments        string      `json:"comments,omitempty"`
	Items           []OrderItem `json:"items"`
	Total           Money       `json:"total"`
	ScoutID         *string     `json:"scoutId"`
	SupportingScout string      `json:"supportingScout,omitempty"`
	ReferralSlug    string      `json:"referralSlug,omitempty"` // slug of a referral link that did not resolve
	IsDonation      bool        `json:"isDonation"`
	OrderDate       time.Time   `json:"orderDate"`
	Status          OrderStatus `json:"status"`
	Type            Channel     `json:"type"`
}

// ScoutIDValue returns the attributed scout id or "".
func (o *Order) ScoutIDValue() string {
	if o.ScoutID == nil {
		return ""
	}
	return *o.ScoutID
}

// TotalMatchesItems reports whether Total equals the sum of its line items.
func (o *Order) TotalMatchesItems() bool {
	return o.Total == SumItems(o.Items)
}

// OrderListResponse represents the response for listing orders
type OrderListResponse struct {
	Orders []Order `json:"orders"`
	Count  int     `json:"count"`
	Total  Money   `json:"total"`
}

// UpdateOrderStatusRequest represents the request body for a status transition
// Example: {"status": "paid"}
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// OfflineOrderItem is a line of a manually recorded order.
// Price is optional; when omitted the current catalog price is used.
type OfflineOrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Price     *Money `json:"price,omitempty"`
}

// OfflineOrderRequest represents the request body for recording an offline order
// Example: {"customerName": "Pat Lee", "scoutId": "a1b2c3", "items": [{"productId": "caramel-corn", "quantity": 1}], "status": "paid"}
type OfflineOrderRequest struct {
	CustomerName  string             `json:"customerName"`
	CustomerEmail string             `json:"customerEmail,omitempty"`
	CustomerPhone string             `json:"customerPhone,omitempty"`
	Comments      string             `json:"comments,omitempty"`
	ScoutID       string             `json:"scoutId,omitempty"`
	IsDonation    bool               `json:"isDonation,omitempty"`
	Status        string             `json:"status,omitempty"`
	Items         []OfflineOrderItem `json:"items"`
}
