package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"troop-fundraiser/models"
	"troop-fundraiser/utils"
)

// Sheet names and column layouts
const (
	SheetScouts     = "Scouts"
	SheetOrders     = "Orders"
	SheetOrderItems = "OrderItems"
	SheetConfig     = "Config"

	ConfigRowKey = "siteConfig"
)

var (
	ScoutColumns     = []string{"id", "name", "slug", "rank", "email", "parentName", "parentEmails", "active"}
	OrderColumns     = []string{"orderId", "customerName", "customerEmail", "customerPhone", "scoutId", "comments", "supportingScout", "total", "status", "type", "orderDate", "isDonation", "referralSlug"}
	OrderItemColumns = []string{"orderId", "productId", "productName", "price", "quantity"}
	ConfigColumns    = []string{"key", "value"}
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006",
	"2006-01-02",
}

// ScoutToRow flattens a scout into the Scouts sheet layout
func ScoutToRow(s models.Scout) []interface{} {
	return []interface{}{
		s.ID,
		s.Name,
		s.Slug,
		string(s.Rank),
		s.Email,
		s.ParentName,
		utils.JoinList(s.ParentEmails),
		utils.FormatBool(s.Active),
	}
}

// ScoutFromRow reads a Scouts sheet row. Missing trailing cells are empty.
func ScoutFromRow(row []interface{}) (models.Scout, error) {
	id := cell(row, 0)
	if id == "" {
		return models.Scout{}, fmt.Errorf("scout row has no id")
	}
	return models.Scout{
		ID:           id,
		Name:         cell(row, 1),
		Slug:         cell(row, 2),
		Rank:         models.Rank(strings.ToLower(cell(row, 3))),
		Email:        cell(row, 4),
		ParentName:   cell(row, 5),
		ParentEmails: utils.ParseList(cell(row, 6)),
		Active:       utils.ParseBool(cell(row, 7)),
	}, nil
}

// OrderToRow flattens an order (without items) into the Orders sheet layout
func OrderToRow(o models.Order) []interface{} {
	return []interface{}{
		o.OrderID,
		o.CustomerName,
		o.CustomerEmail,
		o.CustomerPhone,
		o.ScoutIDValue(),
		o.Comments,
		o.SupportingScout,
		o.Total.String(),
		string(o.Status),
		string(o.Type),
		o.OrderDate.UTC().Format(time.RFC3339),
		utils.FormatBool(o.IsDonation),
		o.ReferralSlug,
	}
}

// OrderItemRows flattens the items of an order into OrderItems rows
func OrderItemRows(o models.Order) [][]interface{} {
	rows := make([][]interface{}, 0, len(o.Items))
	for _, item := range o.Items {
		rows = append(rows, []interface{}{
			o.OrderID,
			item.ProductID,
			item.ProductName,
			item.Price.String(),
			strconv.Itoa(item.Quantity),
		})
	}
	return rows
}

// OrderFromRow reads an Orders sheet row. Items are attached separately.
func OrderFromRow(row []interface{}) (models.Order, error) {
	id := cell(row, 0)
	if id == "" {
		return models.Order{}, fmt.Errorf("order row has no orderId")
	}
	total, err := models.ParseMoney(cell(row, 7))
	if err != nil {
		return models.Order{}, fmt.Errorf("order %s: invalid total: %w", id, err)
	}

	order := models.Order{
		OrderID:         id,
		CustomerName:    cell(row, 1),
		CustomerEmail:   cell(row, 2),
		CustomerPhone:   cell(row, 3),
		Comments:        cell(row, 5),
		SupportingScout: cell(row, 6),
		Total:           total,
		Status:          models.OrderStatus(strings.ToLower(cell(row, 8))),
		Type:            models.Channel(strings.ToLower(cell(row, 9))),
		OrderDate:       parseTime(cell(row, 10)),
		IsDonation:      utils.ParseBool(cell(row, 11)),
		ReferralSlug:    cell(row, 12),
		Items:           []models.OrderItem{},
	}
	if scoutID := cell(row, 4); scoutID != "" {
		order.ScoutID = &scoutID
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	if order.Type == "" {
		order.Type = models.ChannelOnline
	}
	return order, nil
}

// OrderItemFromRow reads an OrderItems row and returns the owning order id
func OrderItemFromRow(row []interface{}) (string, models.OrderItem, error) {
	orderID := cell(row, 0)
	if orderID == "" {
		return "", models.OrderItem{}, fmt.Errorf("order item row has no orderId")
	}
	price, err := models.ParseMoney(cell(row, 3))
	if err != nil {
		return "", models.OrderItem{}, fmt.Errorf("order %s: invalid item price: %w", orderID, err)
	}
	qty, err := strconv.Atoi(cell(row, 4))
	if err != nil {
		return "", models.OrderItem{}, fmt.Errorf("order %s: invalid item quantity: %w", orderID, err)
	}
	return orderID, models.OrderItem{
		ProductID:   cell(row, 1),
		ProductName: cell(row, 2),
		Price:       price,
		Quantity:    qty,
	}, nil
}

// AttachItems groups item rows under their orders, preserving order row order
func AttachItems(orders []models.Order, items map[string][]models.OrderItem) []models.Order {
	for i := range orders {
		if list, ok := items[orders[i].OrderID]; ok {
			orders[i].Items = list
		}
	}
	return orders
}

func cell(row []interface{}, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	switch v := row[i].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return utils.FormatBool(v)
	}
	return strings.TrimSpace(fmt.Sprint(row[i]))
}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// The remote script returns sheet rows as JSON objects, so scalar columns may arrive
// as strings, numbers or booleans. The wire types below accept any of them.

type wireString string

func (w *wireString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*w = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*w = wireString(strings.TrimSpace(s))
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*w = wireString(cell([]interface{}{v}, 0))
	return nil
}

type wireBool bool

func (w *wireBool) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case bool:
		*w = wireBool(val)
	case string:
		*w = wireBool(utils.ParseBool(val))
	case float64:
		*w = val != 0
	default:
		*w = false
	}
	return nil
}

type wireList []string

func (w *wireList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*w = list
		return nil
	}
	var s wireString
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*w = utils.ParseList(string(s))
	return nil
}

type wireScout struct {
	ID           wireString `json:"id"`
	Name         wireString `json:"name"`
	Slug         wireString `json:"slug"`
	Rank         wireString `json:"rank"`
	Email        wireString `json:"email"`
	ParentName   wireString `json:"parentName"`
	ParentEmails wireList   `json:"parentEmails"`
	Active       wireBool   `json:"active"`
}

func (w wireScout) toModel() models.Scout {
	emails := []string(w.ParentEmails)
	if emails == nil {
		emails = []string{}
	}
	return models.Scout{
		ID:           string(w.ID),
		Name:         string(w.Name),
		Slug:         string(w.Slug),
		Rank:         models.Rank(strings.ToLower(string(w.Rank))),
		Email:        string(w.Email),
		ParentName:   string(w.ParentName),
		ParentEmails: emails,
		Active:       bool(w.Active),
	}
}

// scoutRecord is the row-shaped scout sent to the remote script
type scoutRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Rank         string `json:"rank"`
	Email        string `json:"email"`
	ParentName   string `json:"parentName"`
	ParentEmails string `json:"parentEmails"`
	Active       string `json:"active"`
}

func newScoutRecord(s models.Scout) scoutRecord {
	return scoutRecord{
		ID:           s.ID,
		Name:         s.Name,
		Slug:         s.Slug,
		Rank:         string(s.Rank),
		Email:        s.Email,
		ParentName:   s.ParentName,
		ParentEmails: utils.JoinList(s.ParentEmails),
		Active:       utils.FormatBool(s.Active),
	}
}

type wireOrderItem struct {
	ProductID   wireString   `json:"productId"`
	ProductName wireString   `json:"productName"`
	Price       models.Money `json:"price"`
	Quantity    wireString   `json:"quantity"`
}

type wireOrder struct {
	OrderID         wireString      `json:"orderId"`
	CustomerName    wireString      `json:"customerName"`
	CustomerEmail   wireString      `json:"customerEmail"`
	CustomerPhone   wireString      `json:"customerPhone"`
	Comments        wireString      `json:"comments"`
	Items           []wireOrderItem `json:"items"`
	Total           models.Money    `json:"total"`
	ScoutID         wireString      `json:"scoutId"`
	SupportingScout wireString      `json:"supportingScout"`
	ReferralSlug    wireString      `json:"referralSlug"`
	IsDonation      wireBool        `json:"isDonation"`
	OrderDate       wireString      `json:"orderDate"`
	Status          wireString      `json:"status"`
	Type            wireString      `json:"type"`
}

func (w wireOrder) toModel() models.Order {
	order := models.Order{
		OrderID:         string(w.OrderID),
		CustomerName:    string(w.CustomerName),
		CustomerEmail:   string(w.CustomerEmail),
		CustomerPhone:   string(w.CustomerPhone),
		Comments:        string(w.Comments),
		Items:           make([]models.OrderItem, 0, len(w.Items)),
		Total:           w.Total,
		SupportingScout: string(w.SupportingScout),
		ReferralSlug:    string(w.ReferralSlug),
		IsDonation:      bool(w.IsDonation),
		OrderDate:       parseTime(string(w.OrderDate)),
		Status:          models.OrderStatus(strings.ToLower(string(w.Status))),
		Type:            models.Channel(strings.ToLower(string(w.Type))),
	}
	if id := string(w.ScoutID); id != "" {
		order.ScoutID = &id
	}
	for i, item := range w.Items {
		qty, err := strconv.Atoi(string(item.Quantity))
		if err != nil {
			log.Printf("⚠️ order %s: skipping item %d (%s): invalid quantity %q", order.OrderID, i+1, item.ProductID, item.Quantity)
			continue
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   string(item.ProductID),
			ProductName: string(item.ProductName),
			Price:       item.Price,
			Quantity:    qty,
		})
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	if order.Type == "" {
		order.Type = models.ChannelOnline
	}
	return order
}
