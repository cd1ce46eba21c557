package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"troop-fundraiser/models"
	"troop-fundraiser/repository"
	"troop-fundraiser/utils"
)

// OrderService is the admin view of orders
type OrderService struct {
	backend repository.DataBackendInterface
	scouts  *ScoutService
	config  *ConfigService
	ids     OrderIDGenerator
	now     func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(backend repository.DataBackendInterface, scouts *ScoutService, config *ConfigService, ids OrderIDGenerator) *OrderService {
	return &OrderService{backend: backend, scouts: scouts, config: config, ids: ids, now: time.Now}
}

// List returns the filtered, sorted order table with its count and total
func (s *OrderService) List(ctx context.Context, filter utils.OrderFilter, sortKey string, desc bool) (*models.OrderListResponse, error) {
	orders, err := s.backend.GetOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	orders = utils.FilterOrders(orders, filter)
	utils.SortOrders(orders, sortKey, desc)

	var total models.Money
	for _, o := range orders {
		if o.Status != models.OrderStatusCancelled {
			total += o.Total
		}
	}
	return &models.OrderListResponse{Orders: orders, Count: len(orders), Total: total}, nil
}

// All returns every order unfiltered
func (s *OrderService) All(ctx context.Context) ([]models.Order, error) {
	orders, err := s.backend.GetOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	return orders, nil
}

// Get returns one order
func (s *OrderService) Get(ctx context.Context, orderID string) (*models.Order, error) {
	orders, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].OrderID == orderID {
			return &orders[i], nil
		}
	}
	return nil, models.ErrOrderNotFound
}

// UpdateStatus moves an order to another status. Any status may follow any other.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	newStatus, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	if err := s.backend.UpdateOrderStatus(ctx, orderID, newStatus); err != nil {
		log.Printf("❌ OrderService.UpdateStatus: order %s: %v", orderID, err)
		return nil, err
	}
	log.Printf("✅ OrderService.UpdateStatus: order %s is now %s", orderID, newStatus)
	return s.Get(ctx, orderID)
}

// Delete removes an order permanently
func (s *OrderService) Delete(ctx context.Context, orderID string) error {
	if err := s.backend.DeleteOrder(ctx, orderID); err != nil {
		log.Printf("❌ OrderService.Delete: order %s: %v", orderID, err)
		return err
	}
	log.Printf("🗑️ OrderService.Delete: order %s deleted", orderID)
	return nil
}

// CreateOffline records an order taken outside the storefront (door to door, booth sales)
func (s *OrderService) CreateOffline(ctx context.Context, req *models.OfflineOrderRequest) (*models.Order, error) {
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, err
	}

	errs := models.ValidationErrors{}
	if strings.TrimSpace(req.CustomerName) == "" {
		errs.Add("customerName", "customer name is required")
	}
	if req.CustomerEmail != "" && !models.IsValidEmail(req.CustomerEmail) {
		errs.Add("customerEmail", "enter a valid email address")
	}
	status := models.OrderStatusPending
	if req.Status != "" {
		parsed, err := models.ParseOrderStatus(req.Status)
		if err != nil {
			errs.Add("status", "status must be pending, paid, fulfilled or cancelled")
		}
		status = parsed
	}
	if len(req.Items) == 0 {
		errs.Add("items", "at least one item is required")
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for i, line := range req.Items {
		field := fmt.Sprintf("items[%d]", i)
		product, ok := cfg.FindProduct(line.ProductID)
		if !ok {
			errs.Add(field+".productId", "unknown product "+line.ProductID)
			continue
		}
		if line.Quantity <= 0 {
			errs.Add(field+".quantity", "quantity must be greater than 0")
			continue
		}
		price := product.Price
		if line.Price != nil {
			price = *line.Price
		}
		items = append(items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Price:       price,
			Quantity:    line.Quantity,
		})
	}

	var scoutID *string
	if id := strings.TrimSpace(req.ScoutID); id != "" {
		if _, err := s.scouts.Get(ctx, id); err != nil {
			errs.Add("scoutId", "unknown scout")
		} else {
			scoutID = &id
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	order := &models.Order{
		OrderID:       s.ids.NewOrderID(),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Comments:      strings.TrimSpace(req.Comments),
		Items:         items,
		Total:         models.SumItems(items),
		ScoutID:       scoutID,
		IsDonation:    req.IsDonation,
		OrderDate:     s.now().UTC(),
		Status:        status,
		Type:          models.ChannelOffline,
	}
	if err := s.backend.SaveOrder(ctx, order); err != nil {
		log.Printf("❌ OrderService.CreateOffline: %v", err)
		return nil, fmt.Errorf("failed to save order: %w", err)
	}
	log.Printf("✅ OrderService.CreateOffline: order %s recorded for scout %s", order.OrderID, order.ScoutIDValue())
	return order, nil
}
