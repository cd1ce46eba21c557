package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"troop-fundraiser/models"
	"troop-fundraiser/repository"
	"troop-fundraiser/session"
)

// OrderNotifier is told about every confirmed order. Implementations must not block checkout on failure.
type OrderNotifier interface {
	OrderPlaced(ctx context.Context, cfg *models.SiteConfig, order *models.Order)
}

// CheckoutService turns a session cart into an order
type CheckoutService struct {
	backend     repository.DataBackendInterface
	carts       *CartService
	attribution *AttributionService
	config      *ConfigService
	ids         OrderIDGenerator
	notifier    OrderNotifier
	now         func() time.Time
}

// NewCheckoutService creates a new CheckoutService. notifier may be nil.
func NewCheckoutService(
	backend repository.DataBackendInterface,
	carts *CartService,
	attribution *AttributionService,
	config *ConfigService,
	ids OrderIDGenerator,
	notifier OrderNotifier,
) *CheckoutService {
	return &CheckoutService{
		backend:     backend,
		carts:       carts,
		attribution: attribution,
		config:      config,
		ids:         ids,
		notifier:    notifier,
		now:         time.Now,
	}
}

// Submit validates the form, builds the order from the cart and persists it.
// A persistence failure is logged and reported through Persisted=false; the shopper still gets the confirmation.
func (s *CheckoutService) Submit(ctx context.Context, values session.Values, req *models.CheckoutRequest) (*models.CheckoutResponse, error) {
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.CampaignOpen(s.now()) {
		return nil, models.ErrCampaignClosed
	}

	cart, err := s.carts.Get(ctx, values)
	if err != nil {
		return nil, err
	}
	if cart.State == models.CartStateSubmitting {
		return nil, ErrCheckoutInProgress
	}
	if cart.IsEmpty() {
		return nil, models.ErrEmptyCart
	}

	attribution, err := s.attribution.Current(ctx, values)
	if err != nil {
		log.Printf("⚠️ CheckoutService.Submit: attribution unavailable, continuing without it: %v", err)
		attribution = nil
	}
	if err := validateCheckout(req); err != nil {
		return nil, err
	}

	submittedAt := s.now()
	cart.State = models.CartStateSubmitting
	cart.SubmittedAt = &submittedAt
	if err := s.carts.save(ctx, values, cart); err != nil {
		return nil, err
	}

	order := s.buildOrder(cfg, cart, attribution, req)

	persisted := true
	if err := s.backend.SaveOrder(ctx, order); err != nil {
		persisted = false
		log.Printf("❌ CheckoutService.Submit: order %s was not persisted: %v", order.OrderID, err)
	} else {
		log.Printf("🎉 CheckoutService.Submit: order %s saved (total=%s, scout=%s)", order.OrderID, order.Total, order.ScoutIDValue())
	}

	if s.notifier != nil {
		s.notifier.OrderPlaced(ctx, cfg, order)
	}

	// The order is placed: finish the cart even if the shopper already went away.
	finishCtx := context.WithoutCancel(ctx)
	confirmed := &models.Cart{State: models.CartStateConfirmed, Lines: []models.CartLine{}, LastOrderID: order.OrderID}
	if err := s.carts.save(finishCtx, values, confirmed); err != nil {
		log.Printf("⚠️ CheckoutService.Submit: failed to clear cart, dropping it instead: %v", err)
		if err := values.Delete(finishCtx, session.KeyCart); err != nil {
			log.Printf("❌ CheckoutService.Submit: cart for order %s left in checkout: %v", order.OrderID, err)
		}
	}
	if err := session.SetJSON(finishCtx, values, session.KeyLastOrder, order); err != nil {
		log.Printf("⚠️ CheckoutService.Submit: failed to remember order for confirmation: %v", err)
	}

	return &models.CheckoutResponse{
		Order:     *order,
		Persisted: persisted,
		Payment:   s.config.PaymentView(cfg),
	}, nil
}

// Confirmation returns the last order confirmed in this session
func (s *CheckoutService) Confirmation(ctx context.Context, values session.Values) (*models.Order, error) {
	var order models.Order
	found, err := session.GetJSON(ctx, values, session.KeyLastOrder, &order)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoConfirmation
	}
	return &order, nil
}

func (s *CheckoutService) buildOrder(cfg *models.SiteConfig, cart *models.Cart, attribution *models.AttributionContext, req *models.CheckoutRequest) *models.Order {
	items := make([]models.OrderItem, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		items = append(items, models.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.Name,
			Price:       line.UnitPrice,
			Quantity:    line.Quantity,
		})
	}

	order := &models.Order{
		OrderID:       s.ids.NewOrderID(),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Comments:      strings.TrimSpace(req.Comments),
		Items:         items,
		Total:         models.SumItems(items),
		IsDonation:    req.IsDonation && cfg.DonationsEnabled(),
		OrderDate:     s.now().UTC(),
		Status:        models.OrderStatusPending,
		Type:          models.ChannelOnline,
	}

	switch {
	case attribution.IsResolved():
		scoutID := attribution.ScoutID
		order.ScoutID = &scoutID
	case attribution.IsUnresolved():
		order.ReferralSlug = attribution.Slug
		order.SupportingScout = strings.TrimSpace(req.SupportingScout)
	default:
		order.SupportingScout = strings.TrimSpace(req.SupportingScout)
	}
	return order
}

func validateCheckout(req *models.CheckoutRequest) error {
	errs := models.ValidationErrors{}
	if strings.TrimSpace(req.CustomerName) == "" {
		errs.Add("customerName", "full name is required")
	}
	if strings.TrimSpace(req.CustomerEmail) == "" {
		errs.Add("customerEmail", "email is required")
	} else if !models.IsValidEmail(req.CustomerEmail) {
		errs.Add("customerEmail", "enter a valid email address")
	}
	if strings.TrimSpace(req.CustomerPhone) == "" {
		errs.Add("customerPhone", "phone number is required")
	}
	if err := errs.Err(); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	return nil
}
