package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"troop-fundraiser/models"
	"troop-fundraiser/session"
)

// submitStaleAfter is how long a cart may stay Submitting before it is treated as finished.
// It is well past the remote backend's request timeout.
const submitStaleAfter = 2 * time.Minute

// CartService keeps one cart per browsing session
type CartService struct {
	config *ConfigService
	now    func() time.Time
}

// NewCartService creates a new CartService
func NewCartService(config *ConfigService) *CartService {
	return &CartService{config: config, now: time.Now}
}

// Get returns the session cart, empty when none was started
func (s *CartService) Get(ctx context.Context, values session.Values) (*models.Cart, error) {
	cart := &models.Cart{State: models.CartStateEmpty, Lines: []models.CartLine{}}
	if _, err := session.GetJSON(ctx, values, session.KeyCart, cart); err != nil {
		return nil, err
	}
	if cart.Lines == nil {
		cart.Lines = []models.CartLine{}
	}
	if cart.State == models.CartStateSubmitting && s.submitStale(cart) {
		log.Printf("⚠️ CartService.Get: cart stuck in checkout since %v, starting a new one", cart.SubmittedAt)
		return &models.Cart{State: models.CartStateEmpty, Lines: []models.CartLine{}}, nil
	}
	return cart, nil
}

func (s *CartService) submitStale(cart *models.Cart) bool {
	return cart.SubmittedAt == nil || s.now().Sub(*cart.SubmittedAt) > submitStaleAfter
}

// Add puts qty of a catalog product in the cart, merging with an existing line
func (s *CartService) Add(ctx context.Context, values session.Values, productID string, qty int) (*models.Cart, error) {
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.CampaignOpen(s.now()) {
		return nil, models.ErrCampaignClosed
	}
	product, ok := cfg.FindProduct(strings.TrimSpace(productID))
	if !ok || !product.Active {
		return nil, models.ErrProductNotFound
	}

	return s.mutate(ctx, values, func(cart *models.Cart) error {
		return cart.Add(product, qty)
	})
}

// SetQuantity changes a line's quantity; zero or less removes it
func (s *CartService) SetQuantity(ctx context.Context, values session.Values, productID string, qty int) (*models.Cart, error) {
	return s.mutate(ctx, values, func(cart *models.Cart) error {
		return cart.SetQuantity(productID, qty)
	})
}

// Remove deletes a line
func (s *CartService) Remove(ctx context.Context, values session.Values, productID string) (*models.Cart, error) {
	return s.mutate(ctx, values, func(cart *models.Cart) error {
		cart.Remove(productID)
		return nil
	})
}

// Abandon empties the cart when the shopper leaves without checking out.
// It also works on a cart left in Submitting, which would otherwise lock the session.
func (s *CartService) Abandon(ctx context.Context, values session.Values) (*models.Cart, error) {
	cart, err := s.Get(ctx, values)
	if err != nil {
		return nil, err
	}
	cart.Abandon()
	if err := s.save(ctx, values, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) mutate(ctx context.Context, values session.Values, fn func(*models.Cart) error) (*models.Cart, error) {
	cart, err := s.Get(ctx, values)
	if err != nil {
		return nil, err
	}
	if cart.State == models.CartStateSubmitting {
		return nil, ErrCheckoutInProgress
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	if err := s.save(ctx, values, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) save(ctx context.Context, values session.Values, cart *models.Cart) error {
	if err := session.SetJSON(ctx, values, session.KeyCart, cart); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
