package controller

import (
	"log"
	"net/http"
	"strings"

	"troop-fundraiser/models"
	"troop-fundraiser/service"
	"troop-fundraiser/session"
)

// CartController handles HTTP requests for the session cart and checkout
type CartController struct {
	carts    *service.CartService
	checkout *service.CheckoutService
}

// NewCartController creates a new CartController
func NewCartController(carts *service.CartService, checkout *service.CheckoutService) *CartController {
	return &CartController{carts: carts, checkout: checkout}
}

// Cart handles GET /api/cart and DELETE /api/cart (abandon)
// Example response:
// {
//   "state": "populated",
//   "lines": [{"productId": "caramel-corn", "name": "Caramel Corn", "unitPrice": 35.00, "quantity": 2, "lineTotal": 70.00}],
//   "total": 70.00,
//   "itemCount": 2
// }
func (c *CartController) Cart(w http.ResponseWriter, r *http.Request) {
	values := session.FromRequest(r)

	var cart *models.Cart
	var err error
	switch r.Method {
	case http.MethodGet:
		cart, err = c.carts.Get(r.Context(), values)
	case http.MethodDelete:
		cart, err = c.carts.Abandon(r.Context(), values)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err != nil {
		writeServiceError(w, "Cart", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewCartResponse(cart))
}

// AddItem handles POST /api/cart/items
// Example request:
// POST /api/cart/items
// {"productId": "caramel-corn", "quantity": 2}
func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 AddItem: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.AddToCartRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Printf("❌ AddItem: Failed to decode request body: %v", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}

	cart, err := c.carts.Add(r.Context(), session.FromRequest(r), req.ProductID, req.Quantity)
	if err != nil {
		writeServiceError(w, "AddItem", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewCartResponse(cart))
}

// Item handles PUT|PATCH|DELETE /api/cart/items/{productId}
// Example request:
// PATCH /api/cart/items/caramel-corn
// {"quantity": 3}
func (c *CartController) Item(w http.ResponseWriter, r *http.Request) {
	productID := pathParam(r.URL.Path, "/api/cart/items/")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "product id is required")
		return
	}
	values := session.FromRequest(r)

	var cart *models.Cart
	var err error
	switch r.Method {
	case http.MethodPut, http.MethodPatch:
		var req models.UpdateCartLineRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		cart, err = c.carts.SetQuantity(r.Context(), values, productID, req.Quantity)
	case http.MethodDelete:
		cart, err = c.carts.Remove(r.Context(), values, productID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err != nil {
		writeServiceError(w, "CartItem", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewCartResponse(cart))
}

// Checkout handles POST /api/checkout
// Example request:
// POST /api/checkout
// {
//   "customerName": "Jane Doe",
//   "customerEmail": "jane@example.com",
//   "customerPhone": "555-0100",
//   "supportingScout": "Sam",
//   "isDonation": false
// }
// Example response (201):
// {
//   "order": {"orderId": "2F4K9XQ1ZB0W", "total": 82.50, "status": "pending", ...},
//   "persisted": true,
//   "paymentInstructions": {"venmo": "@Pack42-Scouts", "instructionsHtml": "<p>...</p>"}
// }
func (c *CartController) Checkout(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 Checkout: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Printf("❌ Checkout: Failed to decode request body: %v", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := c.checkout.Submit(r.Context(), session.FromRequest(r), &req)
	if err != nil {
		writeServiceError(w, "Checkout", err)
		return
	}
	log.Printf("✅ Checkout: order %s confirmed (persisted=%t)", resp.Order.OrderID, resp.Persisted)
	writeJSON(w, http.StatusCreated, resp)
}

// Confirmation handles GET /api/checkout/confirmation
func (c *CartController) Confirmation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	order, err := c.checkout.Confirmation(r.Context(), session.FromRequest(r))
	if err != nil {
		writeServiceError(w, "Confirmation", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
