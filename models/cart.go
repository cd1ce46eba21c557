package models

import "time"

// CartState is the checkout state machine position.
type CartState string

const (
	CartStateEmpty      CartState = "empty"
	CartStatePopulated  CartState = "populated"
	CartStateSubmitting CartState = "submitting"
	CartStateConfirmed  CartState = "confirmed"
	CartStateAbandoned  CartState = "abandoned"
)

// CartLine is one product in the cart with the unit price captured when it was added.
type CartLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice Money  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

// LineTotal returns unit price × quantity.
func (l CartLine) LineTotal() Money {
	return l.UnitPrice.Times(l.Quantity)
}

// Cart accumulates line items for one browsing session.
// INVARIANT: no two lines share a ProductID and every line has Quantity > 0.
type Cart struct {
	State       CartState  `json:"state"`
	Lines       []CartLine `json:"lines"`
	LastOrderID string     `json:"lastOrderId,omitempty"`
	// SubmittedAt is set while the cart is Submitting
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
}

// Total returns Σ(unit price × quantity) over the current lines.
func (c *Cart) Total() Money {
	var total Money
	for _, line := range c.Lines {
		total += line.LineTotal()
	}
	return total
}

// ItemCount returns the total quantity across lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Add merges qty of product into the cart.
// An already-present product has its quantity incremented; the original price snapshot is kept.
func (c *Cart) Add(product Product, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == product.ID {
			c.Lines[i].Quantity += qty
			c.refreshState()
			return nil
		}
	}
	c.Lines = append(c.Lines, CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  qty,
	})
	c.refreshState()
	return nil
}

// SetQuantity replaces a line's quantity; qty <= 0 removes the line.
func (c *Cart) SetQuantity(productID string, qty int) error {
	for i := range c.Lines {
		if c.Lines[i].ProductID != productID {
			continue
		}
		if qty <= 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		} else {
			c.Lines[i].Quantity = qty
		}
		c.refreshState()
		return nil
	}
	return ErrLineNotFound
}

// Remove deletes the line for productID. Removing an absent product is a no-op.
func (c *Cart) Remove(productID string) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			break
		}
	}
	c.refreshState()
}

// Abandon clears the cart and marks it abandoned.
func (c *Cart) Abandon() {
	c.Lines = nil
	c.State = CartStateAbandoned
	c.SubmittedAt = nil
}

// refreshState moves between Empty and Populated after a line change.
// Line changes after a confirmation or abandonment start a new cart cycle.
func (c *Cart) refreshState() {
	if len(c.Lines) == 0 {
		c.State = CartStateEmpty
		return
	}
	c.State = CartStatePopulated
}

// CartResponse represents the cart returned to the storefront
type CartResponse struct {
	State     CartState          `json:"state"`
	Lines     []CartLineResponse `json:"lines"`
	Total     Money              `json:"total"`
	ItemCount int                `json:"itemCount"`
}

// CartLineResponse is a cart line with its computed line total
type CartLineResponse struct {
	CartLine
	LineTotal Money `json:"lineTotal"`
}

// NewCartResponse builds the response view of c.
func NewCartResponse(c *Cart) CartResponse {
	lines := make([]CartLineResponse, 0, len(c.Lines))
	for _, line := range c.Lines {
		lines = append(lines, CartLineResponse{CartLine: line, LineTotal: line.LineTotal()})
	}
	state := c.State
	if state == "" {
		state = CartStateEmpty
	}
	return CartResponse{
		State:     state,
		Lines:     lines,
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
	}
}

// AddToCartRequest represents the request body for adding a product
// Example: {"productId": "caramel-corn", "quantity": 2}
type AddToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// UpdateCartLineRequest represents the request body for changing a line quantity
// Example: {"quantity": 3}
type UpdateCartLineRequest struct {
	Quantity int `json:"quantity"`
}
