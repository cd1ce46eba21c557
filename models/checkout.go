package models

// CheckoutRequest represents the checkout form submission
// Example: {"customerName": "Jane Doe", "customerEmail": "jane@example.com", "customerPhone": "555-0100",
// "comments": "Leave at the door", "supportingScout": "Sam", "isDonation": false}
type CheckoutRequest struct {
	CustomerName    string `json:"customerName"`
	CustomerEmail   string `json:"customerEmail"`
	CustomerPhone   string `json:"customerPhone"`
	Comments        string `json:"comments,omitempty"`
	SupportingScout string `json:"supportingScout,omitempty"`
	IsDonation      bool   `json:"isDonation,omitempty"`
}

// CheckoutResponse carries the confirmed order to the confirmation view.
// Persisted is false when durable storage failed; the order is still shown.
type CheckoutResponse struct {
	Order     Order        `json:"order"`
	Persisted bool         `json:"persisted"`
	Payment   *PaymentView `json:"paymentInstructions,omitempty"`
}

// LoginRequest represents the admin login body
// Example: {"name": "Cubmaster", "password": "..."}
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// AdminUser is the active admin session stored for a browser
type AdminUser struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	LoggedAt string `json:"loggedAt"`
}

// ErrorResponse is the JSON error body used by the API
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
	Retry  bool              `json:"retry,omitempty"`
}

// ImportResult summarizes a roster import
type ImportResult struct {
	Total    int      `json:"total"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
