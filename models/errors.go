package models

import (
	"errors"
	"sort"
	"strings"
)

// Domain errors
var (
	ErrScoutNotFound   = errors.New("scout not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	ErrLineNotFound    = errors.New("cart line not found")
	ErrInvalidStatus   = errors.New("invalid order status")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	ErrSlugTaken       = errors.New("slug is already used by another scout")
	ErrSlugImmutable   = errors.New("slug cannot change once distributed; set confirmSlugChange to override")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrCampaignClosed  = errors.New("the fundraiser is not currently accepting orders")
)

// ValidationErrors maps a field name to a human-readable message.
type ValidationErrors map[string]string

// Add records a message for field, keeping the first message per field.
func (v ValidationErrors) Add(field, message string) {
	if _, exists := v[field]; !exists {
		v[field] = message
	}
}

// Err returns nil when there are no validation errors.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationErrors unwraps err into ValidationErrors when possible.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// IsValidEmail performs the storefront's syntactic email check:
// a non-empty local part, an "@", and a domain segment containing a dot.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	if strings.ContainsAny(email, " \t") {
		return false
	}
	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
