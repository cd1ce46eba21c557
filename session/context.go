package session

import (
	"context"
	"net/http"
)

type contextKey struct{}

// WithValues attaches the session of the current request to ctx
func WithValues(ctx context.Context, values Values) context.Context {
	return context.WithValue(ctx, contextKey{}, values)
}

// FromRequest returns the session attached by the session middleware.
// Requests that bypassed the middleware get a throwaway in-memory session.
func FromRequest(r *http.Request) Values {
	if values, ok := r.Context().Value(contextKey{}).(Values); ok {
		return values
	}
	return Bind(NewMemoryStore(), "")
}
