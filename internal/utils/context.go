// Package utils provides general-purpose helpers used across the SDK:
// context keys, JSON response writing, the shared HTTP client, correlation
// identifiers and the signed session token carried by consent callbacks.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// CorrelationIDCtxKey is the key under which an authorization flow's
// correlation ID travels through the context, so transports can tag
// outgoing requests with it.
//
//	ctx := utils.WithCorrelationID(ctx, id)
var CorrelationIDCtxKey = contextKey("correlationID")

// WithCorrelationID returns a copy of ctx carrying id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDCtxKey, id)
}

// GetCorrelationIDFromContext retrieves the correlation ID from the context.
//
// ok is false when the value is missing, empty or has an unexpected type.
func GetCorrelationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CorrelationIDCtxKey).(string)
	return id, ok && id != ""
}
