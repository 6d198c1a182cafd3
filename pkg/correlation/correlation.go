// Package correlation propagates a per-request correlation id through
// contexts, HTTP headers and Kafka headers.
package correlation

import (
	"context"

	"github.com/google/uuid"
)

// HeaderName is used both for HTTP and Kafka headers.
const HeaderName = "X-Correlation-ID"

type contextKey struct{}

// FromContext returns the correlation id or "" when none is set.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func NewID() string {
	return uuid.NewString()
}
