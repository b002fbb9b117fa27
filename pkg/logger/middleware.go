package logger

import (
	"context"

	"github.com/google/uuid"
)

// HeaderRequestID is the header carrying the request ID between services
const HeaderRequestID = "X-Request-ID"

// NewRequestID generates a new random request ID
func NewRequestID() string {
	return uuid.New().String()
}

// EnsureRequestID returns ctx and its request ID, generating and storing a
// new ID when none is present
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if id := GetRequestID(ctx); id != "" {
		return ctx, id
	}

	requestID := NewRequestID()
	return WithRequestID(ctx, requestID), requestID
}
