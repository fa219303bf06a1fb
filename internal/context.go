package internal

import (
	"context"
	"time"
)

// DefaultStoreTimeout bounds postgres and redis calls that have no deadline of their own.
const DefaultStoreTimeout = 5 * time.Second

// WithStoreTimeout derives a context for a single store round trip. A zero or
// negative d falls back to DefaultStoreTimeout.
func WithStoreTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultStoreTimeout
	}
	return context.WithTimeout(ctx, d)
}
