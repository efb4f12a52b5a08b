package patterns

import (
	"context"
	"time"
)

// WithTimeout derives a context with timeout for fail-fast calls to the order API
func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, duration)
}

// DefaultTimeout is the default timeout for order API requests
const DefaultTimeout = 3 * time.Second

// BulkheadWait is how long a render waits for a free slot before it is rejected
const BulkheadWait = 1 * time.Second
