// Package dbctx holds the per-operation deadline shared by the store adapters.
package dbctx

import (
	"context"
	"time"
)

// DefaultTimeout bounds every store call when no timeout is configured
const DefaultTimeout = 5 * time.Second

// WithTimeout derives the per-operation context used by every repository
// call. A non-positive timeout falls back to DefaultTimeout.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
