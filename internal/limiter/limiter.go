// Package limiter throttles how many remote shares a single client may create.
package limiter

import (
	"context"
	"time"
)

// Limiter decides whether a client may create another remote record.
type Limiter interface {
	// Allow records an attempt and reports whether it is within quota, with optional retry-after.
	Allow(ctx context.Context, client string) (bool, time.Duration, error)
}
