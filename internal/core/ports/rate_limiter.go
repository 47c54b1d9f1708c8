package ports

import (
	"context"
	"time"
)

// RateLimitRepository provides low-level atomic operations for rate limiting counters.
// It abstracts storage (e.g., Redis). Implementation should be concurrency-safe.
type RateLimitRepository interface {
	// IncrementWindow atomically increments the counter for key in the current window
	// and ensures the key expires after ttl. Returns the updated count and the window start time.
	IncrementWindow(ctx context.Context, key string, window time.Duration, ttl time.Duration) (count int, windowStart time.Time, err error)
}

// RateLimitDescriptor identifies one request for limiting purposes. Each
// non-empty field is limited independently; the strictest category wins.
type RateLimitDescriptor struct {
	IP     string
	UserID string
	OrgID  string
}

// RateLimiter decides whether a request may proceed. Implementations
// encapsulate algorithm & storage and MUST be safe for concurrent use.
type RateLimiter interface {
	// Allow consumes one request unit for every category in the descriptor.
	// remaining: requests left in the tightest window after this one (>=0)
	// limit: configured max requests per window
	// reset: time when the tightest current window resets
	Allow(ctx context.Context, d RateLimitDescriptor) (allowed bool, remaining int, limit int, reset time.Time, err error)
}
