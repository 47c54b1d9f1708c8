package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	impl "github.com/emberwatch/emberwatch/internal/application/services"
	"github.com/emberwatch/emberwatch/internal/core/ports"
	tmocks "github.com/emberwatch/emberwatch/test/mocks"
	"github.com/sirupsen/logrus"
)

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	repo := &tmocks.RateLimitRepositoryMock{IncrementWindowFn: func(ctx context.Context, key string, window, ttl time.Duration) (int, time.Time, error) {
		return 3, time.Now().Truncate(window), nil
	}}
	svc := impl.NewRateLimiterService(repo, &impl.RateLimiterConfig{RequestsPerWindow: 5, Window: time.Second, KeyPrefix: "ratelimit:ai"}, logrus.New())

	allowed, remaining, limit, _, err := svc.Allow(context.Background(), ports.RateLimitDescriptor{IP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatalf("request under the limit must pass")
	}
	if limit != 5 || remaining != 2 {
		t.Fatalf("expected limit=5 remaining=2, got limit=%d remaining=%d", limit, remaining)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	repo := &tmocks.RateLimitRepositoryMock{IncrementWindowFn: func(ctx context.Context, key string, window, ttl time.Duration) (int, time.Time, error) {
		return 6, time.Now().Truncate(window), nil
	}}
	svc := impl.NewRateLimiterService(repo, &impl.RateLimiterConfig{RequestsPerWindow: 5, Window: time.Second}, logrus.New())

	allowed, remaining, _, _, err := svc.Allow(context.Background(), ports.RateLimitDescriptor{IP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("sixth request in a 5/s window must be blocked")
	}
	if remaining != 0 {
		t.Fatalf("blocked request must report 0 remaining, got %d", remaining)
	}
}

func TestRateLimiter_StrictestCategoryWins(t *testing.T) {
	counts := map[string]int{
		"ratelimit:ai:ip:10.0.0.1": 1,
		"ratelimit:ai:user:u1":     6,
		"ratelimit:ai:org:o1":      2,
	}
	var seen []string
	repo := &tmocks.RateLimitRepositoryMock{IncrementWindowFn: func(ctx context.Context, key string, window, ttl time.Duration) (int, time.Time, error) {
		seen = append(seen, key)
		count, ok := counts[key]
		if !ok {
			t.Fatalf("unexpected counter key %q", key)
		}
		return count, time.Now().Truncate(window), nil
	}}
	svc := impl.NewRateLimiterService(repo, &impl.RateLimiterConfig{RequestsPerWindow: 5, Window: time.Second, KeyPrefix: "ratelimit:ai"}, logrus.New())

	allowed, _, _, _, err := svc.Allow(context.Background(), ports.RateLimitDescriptor{IP: "10.0.0.1", UserID: "u1", OrgID: "o1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("request must be blocked when any category is over its limit")
	}
	if len(seen) != 3 {
		t.Fatalf("expected all three categories to be counted, saw %v", seen)
	}
}

func TestRateLimiter_SkipsEmptyCategories(t *testing.T) {
	var seen []string
	repo := &tmocks.RateLimitRepositoryMock{IncrementWindowFn: func(ctx context.Context, key string, window, ttl time.Duration) (int, time.Time, error) {
		seen = append(seen, key)
		return 1, time.Now().Truncate(window), nil
	}}
	svc := impl.NewRateLimiterService(repo, nil, logrus.New())

	allowed, _, _, _, err := svc.Allow(context.Background(), ports.RateLimitDescriptor{IP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatalf("expected request to pass")
	}
	if len(seen) != 1 || seen[0] != "ratelimit:ai:ip:10.0.0.1" {
		t.Fatalf("only the ip category should be counted, saw %v", seen)
	}
}

func TestRateLimiter_FailsOpenOnStorageError(t *testing.T) {
	repo := &tmocks.RateLimitRepositoryMock{IncrementWindowFn: func(ctx context.Context, key string, window, ttl time.Duration) (int, time.Time, error) {
		return 0, time.Time{}, errors.New("redis down")
	}}
	svc := impl.NewRateLimiterService(repo, nil, logrus.New())

	allowed, _, _, _, err := svc.Allow(context.Background(), ports.RateLimitDescriptor{IP: "10.0.0.1"})
	if err == nil {
		t.Fatalf("storage error must be surfaced")
	}
	if !allowed {
		t.Fatalf("limiter must fail open when storage is unavailable")
	}
}
