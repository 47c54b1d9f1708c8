package services

import (
	"context"
	"fmt"
	"time"

	"github.com/emberwatch/emberwatch/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// RateLimiterService enforces a fixed-window limit independently per IP,
// per user and per organization; a request passes only when every category
// is under the limit.
type RateLimiterService struct {
	repo      ports.RateLimitRepository
	limit     int
	window    time.Duration
	keyPrefix string
	logger    *logrus.Logger
}

// RateLimiterConfig groups configuration parameters for the rate limiter.
type RateLimiterConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	KeyPrefix         string
}

func NewRateLimiterService(repo ports.RateLimitRepository, cfg *RateLimiterConfig, logger *logrus.Logger) *RateLimiterService {
	// Apply defaults
	limit := 5
	w := time.Second
	kp := "ratelimit:ai"
	if cfg != nil {
		if cfg.RequestsPerWindow > 0 {
			limit = cfg.RequestsPerWindow
		}
		if cfg.Window > 0 {
			w = cfg.Window
		}
		if cfg.KeyPrefix != "" {
			kp = cfg.KeyPrefix
		}
	}
	return &RateLimiterService{repo: repo, limit: limit, window: w, keyPrefix: kp, logger: logger}
}

func (s *RateLimiterService) Allow(ctx context.Context, d ports.RateLimitDescriptor) (bool, int, int, time.Time, error) {
	categories := []struct {
		name  string
		value string
	}{
		{"ip", d.IP},
		{"user", d.UserID},
		{"org", d.OrgID},
	}

	ttl := s.window * 2 // retain overlap window
	worstCount := 0
	reset := time.Now().Add(s.window)

	for _, cat := range categories {
		if cat.value == "" {
			continue
		}
		key := fmt.Sprintf("%s:%s:%s", s.keyPrefix, cat.name, cat.value)
		count, windowStart, err := s.repo.IncrementWindow(ctx, key, s.window, ttl)
		if err != nil {
			if s.logger != nil {
				s.logger.WithFields(logrus.Fields{"category": cat.name}).WithError(err).Error("rate limiter: failed to increment window")
			}
			// fail open
			return true, s.limit, s.limit, reset, err
		}
		if count > worstCount {
			worstCount = count
			reset = windowStart.Add(s.window)
		}
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"count": worstCount, "limit": s.limit}).Debug("rate limiter window state")
	}
	if worstCount > s.limit {
		return false, 0, s.limit, reset, nil
	}
	remaining := s.limit - worstCount
	return true, remaining, s.limit, reset, nil
}
