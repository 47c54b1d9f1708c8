package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/emberwatch/emberwatch/internal/core/domain/feature"
	"github.com/emberwatch/emberwatch/internal/core/ports"
	"golang.org/x/sync/singleflight"
)

var sf singleflight.Group

// Utility helpers
func cacheSetSilently(c ports.Cache, ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.Set(ctx, key, b, ttl)
}

func cacheGet[T any](c ports.Cache, ctx context.Context, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	b, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, false
	}
	return &v, true
}

// CachingFeatureFlagRepository caches flags by key. Flag checks run on the
// hot path of the suggest endpoint, so lookups coalesce through
// singleflight on a cache miss.
type CachingFeatureFlagRepository struct {
	inner ports.FeatureFlagRepository
	cache ports.Cache
	ttl   time.Duration
}

func NewCachingFeatureFlagRepository(inner ports.FeatureFlagRepository, cache ports.Cache, ttl time.Duration) ports.FeatureFlagRepository {
	return &CachingFeatureFlagRepository{inner: inner, cache: cache, ttl: ttl}
}

func (c *CachingFeatureFlagRepository) GetByKey(ctx context.Context, key string) (*feature.FeatureFlag, error) {
	cacheKey := "feature:key:" + key
	if v, ok := cacheGet[feature.FeatureFlag](c.cache, ctx, cacheKey); ok {
		return v, nil
	}
	res, err, _ := sf.Do(cacheKey, func() (any, error) {
		if v, ok := cacheGet[feature.FeatureFlag](c.cache, ctx, cacheKey); ok {
			return v, nil
		}
		f, err := c.inner.GetByKey(ctx, key)
		if err != nil {
			return nil, err
		}
		cacheSetSilently(c.cache, ctx, cacheKey, f, c.ttl)
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*feature.FeatureFlag), nil
}
