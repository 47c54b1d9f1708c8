package ports

import (
	"context"

	"github.com/emberwatch/emberwatch/internal/core/domain/feature"
)

// FeatureFlagRepository defines the read path onto stored feature flags.
type FeatureFlagRepository interface {
	GetByKey(ctx context.Context, key string) (*feature.FeatureFlag, error)
}

// FeatureFlagService is the narrow check other components consume.
type FeatureFlagService interface {
	IsFeatureEnabled(ctx context.Context, key string, context *feature.FeatureFlagContext) (bool, error)
}
