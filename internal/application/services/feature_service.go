package services

import (
	"context"

	"github.com/emberwatch/emberwatch/internal/core/domain/feature"
	"github.com/emberwatch/emberwatch/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// OpenAISuggestionFlag gates the AI suggested-fix endpoint per organization.
const OpenAISuggestionFlag = "organizations:open-ai-suggestion"

type FeatureFlagService struct {
	repo   ports.FeatureFlagRepository
	logger *logrus.Logger
}

func NewFeatureFlagService(repo ports.FeatureFlagRepository, logger *logrus.Logger) ports.FeatureFlagService {
	return &FeatureFlagService{repo: repo, logger: logger}
}

func (s *FeatureFlagService) IsFeatureEnabled(ctx context.Context, key string, context *feature.FeatureFlagContext) (bool, error) {
	flag, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"key": key}).WithError(err).Warn("feature flag not found or repo error")
		}
		return false, err
	}

	_, enabled := flag.Evaluate(context)
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"key": key, "enabled": enabled}).Debug("feature flag evaluated")
	}
	return enabled, nil
}
