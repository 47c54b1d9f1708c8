package services_test

import (
	"context"
	"errors"
	"testing"

	impl "github.com/emberwatch/emberwatch/internal/application/services"
	"github.com/emberwatch/emberwatch/internal/core/domain/feature"
	tmocks "github.com/emberwatch/emberwatch/test/mocks"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func TestIsFeatureEnabled_NotFound(t *testing.T) {
	repo := &tmocks.FeatureFlagRepositoryMock{GetByKeyFn: func(ctx context.Context, key string) (*feature.FeatureFlag, error) {
		return nil, errors.New("boom")
	}}
	svc := impl.NewFeatureFlagService(repo, logrus.New())
	_, err := svc.IsFeatureEnabled(context.Background(), "missing", &feature.FeatureFlagContext{})
	if err == nil {
		t.Fatalf("expected error when flag missing")
	}
}

func TestIsFeatureEnabled_FullRollout(t *testing.T) {
	repo := &tmocks.FeatureFlagRepositoryMock{GetByKeyFn: func(ctx context.Context, key string) (*feature.FeatureFlag, error) {
		if key != impl.OpenAISuggestionFlag {
			t.Fatalf("unexpected key %q", key)
		}
		return &feature.FeatureFlag{
			Key:          key,
			Type:         feature.FlagTypeBoolean,
			IsEnabled:    true,
			EnabledValue: true,
			DefaultValue: false,
			Rollout:      feature.FeatureFlagRollout{Percentage: 100, Strategy: "org_id"},
		}, nil
	}}
	svc := impl.NewFeatureFlagService(repo, logrus.New())
	enabled, err := svc.IsFeatureEnabled(context.Background(), impl.OpenAISuggestionFlag, &feature.FeatureFlagContext{OrgID: uuid.New()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !enabled {
		t.Fatalf("flag at 100%% rollout should be enabled")
	}
}

func TestIsFeatureEnabled_DisabledFlag(t *testing.T) {
	repo := &tmocks.FeatureFlagRepositoryMock{GetByKeyFn: func(ctx context.Context, key string) (*feature.FeatureFlag, error) {
		return &feature.FeatureFlag{
			Key:          key,
			Type:         feature.FlagTypeBoolean,
			IsEnabled:    false,
			DefaultValue: false,
			Rollout:      feature.FeatureFlagRollout{Percentage: 100},
		}, nil
	}}
	svc := impl.NewFeatureFlagService(repo, logrus.New())
	enabled, err := svc.IsFeatureEnabled(context.Background(), impl.OpenAISuggestionFlag, &feature.FeatureFlagContext{OrgID: uuid.New()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enabled {
		t.Fatalf("disabled flag must evaluate to false regardless of rollout")
	}
}
