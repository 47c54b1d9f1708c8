package mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/emberwatch/emberwatch/internal/core/domain/event"
	"github.com/emberwatch/emberwatch/internal/core/domain/feature"
	"github.com/emberwatch/emberwatch/internal/core/ports"
	"github.com/google/uuid"
)

// EventStoreMock is a lightweight mock for EventStore
type EventStoreMock struct {
	GetEventByIDFn func(ctx context.Context, projectID uuid.UUID, eventID string) (*event.Event, error)
}

func (m *EventStoreMock) GetEventByID(ctx context.Context, projectID uuid.UUID, eventID string) (*event.Event, error) {
	if m.GetEventByIDFn != nil {
		return m.GetEventByIDFn(ctx, projectID, eventID)
	}
	return nil, nil
}

// FeatureFlagRepositoryMock is a lightweight mock for FeatureFlagRepository
type FeatureFlagRepositoryMock struct {
	GetByKeyFn func(ctx context.Context, key string) (*feature.FeatureFlag, error)
}

func (m *FeatureFlagRepositoryMock) GetByKey(ctx context.Context, key string) (*feature.FeatureFlag, error) {
	if m.GetByKeyFn != nil {
		return m.GetByKeyFn(ctx, key)
	}
	return nil, fmt.Errorf("not found")
}

// FeatureFlagServiceMock is a lightweight mock for FeatureFlagService
type FeatureFlagServiceMock struct {
	IsFeatureEnabledFn func(ctx context.Context, key string, context *feature.FeatureFlagContext) (bool, error)
}

func (m *FeatureFlagServiceMock) IsFeatureEnabled(ctx context.Context, key string, context *feature.FeatureFlagContext) (bool, error) {
	if m.IsFeatureEnabledFn != nil {
		return m.IsFeatureEnabledFn(ctx, key, context)
	}
	return false, nil
}

// CacheMock is a lightweight mock for Cache
type CacheMock struct {
	GetFn    func(ctx context.Context, key string) ([]byte, bool, error)
	SetFn    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFn func(ctx context.Context, key string) error
}

func (m *CacheMock) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	return nil, false, nil
}
func (m *CacheMock) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFn != nil {
		return m.SetFn(ctx, key, value, ttl)
	}
	return nil
}
func (m *CacheMock) Delete(ctx context.Context, key string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, key)
	}
	return nil
}

// ChatCompleterMock is a lightweight mock for ChatCompleter
type ChatCompleterMock struct {
	CompleteFn func(ctx context.Context, messages []ports.ChatMessage) (string, error)
}

func (m *ChatCompleterMock) Complete(ctx context.Context, messages []ports.ChatMessage) (string, error) {
	if m.CompleteFn != nil {
		return m.CompleteFn(ctx, messages)
	}
	return "", fmt.Errorf("not configured")
}

// SuggestionServiceMock is a lightweight mock for SuggestionService
type SuggestionServiceMock struct {
	SuggestFn func(ctx context.Context, ev *event.Event) (string, error)
}

func (m *SuggestionServiceMock) Suggest(ctx context.Context, ev *event.Event) (string, error) {
	if m.SuggestFn != nil {
		return m.SuggestFn(ctx, ev)
	}
	return "", fmt.Errorf("not configured")
}

// PolicyResolverMock is a lightweight mock for PolicyResolver
type PolicyResolverMock struct {
	ResolveFn func(ctx context.Context, orgID uuid.UUID) ports.Policy
}

func (m *PolicyResolverMock) Resolve(ctx context.Context, orgID uuid.UUID) ports.Policy {
	if m.ResolveFn != nil {
		return m.ResolveFn(ctx, orgID)
	}
	return ports.PolicyAllowed
}

// RateLimitRepositoryMock is a lightweight mock for RateLimitRepository
type RateLimitRepositoryMock struct {
	IncrementWindowFn func(ctx context.Context, key string, window time.Duration, ttl time.Duration) (int, time.Time, error)
}

func (m *RateLimitRepositoryMock) IncrementWindow(ctx context.Context, key string, window time.Duration, ttl time.Duration) (int, time.Time, error) {
	if m.IncrementWindowFn != nil {
		return m.IncrementWindowFn(ctx, key, window, ttl)
	}
	return 1, time.Now().Truncate(window), nil
}

// RateLimiterMock is a lightweight mock for RateLimiter
type RateLimiterMock struct {
	AllowFn func(ctx context.Context, d ports.RateLimitDescriptor) (bool, int, int, time.Time, error)
}

func (m *RateLimiterMock) Allow(ctx context.Context, d ports.RateLimitDescriptor) (bool, int, int, time.Time, error) {
	if m.AllowFn != nil {
		return m.AllowFn(ctx, d)
	}
	return true, 4, 5, time.Now().Add(time.Second), nil
}
