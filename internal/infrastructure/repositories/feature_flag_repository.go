package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/emberwatch/emberwatch/internal/core/domain/feature"
	"github.com/emberwatch/emberwatch/internal/core/ports"
	"github.com/emberwatch/emberwatch/internal/infrastructure/db"
	"github.com/google/uuid"
)

// FeatureFlagRepository implements the feature flag read path over postgres.
type FeatureFlagRepository struct {
	db *db.Database
}

// NewFeatureFlagRepository creates a new feature flag repository
func NewFeatureFlagRepository(database *db.Database) ports.FeatureFlagRepository {
	return &FeatureFlagRepository{
		db: database,
	}
}

type featureFlagRow struct {
	ID           uuid.UUID `db:"id"`
	Name         string    `db:"name"`
	Key          string    `db:"key"`
	Description  string    `db:"description"`
	Type         string    `db:"type"`
	IsEnabled    bool      `db:"is_enabled"`
	EnabledValue []byte    `db:"enabled_value"`
	DefaultValue []byte    `db:"default_value"`
	Rules        []byte    `db:"rules"`
	Rollout      []byte    `db:"rollout"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// GetByKey retrieves a feature flag by key
func (r *FeatureFlagRepository) GetByKey(ctx context.Context, key string) (*feature.FeatureFlag, error) {
	var row featureFlagRow
	query := `
		SELECT id, name, key, description, type, is_enabled, enabled_value, default_value, rules, rollout, created_at, updated_at
		FROM feature_flags
		WHERE key = $1`

	err := r.db.DB.GetContext(ctx, &row, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("feature flag with key %s not found", key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feature flag by key: %w", err)
	}

	return row.toDomain()
}

func (row *featureFlagRow) toDomain() (*feature.FeatureFlag, error) {
	flag := &feature.FeatureFlag{
		ID:          row.ID,
		Name:        row.Name,
		Key:         row.Key,
		Description: row.Description,
		Type:        feature.FeatureFlagType(row.Type),
		IsEnabled:   row.IsEnabled,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if len(row.EnabledValue) > 0 {
		if err := json.Unmarshal(row.EnabledValue, &flag.EnabledValue); err != nil {
			return nil, fmt.Errorf("failed to decode enabled_value: %w", err)
		}
	}
	if len(row.DefaultValue) > 0 {
		if err := json.Unmarshal(row.DefaultValue, &flag.DefaultValue); err != nil {
			return nil, fmt.Errorf("failed to decode default_value: %w", err)
		}
	}
	if len(row.Rules) > 0 {
		if err := json.Unmarshal(row.Rules, &flag.Rules); err != nil {
			return nil, fmt.Errorf("failed to decode rules: %w", err)
		}
	}
	if len(row.Rollout) > 0 {
		if err := json.Unmarshal(row.Rollout, &flag.Rollout); err != nil {
			return nil, fmt.Errorf("failed to decode rollout: %w", err)
		}
	}
	return flag, nil
}
