package feature

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FeatureFlag gates functionality per organization. Flags are owned by the
// platform's flag service; this service only evaluates them.
type FeatureFlag struct {
	ID           uuid.UUID          `json:"id" db:"id"`
	Name         string             `json:"name" db:"name"`
	Key          string             `json:"key" db:"key"`
	Description  string             `json:"description" db:"description"`
	Type         FeatureFlagType    `json:"type" db:"type"`
	IsEnabled    bool               `json:"is_enabled" db:"is_enabled"`
	EnabledValue any                `json:"enabled_value" db:"enabled_value"`
	DefaultValue any                `json:"default_value" db:"default_value"`
	Rules        []FeatureFlagRule  `json:"rules" db:"rules"`
	Rollout      FeatureFlagRollout `json:"rollout" db:"rollout"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" db:"updated_at"`
}

type FeatureFlagType string

const (
	FlagTypeBoolean FeatureFlagType = "boolean"
	FlagTypeString  FeatureFlagType = "string"
	FlagTypeNumber  FeatureFlagType = "number"
	FlagTypeJSON    FeatureFlagType = "json"
)

func (flag *FeatureFlag) Evaluate(context *FeatureFlagContext) (any, bool) {
	if !flag.IsEnabled {
		return flag.DefaultValue, false
	}

	for _, rule := range flag.Rules {
		if rule.Evaluate(context) {
			return rule.Value, true
		}
	}

	if isInRollout(context.OrgID, flag.Rollout.Percentage) {
		return flag.EnabledValue, true
	}

	return flag.DefaultValue, false
}

type FeatureFlagRule struct {
	ID         uuid.UUID              `json:"id"`
	Conditions []FeatureFlagCondition `json:"conditions"`
	Value      any                    `json:"value"`
	Rollout    int                    `json:"rollout"` // percentage 0-100
}

func (rule *FeatureFlagRule) Evaluate(context *FeatureFlagContext) bool {
	// ALL conditions must match before the rule's rollout applies
	for _, condition := range rule.Conditions {
		if !condition.Evaluate(context) {
			return false
		}
	}

	return isInRollout(context.OrgID, rule.Rollout)
}

type FeatureFlagCondition struct {
	Attribute string `json:"attribute"` // e.g. "org_id", "plan"
	Operator  string `json:"operator"`  // "equals", "in", "contains"
	Value     any    `json:"value"`
}

func (a *FeatureFlagCondition) Evaluate(context *FeatureFlagContext) bool {
	switch a.Operator {
	case "equals":
		return a.Value == context.Custom[a.Attribute]
	case "in":
		vals, ok := a.Value.([]any)
		if !ok {
			return false
		}
		return slices.Contains(vals, context.Custom[a.Attribute])
	case "contains":
		s, ok := context.Custom[a.Attribute].(string)
		if !ok {
			return false
		}
		sub, ok := a.Value.(string)
		if !ok {
			return false
		}
		return strings.Contains(s, sub)
	default:
		return false
	}
}

// isInRollout buckets an organization deterministically so the same org
// always lands on the same side of a percentage rollout.
func isInRollout(orgID uuid.UUID, rollout int) bool {
	if rollout >= 100 {
		return true
	}
	if rollout <= 0 {
		return false
	}
	bytes := orgID[:4]
	hash := int(bytes[0])<<24 | int(bytes[1])<<16 | int(bytes[2])<<8 | int(bytes[3])
	return hash%100 < rollout
}

type FeatureFlagRollout struct {
	Percentage int    `json:"percentage"` // 0-100
	Strategy   string `json:"strategy"`   // "random", "org_id"
}

// FeatureFlagContext is the evaluation subject: the organization making the
// request plus the acting user and any custom attributes.
type FeatureFlagContext struct {
	OrgID  uuid.UUID      `json:"org_id"`
	UserID uuid.UUID      `json:"user_id"`
	Custom map[string]any `json:"custom"`
}
