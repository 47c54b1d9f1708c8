package services

import (
	"context"

	"github.com/emberwatch/emberwatch/internal/core/ports"
	"github.com/google/uuid"
)

// StaticPolicyResolver answers the same policy for every organization.
// Deployments with per-org data processing agreements replace it.
type StaticPolicyResolver struct {
	policy ports.Policy
}

func NewStaticPolicyResolver(policy string) *StaticPolicyResolver {
	return &StaticPolicyResolver{policy: ports.Policy(policy)}
}

func (r *StaticPolicyResolver) Resolve(ctx context.Context, orgID uuid.UUID) ports.Policy {
	return r.policy
}
