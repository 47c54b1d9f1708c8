package ports

import (
	"context"

	"github.com/emberwatch/emberwatch/internal/core/domain/event"
	"github.com/google/uuid"
)

// Policy is the data-sharing stance of an organization towards the AI
// provider.
type Policy string

const (
	// PolicyAllowed permits sending event data without further consent.
	PolicyAllowed Policy = "allowed"
	// PolicyIndividualConsent requires explicit per-request consent.
	PolicyIndividualConsent Policy = "individual_consent"
	// PolicySubprocessor blocks the feature for subprocessor-restricted orgs.
	PolicySubprocessor Policy = "subprocessor"
)

// PolicyResolver determines the AI data-sharing policy for an organization.
type PolicyResolver interface {
	Resolve(ctx context.Context, orgID uuid.UUID) Policy
}

// SuggestionService produces (and caches) an AI-generated suggestion for an
// event's group.
type SuggestionService interface {
	// Suggest returns the cached suggestion for the event's group, asking
	// the model only on a cache miss.
	Suggest(ctx context.Context, ev *event.Event) (string, error)
}
