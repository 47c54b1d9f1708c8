package ports

import (
	"context"

	"github.com/emberwatch/emberwatch/internal/core/domain/event"
	"github.com/google/uuid"
)

// EventStore is the narrow read interface onto the platform's event
// storage. Ingestion and grouping live elsewhere.
type EventStore interface {
	// GetEventByID returns the stored event or nil when it does not exist.
	GetEventByID(ctx context.Context, projectID uuid.UUID, eventID string) (*event.Event, error)
}
