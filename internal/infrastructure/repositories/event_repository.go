package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/emberwatch/emberwatch/internal/core/domain/event"
	"github.com/emberwatch/emberwatch/internal/core/ports"
	"github.com/emberwatch/emberwatch/internal/infrastructure/db"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EventRepository reads stored events. The table is written by the
// ingestion pipeline; this service never inserts.
type EventRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewEventRepository(database *db.Database, logger *logrus.Logger) ports.EventStore {
	return &EventRepository{db: database, logger: logger}
}

type eventRow struct {
	ProjectID   uuid.UUID `db:"project_id"`
	EventID     string    `db:"event_id"`
	PrimaryHash string    `db:"primary_hash"`
	Payload     []byte    `db:"payload"`
	ReceivedAt  time.Time `db:"received_at"`
}

// GetEventByID returns the stored event, or nil when no such event exists
// in the project.
func (r *EventRepository) GetEventByID(ctx context.Context, projectID uuid.UUID, eventID string) (*event.Event, error) {
	var row eventRow
	query := `
		SELECT project_id, event_id, primary_hash, payload, received_at
		FROM events
		WHERE project_id = $1 AND event_id = $2`

	err := r.db.DB.GetContext(ctx, &row, query, projectID, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event by ID: %w", err)
	}

	var ev event.Event
	if err := json.Unmarshal(row.Payload, &ev); err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"project_id": projectID, "event_id": eventID}).WithError(err).Error("stored event payload is not valid JSON")
		}
		return nil, fmt.Errorf("failed to decode event payload: %w", err)
	}
	ev.ID = row.EventID
	ev.ProjectID = row.ProjectID
	ev.GroupHash = row.PrimaryHash
	ev.ReceivedAt = row.ReceivedAt
	return &ev, nil
}
