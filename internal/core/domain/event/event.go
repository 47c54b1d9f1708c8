package event

import (
	"crypto/md5"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Event is a stored error event as retrieved from the event store.
// The payload mirrors what the ingestion pipeline wrote; this service only
// reads it.
type Event struct {
	ID          string      `json:"event_id" db:"event_id"`
	ProjectID   uuid.UUID   `json:"project_id" db:"project_id"`
	Message     string      `json:"message,omitempty"`
	Platform    string      `json:"platform,omitempty"`
	Tags        [][2]string `json:"tags,omitempty"`
	Exceptions  []Exception `json:"exceptions,omitempty"`
	GroupHash   string      `json:"group_hash,omitempty" db:"primary_hash"`
	ReceivedAt  time.Time   `json:"received_at" db:"received_at"`
}

// Exception is one entry of an event's exception chain, oldest first.
type Exception struct {
	Type       string      `json:"type"`
	Value      string      `json:"value,omitempty"`
	Mechanism  *Mechanism  `json:"mechanism,omitempty"`
	Stacktrace *Stacktrace `json:"stacktrace,omitempty"`
}

// Mechanism describes how an exception was captured.
type Mechanism struct {
	Type    string         `json:"type,omitempty"`
	Handled *bool          `json:"handled,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Stacktrace holds frames ordered oldest call first, matching the wire
// format of the ingestion pipeline.
type Stacktrace struct {
	Frames []Frame `json:"frames"`
}

// Frame is a single stack frame as stored.
type Frame struct {
	Function    string `json:"function,omitempty"`
	Module      string `json:"module,omitempty"`
	Filename    string `json:"filename,omitempty"`
	LineNo      int    `json:"lineno,omitempty"`
	InApp       bool   `json:"in_app,omitempty"`
	ContextLine string `json:"context_line,omitempty"`
}

// PrimaryHash returns the grouping hash for the event. All events of the
// same group share it, so it is the natural cache key for per-group
// artifacts. When the ingestion pipeline did not store one, a stable
// fallback is derived from the top exception and message.
func (e *Event) PrimaryHash() string {
	if e.GroupHash != "" {
		return e.GroupHash
	}
	h := md5.New()
	for _, exc := range e.Exceptions {
		h.Write([]byte(exc.Type))
		h.Write([]byte{0})
		h.Write([]byte(exc.Value))
		h.Write([]byte{0})
	}
	h.Write([]byte(e.Message))
	return hex.EncodeToString(h.Sum(nil))
}
