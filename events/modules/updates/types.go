// Package updates defines the Kafka events emitted for detected regulatory updates.
package updates

import (
	"time"

	"github.com/qeme/sentinel-lite/model"
)

// Event contract constants.
const (
	EventTypeUpdateDetected = "regulatory.update.detected"
	SchemaVersion           = "v1"
)

// UpdateDetectedEvent is published once per update produced by a fresh check cycle.
type UpdateDetectedEvent struct {
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	SchemaVersion string    `json:"schema_version"`

	Update model.RegulatoryUpdate `json:"update"`
}
