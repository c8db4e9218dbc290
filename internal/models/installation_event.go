package models

import "time"

// InstallationEvent is a single audit entry of an installation session.
type InstallationEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // SESSION_OPENED | STEP_COMPLETED | SCAN_ACCEPTED | SCAN_REJECTED | SCAN_ERROR | FINISHED | SESSION_CLOSED
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
