package domain

import "time"

// Feed event types published when the observation set changes.
const (
	EventObservationCreated = "observation.created"
	EventObservationDeleted = "observation.deleted"
)

// FeedEvent announces a change to the observation set to downstream consumers.
type FeedEvent struct {
	Type          string    `json:"type"`
	ObservationID string    `json:"observation_id"`
	OccurredAt    time.Time `json:"occurred_at"`
	// Item is set for created observations.
	Item *MapItem `json:"item,omitempty"`
}
