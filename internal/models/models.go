package models

import "time"

// Event represents one observed occurrence reported for a user.
// Timestamp is the instant the event occurred, not when it was ingested.
type Event struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Kind      EventKind         `json:"event_type"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Insight represents a derived, user-facing observation.
// ScheduledFor is the instant the insight becomes deliverable; for immediate
// insights it equals generation time, for deferred ones a future instant
// derived from the triggering event. It is always >= the event timestamp.
type Insight struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	InsightType  InsightType `json:"insight_type"`
	Message      string      `json:"message"`
	ScheduledFor time.Time   `json:"scheduled_for"`
	IsRead       bool        `json:"is_read"`
	CreatedAt    time.Time   `json:"created_at"`
}

// EventInput is the wire form of an event inside an ingestion or record request.
type EventInput struct {
	Kind      string            `json:"event_type" validate:"required"`
	Timestamp time.Time         `json:"timestamp" validate:"required"`
	Metadata  map[string]string `json:"metadata"`
}

// IngestEventRequest is the body of POST /api/v1/insights/events.
type IngestEventRequest struct {
	Event *EventInput `json:"event" validate:"required"`
}

// RecordEventRequest is the body of POST /api/v1/events.
type RecordEventRequest struct {
	Event *EventInput `json:"event" validate:"required"`
}

// InsightsResponse wraps the insights generated by one ingestion call.
type InsightsResponse struct {
	Insights []Insight `json:"insights"`
}

// RecordEventResponse is returned when an event is recorded and evaluated in one call.
type RecordEventResponse struct {
	Event    *Event    `json:"event"`
	Insights []Insight `json:"insights"`
}

// MarkReadRequest toggles an insight's read flag.
type MarkReadRequest struct {
	IsRead *bool `json:"is_read" validate:"required"`
}
