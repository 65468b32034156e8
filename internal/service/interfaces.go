package service

import (
	"context"

	"github.com/circadia-app/circadia/backend/internal/models"
)

// CircadianService is the circadian rhythm insight engine entry point.
type CircadianService interface {
	// IngestEvent validates an inbound event, evaluates the rule set against
	// it and the user's history, persists the resulting insights and returns
	// them. The event itself is not recorded.
	IngestEvent(ctx context.Context, userID string, input *models.EventInput) ([]models.Insight, error)

	// Evaluate runs the rule set against an already-recorded event.
	Evaluate(ctx context.Context, event models.Event) ([]models.Insight, error)
}

// EventService defines the interface for event recording and retrieval.
type EventService interface {
	RecordEvent(ctx context.Context, userID string, input *models.EventInput) (*models.RecordEventResponse, error)
	GetUserEvents(ctx context.Context, userID string, limit, offset int) ([]models.Event, error)
}

// InsightService defines the interface for reading and toggling insights.
type InsightService interface {
	GetInsights(ctx context.Context, userID string) ([]models.Insight, error)
	MarkRead(ctx context.Context, userID, insightID string, read bool) (*models.Insight, error)
}
