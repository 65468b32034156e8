package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/circadia-app/circadia/backend/internal/models"
	"github.com/circadia-app/circadia/backend/pkg/supabase"
)

type eventRepository struct {
	client *supabase.Client
}

// NewEventRepository creates an event repository backed by the Supabase store.
func NewEventRepository(client *supabase.Client) EventRepository {
	return &eventRepository{client: client}
}

func (r *eventRepository) Insert(ctx context.Context, event *models.Event) (*models.Event, error) {
	data := map[string]any{
		"user_id":    event.UserID,
		"event_type": event.Kind,
		"timestamp":  event.Timestamp.Format(time.RFC3339Nano),
	}
	if len(event.Metadata) > 0 {
		data["metadata"] = event.Metadata
	}

	body, err := r.client.Insert(ctx, "events", data)
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	var events []models.Event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("no event returned")
	}

	return &events[0], nil
}

func (r *eventRepository) QueryByUser(ctx context.Context, userID string, q EventQuery) ([]models.Event, error) {
	query := map[string]any{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "*",
	}

	if q.Kind != nil {
		query["event_type"] = fmt.Sprintf("eq.%s", *q.Kind)
	}
	switch {
	case q.Since != nil && q.Until != nil:
		query["and"] = fmt.Sprintf("(timestamp.gte.%s,timestamp.lt.%s)",
			q.Since.Format(time.RFC3339Nano), q.Until.Format(time.RFC3339Nano))
	case q.Since != nil:
		query["timestamp"] = fmt.Sprintf("gte.%s", q.Since.Format(time.RFC3339Nano))
	case q.Until != nil:
		query["timestamp"] = fmt.Sprintf("lt.%s", q.Until.Format(time.RFC3339Nano))
	}
	if q.Order == OrderDesc {
		query["order"] = "timestamp.desc"
	} else {
		query["order"] = "timestamp.asc"
	}
	if q.Limit > 0 {
		query["limit"] = q.Limit
	}
	if q.Offset > 0 {
		query["offset"] = q.Offset
	}

	body, err := r.client.Query(ctx, "events", query)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}

	var events []models.Event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return events, nil
}
