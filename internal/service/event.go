package service

import (
	"context"
	"fmt"

	"github.com/circadia-app/circadia/backend/internal/logger"
	"github.com/circadia-app/circadia/backend/internal/models"
	"github.com/circadia-app/circadia/backend/internal/repository"
)

type eventService struct {
	events    repository.EventRepository
	circadian CircadianService
}

// NewEventService creates a new event service
func NewEventService(events repository.EventRepository, circadian CircadianService) EventService {
	return &eventService{
		events:    events,
		circadian: circadian,
	}
}

// RecordEvent writes the event through the store, then runs the insight
// engine against the stored event. Insight generation is best-effort on this
// path: a store failure after the event is recorded is logged and reported as
// an empty insight list, not as a failed request.
func (s *eventService) RecordEvent(ctx context.Context, userID string, input *models.EventInput) (*models.RecordEventResponse, error) {
	ev, _, err := parseEventInput(userID, input)
	if err != nil {
		return nil, err
	}

	stored, err := s.events.Insert(ctx, &ev)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	insights, err := s.circadian.Evaluate(ctx, *stored)
	if err != nil {
		logger.Ctx(ctx).Warn("event recorded but insight evaluation failed", logger.Err(err))
		insights = []models.Insight{}
	}

	return &models.RecordEventResponse{
		Event:    stored,
		Insights: insights,
	}, nil
}

func (s *eventService) GetUserEvents(ctx context.Context, userID string, limit, offset int) ([]models.Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	events, err := s.events.QueryByUser(ctx, userID, repository.EventQuery{
		Order:  repository.OrderDesc,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return events, nil
}
