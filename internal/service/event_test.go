package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/circadia-app/circadia/backend/internal/models"
	"github.com/circadia-app/circadia/backend/internal/repository"
)

func TestRecordEvent_StoresEventAndEvaluates(t *testing.T) {
	ctx := context.Background()
	eventRepo := newMockEventRepository()
	insightRepo := newMockInsightRepository()
	circadian := newTestService(eventRepo, insightRepo, time.UTC)
	svc := NewEventService(eventRepo, circadian)

	resp, err := svc.RecordEvent(ctx, "user-1", &models.EventInput{
		Kind:      "fast_start",
		Timestamp: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("RecordEvent failed: %v", err)
	}
	if resp.Event == nil || resp.Event.ID == "" {
		t.Fatal("Expected a stored event with an ID")
	}
	if resp.Event.Kind != models.KindFastStart {
		t.Errorf("Expected kind %s, got %s", models.KindFastStart, resp.Event.Kind)
	}
	if len(resp.Insights) != 1 {
		t.Fatalf("Expected 1 insight, got %d", len(resp.Insights))
	}
	if eventRepo.insertCalls != 1 {
		t.Errorf("Expected 1 event insert, got %d", eventRepo.insertCalls)
	}
}

func TestRecordEvent_InsightFailureIsBestEffort(t *testing.T) {
	ctx := context.Background()
	eventRepo := newMockEventRepository()
	insightRepo := newMockInsightRepository()
	insightRepo.failAll = errors.New("insert failed")
	circadian := newTestService(eventRepo, insightRepo, time.UTC)
	svc := NewEventService(eventRepo, circadian)

	// The event is already durable when insight persistence fails, so the
	// request succeeds with an empty insight list.
	resp, err := svc.RecordEvent(ctx, "user-1", &models.EventInput{
		Kind:      "fast_start",
		Timestamp: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Expected best-effort success, got error: %v", err)
	}
	if len(resp.Insights) != 0 {
		t.Errorf("Expected no insights, got %d", len(resp.Insights))
	}
	if eventRepo.insertCalls != 1 {
		t.Errorf("Expected the event to be stored, got %d inserts", eventRepo.insertCalls)
	}
}

func TestRecordEvent_ValidationFailsBeforeStore(t *testing.T) {
	ctx := context.Background()
	eventRepo := newMockEventRepository()
	circadian := newTestService(eventRepo, newMockInsightRepository(), time.UTC)
	svc := NewEventService(eventRepo, circadian)

	_, err := svc.RecordEvent(ctx, "user-1", &models.EventInput{Kind: "not_a_kind", Timestamp: time.Now()})
	if !IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if eventRepo.insertCalls != 0 {
		t.Errorf("Expected no inserts on validation failure, got %d", eventRepo.insertCalls)
	}
}

func TestGetUserEvents_ClampsLimit(t *testing.T) {
	ctx := context.Background()
	eventRepo := newMockEventRepository()
	for i := 0; i < 60; i++ {
		eventRepo.events = append(eventRepo.events, models.Event{
			ID:        "ev",
			UserID:    "user-1",
			Kind:      models.KindMeal,
			Timestamp: time.Date(2025, 3, 10, 8, 0, i, 0, time.UTC),
		})
	}
	circadian := newTestService(eventRepo, newMockInsightRepository(), time.UTC)
	svc := NewEventService(eventRepo, circadian)

	events, err := svc.GetUserEvents(ctx, "user-1", 0, 0)
	if err != nil {
		t.Fatalf("GetUserEvents failed: %v", err)
	}
	if len(events) != 50 {
		t.Errorf("Expected default limit of 50 events, got %d", len(events))
	}

	events, err = svc.GetUserEvents(ctx, "user-1", 1000, 0)
	if err != nil {
		t.Fatalf("GetUserEvents failed: %v", err)
	}
	if len(events) != 50 {
		t.Errorf("Expected oversized limit clamped to 50, got %d", len(events))
	}
}

func TestInsightService_MarkRead(t *testing.T) {
	ctx := context.Background()
	insightRepo := newMockInsightRepository()
	insightRepo.insights = append(insightRepo.insights, models.Insight{
		ID:          "insight-1",
		UserID:      "user-1",
		InsightType: models.InsightLongFast,
	})
	svc := NewInsightService(insightRepo)

	insight, err := svc.MarkRead(ctx, "user-1", "insight-1", true)
	if err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if !insight.IsRead {
		t.Error("Expected insight to be marked read")
	}

	// Another user's insight is invisible.
	if _, err := svc.MarkRead(ctx, "user-2", "insight-1", true); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for another user's insight, got %v", err)
	}
}

func TestInsightService_RequiresUserID(t *testing.T) {
	ctx := context.Background()
	svc := NewInsightService(newMockInsightRepository())

	if _, err := svc.GetInsights(ctx, ""); !errors.Is(err, ErrMissingUserID) {
		t.Errorf("Expected ErrMissingUserID, got %v", err)
	}
	if _, err := svc.MarkRead(ctx, "", "insight-1", true); !errors.Is(err, ErrMissingUserID) {
		t.Errorf("Expected ErrMissingUserID, got %v", err)
	}
}
