package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/circadia-app/circadia/backend/internal/models"
	"github.com/circadia-app/circadia/backend/pkg/supabase"
)

type insightRepository struct {
	client *supabase.Client
}

// NewInsightRepository creates an insight repository backed by the Supabase store.
func NewInsightRepository(client *supabase.Client) InsightRepository {
	return &insightRepository{client: client}
}

func (r *insightRepository) Insert(ctx context.Context, insight *models.Insight) (*models.Insight, error) {
	data := map[string]any{
		"user_id":       insight.UserID,
		"insight_type":  insight.InsightType,
		"message":       insight.Message,
		"scheduled_for": insight.ScheduledFor.Format(time.RFC3339Nano),
		"is_read":       insight.IsRead,
	}

	body, err := r.client.Insert(ctx, "insights", data)
	if err != nil {
		return nil, fmt.Errorf("failed to insert insight: %w", err)
	}

	var insights []models.Insight
	if err := json.Unmarshal(body, &insights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(insights) == 0 {
		return nil, fmt.Errorf("no insight returned")
	}

	return &insights[0], nil
}

func (r *insightRepository) GetByUser(ctx context.Context, userID string) ([]models.Insight, error) {
	query := map[string]any{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "*",
		"order":   "scheduled_for.desc",
	}

	body, err := r.client.Query(ctx, "insights", query)
	if err != nil {
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}

	var insights []models.Insight
	if err := json.Unmarshal(body, &insights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return insights, nil
}

func (r *insightRepository) MarkRead(ctx context.Context, userID, insightID string, read bool) (*models.Insight, error) {
	query := map[string]any{
		"id":      fmt.Sprintf("eq.%s", insightID),
		"user_id": fmt.Sprintf("eq.%s", userID),
	}

	body, err := r.client.UpdateWhere(ctx, "insights", query, map[string]any{"is_read": read})
	if err != nil {
		return nil, fmt.Errorf("failed to update insight: %w", err)
	}

	var insights []models.Insight
	if err := json.Unmarshal(body, &insights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(insights) == 0 {
		return nil, ErrNotFound
	}

	return &insights[0], nil
}
