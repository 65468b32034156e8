package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/circadia-app/circadia/backend/internal/models"
	"github.com/circadia-app/circadia/backend/internal/repository"
)

type insightService struct {
	insights repository.InsightRepository
}

// NewInsightService creates a new insight service
func NewInsightService(insights repository.InsightRepository) InsightService {
	return &insightService{insights: insights}
}

func (s *insightService) GetInsights(ctx context.Context, userID string) ([]models.Insight, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	insights, err := s.insights.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return insights, nil
}

func (s *insightService) MarkRead(ctx context.Context, userID, insightID string, read bool) (*models.Insight, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	insight, err := s.insights.MarkRead(ctx, userID, insightID, read)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return insight, nil
}
