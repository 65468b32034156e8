package repository

import (
	"context"
	"errors"
	"time"

	"github.com/circadia-app/circadia/backend/internal/models"
)

// Order is the sort direction for event queries.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// EventQuery narrows an event range query. Nil fields mean "any".
type EventQuery struct {
	Kind   *models.EventKind
	Since  *time.Time
	Until  *time.Time
	Order  Order
	Limit  int // 0 means no limit
	Offset int
}

// EventRepository is the append-only event store boundary.
type EventRepository interface {
	Insert(ctx context.Context, event *models.Event) (*models.Event, error)
	QueryByUser(ctx context.Context, userID string, q EventQuery) ([]models.Event, error)
}

// InsightRepository is the insight store boundary. Inserted insights are only
// ever mutated through the read toggle; the core never deletes them.
type InsightRepository interface {
	Insert(ctx context.Context, insight *models.Insight) (*models.Insight, error)
	GetByUser(ctx context.Context, userID string) ([]models.Insight, error)
	MarkRead(ctx context.Context, userID, insightID string, read bool) (*models.Insight, error)
}
