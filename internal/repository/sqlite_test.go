package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circadia-app/circadia/backend/internal/models"
)

func newTestStore(t *testing.T) *sqliteStore {
	t.Helper()
	store, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteEventRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	ts := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	stored, err := store.Insert(ctx, &models.Event{
		UserID:    "user-1",
		Kind:      models.KindMeal,
		Timestamp: ts,
		Metadata:  map[string]string{"meal_type": "breakfast"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, stored.ID)
	require.False(t, stored.CreatedAt.IsZero())

	events, err := store.QueryByUser(ctx, "user-1", EventQuery{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, stored.ID, events[0].ID)
	assert.Equal(t, models.KindMeal, events[0].Kind)
	assert.True(t, events[0].Timestamp.Equal(ts))
	assert.Equal(t, "breakfast", events[0].Metadata["meal_type"])
}

func TestSQLiteEventQueryFilters(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	seed := []models.Event{
		{UserID: "user-1", Kind: models.KindSleepStart, Timestamp: base.Add(-26 * time.Hour)},
		{UserID: "user-1", Kind: models.KindMeal, Timestamp: base.Add(8 * time.Hour)},
		{UserID: "user-1", Kind: models.KindSleepStart, Timestamp: base.Add(23 * time.Hour)},
		{UserID: "user-2", Kind: models.KindMeal, Timestamp: base.Add(9 * time.Hour)},
	}
	for i := range seed {
		_, err := store.Insert(ctx, &seed[i])
		require.NoError(t, err)
	}

	// Kind filter only sees the user's sleep events.
	kind := models.KindSleepStart
	events, err := store.QueryByUser(ctx, "user-1", EventQuery{Kind: &kind, Order: OrderDesc})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].Timestamp.After(events[1].Timestamp))

	// Half-open range [base, base+24h) covers the calendar day.
	until := base.Add(24 * time.Hour)
	events, err = store.QueryByUser(ctx, "user-1", EventQuery{Since: &base, Until: &until, Order: OrderAsc})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.KindMeal, events[0].Kind)

	// Limit and offset page through results.
	events, err = store.QueryByUser(ctx, "user-1", EventQuery{Order: OrderAsc, Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestSQLiteEventQueryNormalizesOffsets(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// 10:00+02:00 is 08:00Z; stored text must compare correctly against
	// UTC-formatted range bounds.
	offset := time.FixedZone("UTC+2", 2*3600)
	seed := []models.Event{
		{UserID: "user-1", Kind: models.KindMeal, Timestamp: time.Date(2025, 3, 10, 10, 0, 0, 0, offset)},
		{UserID: "user-1", Kind: models.KindMeal, Timestamp: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
		{UserID: "user-1", Kind: models.KindMeal, Timestamp: time.Date(2025, 3, 10, 9, 0, 0, 500_000_000, time.UTC)},
	}
	for i := range seed {
		_, err := store.Insert(ctx, &seed[i])
		require.NoError(t, err)
	}

	since := time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)
	until := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	events, err := store.QueryByUser(ctx, "user-1", EventQuery{Since: &since, Until: &until, Order: OrderAsc})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Timestamp.Equal(seed[0].Timestamp))

	// Ascending order must be chronological across mixed offsets and
	// sub-second precision.
	events, err = store.QueryByUser(ctx, "user-1", EventQuery{Order: OrderAsc})
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i := 1; i < len(events); i++ {
		assert.True(t, events[i-1].Timestamp.Before(events[i].Timestamp),
			"events out of order at %d: %v then %v", i, events[i-1].Timestamp, events[i].Timestamp)
	}
}

func TestSQLiteInsightRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	repo := &sqliteInsightRepository{store: store}

	sched := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	stored, err := repo.Insert(ctx, &models.Insight{
		UserID:       "user-1",
		InsightType:  models.InsightLongFast,
		Message:      "reminder",
		ScheduledFor: sched,
	})
	require.NoError(t, err)
	require.NotEmpty(t, stored.ID)

	insights, err := repo.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, insights, 1)
	assert.Equal(t, models.InsightLongFast, insights[0].InsightType)
	assert.True(t, insights[0].ScheduledFor.Equal(sched))
	assert.False(t, insights[0].IsRead)
}

func TestSQLiteMarkRead(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	repo := &sqliteInsightRepository{store: store}

	stored, err := repo.Insert(ctx, &models.Insight{
		UserID:       "user-1",
		InsightType:  models.InsightLateDinner,
		Message:      "late dinner",
		ScheduledFor: time.Now().UTC(),
	})
	require.NoError(t, err)

	updated, err := repo.MarkRead(ctx, "user-1", stored.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsRead)

	// Toggling back works too.
	updated, err = repo.MarkRead(ctx, "user-1", stored.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsRead)

	// Unknown ID and other users' insights are not found.
	_, err = repo.MarkRead(ctx, "user-1", "missing", true)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = repo.MarkRead(ctx, "user-2", stored.ID, true)
	assert.True(t, errors.Is(err, ErrNotFound))
}
