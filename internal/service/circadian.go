package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/circadia-app/circadia/backend/internal/logger"
	"github.com/circadia-app/circadia/backend/internal/models"
	"github.com/circadia-app/circadia/backend/internal/repository"
)

var validate = validator.New()

type circadianService struct {
	events   repository.EventRepository
	insights repository.InsightRepository

	loc          *time.Location
	sleepWindow  int
	fastReminder time.Duration

	now func() time.Time
}

// NewCircadianService creates the insight engine. loc fixes the timezone for
// hour-of-day rule math, sleepWindow the rolling look-back for sleep onset
// statistics, fastReminder the deferred offset for long_fast insights.
func NewCircadianService(
	events repository.EventRepository,
	insights repository.InsightRepository,
	loc *time.Location,
	sleepWindow int,
	fastReminder time.Duration,
) CircadianService {
	return &circadianService{
		events:       events,
		insights:     insights,
		loc:          loc,
		sleepWindow:  sleepWindow,
		fastReminder: fastReminder,
		now:          time.Now,
	}
}

// parseEventInput validates the wire-level event and resolves its typed
// payload. Validation failures never touch a store.
func parseEventInput(userID string, input *models.EventInput) (models.Event, models.EventPayload, error) {
	if userID == "" {
		return models.Event{}, nil, ErrMissingUserID
	}
	if input == nil {
		return models.Event{}, nil, ErrMissingEvent
	}
	if err := validate.Struct(input); err != nil {
		return models.Event{}, nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	kind, err := models.ParseEventKind(input.Kind)
	if err != nil {
		return models.Event{}, nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	payload, err := models.DecodePayload(kind, input.Metadata)
	if err != nil {
		return models.Event{}, nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	ev := models.Event{
		UserID:    userID,
		Kind:      kind,
		Timestamp: input.Timestamp,
		Metadata:  input.Metadata,
	}
	return ev, payload, nil
}

// IngestEvent implements the synchronous ingestion contract. Each call is
// self-contained; there is no shared state across calls beyond the stores.
// Writes are at-least-once: if the caller goes away mid-evaluation, insights
// already persisted are not rolled back.
func (s *circadianService) IngestEvent(ctx context.Context, userID string, input *models.EventInput) ([]models.Insight, error) {
	ev, payload, err := parseEventInput(userID, input)
	if err != nil {
		return nil, err
	}
	return s.evaluate(ctx, ev, payload)
}

func (s *circadianService) Evaluate(ctx context.Context, ev models.Event) ([]models.Insight, error) {
	payload, err := models.DecodePayload(ev.Kind, ev.Metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.evaluate(ctx, ev, payload)
}

func (s *circadianService) evaluate(ctx context.Context, ev models.Event, payload models.EventPayload) ([]models.Insight, error) {
	now := s.now()
	log := logger.Ctx(ctx)

	// Same-day context is required for every evaluation; sleep history only
	// feeds the late_dinner rule, so the two reads run concurrently and the
	// history read is skipped entirely for non-dinner events.
	dayStart := startOfDay(now, s.loc)
	dayEnd := dayStart.Add(24 * time.Hour)

	var (
		sameDay   []models.Event
		sleepMean *float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		evs, err := s.events.QueryByUser(gctx, ev.UserID, repository.EventQuery{
			Since: &dayStart,
			Until: &dayEnd,
			Order: repository.OrderAsc,
		})
		if err != nil {
			return fmt.Errorf("%w: same-day events: %v", ErrStoreUnavailable, err)
		}
		sameDay = evs
		return nil
	})

	if p, ok := payload.(models.MealPayload); ok && p.Type == models.MealDinner {
		g.Go(func() error {
			kind := models.KindSleepStart
			history, err := s.events.QueryByUser(gctx, ev.UserID, repository.EventQuery{
				Kind:  &kind,
				Order: repository.OrderDesc,
				Limit: s.sleepWindow,
			})
			if err != nil {
				// Optional context: a failed read degrades the dinner rule
				// to "not applicable" instead of aborting the call.
				log.Warn("sleep history unavailable, skipping late_dinner rule", logger.Err(err))
				return nil
			}
			if mean, err := MeanMinuteOfDay(history, s.loc); err == nil {
				sleepMean = &mean
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	rc := RuleContext{
		Now:            now,
		Loc:            s.loc,
		FastReminder:   s.fastReminder,
		SameDay:        sameDay,
		SleepOnsetMean: sleepMean,
	}

	candidates := EvaluateRules(ev, payload, rc)
	if len(candidates) == 0 {
		return []models.Insight{}, nil
	}

	return s.persist(ctx, ev.UserID, candidates)
}

// persist stamps and writes each candidate independently. One failed insert
// never discards the others; only when every insert fails does the call
// surface a store error.
func (s *circadianService) persist(ctx context.Context, userID string, candidates []models.Insight) ([]models.Insight, error) {
	log := logger.Ctx(ctx)

	stored := make([]models.Insight, 0, len(candidates))
	var lastErr error
	for _, cand := range candidates {
		cand.UserID = userID
		cand.IsRead = false

		in, err := s.insights.Insert(ctx, &cand)
		if err != nil {
			lastErr = err
			log.Error("failed to persist insight",
				logger.String("insight_type", string(cand.InsightType)),
				logger.Err(err),
			)
			continue
		}
		stored = append(stored, *in)
	}

	if len(stored) == 0 && lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, lastErr)
	}

	return stored, nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
