package service

import (
	"testing"
	"time"

	"github.com/circadia-app/circadia/backend/internal/models"
)

func TestRulesFor_CoversEveryKind(t *testing.T) {
	kinds := []models.EventKind{
		models.KindFastStart,
		models.KindMeal,
		models.KindSleepStart,
		models.KindLightExposure,
	}
	for _, kind := range kinds {
		if RulesFor(kind) == nil {
			t.Errorf("Expected a rule group for kind %s, got nil", kind)
		}
	}
	if RulesFor(models.EventKind("bogus")) != nil {
		t.Error("Expected nil rule group for unknown kind")
	}
}

func TestLongFastRule_AlwaysApplies(t *testing.T) {
	rule := fastStartRules[0]
	ev := models.Event{
		Kind:      models.KindFastStart,
		Timestamp: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
	}
	rc := RuleContext{
		Now:          time.Date(2025, 3, 10, 8, 0, 5, 0, time.UTC),
		Loc:          time.UTC,
		FastReminder: 16 * time.Hour,
	}

	if !rule.Applies(ev, models.FastStartPayload{}, rc) {
		t.Fatal("Expected long_fast to apply to every fast_start")
	}

	insight := rule.Build(ev, rc)
	if want := ev.Timestamp.Add(16 * time.Hour); !insight.ScheduledFor.Equal(want) {
		t.Errorf("Expected scheduled_for %v, got %v", want, insight.ScheduledFor)
	}
	if insight.ScheduledFor.Before(ev.Timestamp) {
		t.Error("Expected scheduled_for to never precede the event timestamp")
	}
}

func TestLateDinnerRule_GapBoundary(t *testing.T) {
	dinnerRule := mealRules[1]
	if dinnerRule.Name != "late_dinner" {
		t.Fatalf("Expected late_dinner rule at index 1, got %s", dinnerRule.Name)
	}

	mean := 1380.0 // 23:00
	payload := models.MealPayload{Type: models.MealDinner}

	cases := []struct {
		name    string
		minute  int
		applies bool
	}{
		{"gap just inside threshold", 21*60 + 1, true}, // 119 minute gap
		{"gap exactly at threshold", 21 * 60, false},   // 120 minute gap
		{"gap beyond threshold", 20 * 60, false},
		{"dinner after mean onset", 23*60 + 30, true}, // negative gap
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev := models.Event{
				Kind:      models.KindMeal,
				Timestamp: time.Date(2025, 3, 10, 0, tc.minute, 0, 0, time.UTC),
			}
			rc := RuleContext{Loc: time.UTC, SleepOnsetMean: &mean}

			if got := dinnerRule.Applies(ev, payload, rc); got != tc.applies {
				t.Errorf("Applies = %v, want %v", got, tc.applies)
			}
		})
	}
}

func TestLateDinnerRule_NeedsHistoryAndDinner(t *testing.T) {
	dinnerRule := mealRules[1]
	ev := models.Event{
		Kind:      models.KindMeal,
		Timestamp: time.Date(2025, 3, 10, 22, 30, 0, 0, time.UTC),
	}

	if dinnerRule.Applies(ev, models.MealPayload{Type: models.MealDinner}, RuleContext{Loc: time.UTC}) {
		t.Error("Expected rule not to apply without sleep onset history")
	}

	mean := 1380.0
	rc := RuleContext{Loc: time.UTC, SleepOnsetMean: &mean}
	if dinnerRule.Applies(ev, models.MealPayload{Type: models.MealLunch}, rc) {
		t.Error("Expected rule not to apply to non-dinner meals")
	}
}

func TestEvaluateRules_ImmediateInsightsUseNow(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	ev := models.Event{
		Kind:      models.KindMeal,
		Timestamp: time.Date(2025, 3, 10, 10, 15, 0, 0, time.UTC),
	}
	rc := RuleContext{Now: now, Loc: time.UTC}

	candidates := EvaluateRules(ev, models.MealPayload{Type: models.MealBreakfast}, rc)
	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(candidates))
	}
	if !candidates[0].ScheduledFor.Equal(now) {
		t.Errorf("Expected immediate insight scheduled for %v, got %v", now, candidates[0].ScheduledFor)
	}
}
