package service

import (
	"fmt"
	"time"

	"github.com/circadia-app/circadia/backend/internal/models"
)

// Rule thresholds. Hour-of-day values are evaluated in the engine's configured
// location (default UTC); event timestamps themselves stay absolute instants.
const (
	lateBreakfastHour    = 10
	lateMorningLightHour = 9
	lateEveningLightHour = 20

	// A dinner closer than this to the user's average sleep onset (or after
	// it) counts as late.
	dinnerSleepGapMinutes = 120
)

// RuleContext carries everything a rule may consult beyond the event itself.
type RuleContext struct {
	// Now is the evaluation instant; immediate insights are scheduled for it.
	Now time.Time
	// Loc is the location for hour-of-day math.
	Loc *time.Location
	// FastReminder is the deferred offset for long_fast insights.
	FastReminder time.Duration
	// SameDay holds the user's events for the current calendar day, ascending.
	// Shared context for every evaluation; no current rule consults it, but it
	// is part of the evaluation contract and is where intra-day rules (meal
	// spacing, repeated light exposure) get their context. Keep the read.
	SameDay []models.Event
	// SleepOnsetMean is the rolling mean sleep onset in minutes since
	// midnight, or nil when no history exists (dependent rules do not apply).
	SleepOnsetMean *float64
}

// Rule pairs a predicate with an insight factory so each rule can be tested
// in isolation and new rules can be added without touching control flow.
type Rule struct {
	Name    string
	Applies func(ev models.Event, payload models.EventPayload, rc RuleContext) bool
	Build   func(ev models.Event, rc RuleContext) models.Insight
}

// immediate builds an insight delivered at evaluation time.
func immediate(t models.InsightType, message string, rc RuleContext) models.Insight {
	return models.Insight{
		InsightType:  t,
		Message:      message,
		ScheduledFor: rc.Now,
	}
}

var fastStartRules = []Rule{
	{
		// Fires unconditionally; the 16h threshold lives only in the
		// scheduled delivery time. Whether the fast is still open at that
		// instant is the delivery side's concern, not re-verified here.
		Name: "long_fast",
		Applies: func(models.Event, models.EventPayload, RuleContext) bool {
			return true
		},
		Build: func(ev models.Event, rc RuleContext) models.Insight {
			hours := int(rc.FastReminder / time.Hour)
			return models.Insight{
				InsightType:  models.InsightLongFast,
				Message:      fmt.Sprintf("You've been fasting for %d hours. Consider breaking your fast with a balanced meal.", hours),
				ScheduledFor: ev.Timestamp.Add(rc.FastReminder),
			}
		},
	},
}

var mealRules = []Rule{
	{
		Name: "late_breakfast",
		Applies: func(ev models.Event, payload models.EventPayload, rc RuleContext) bool {
			p, ok := payload.(models.MealPayload)
			return ok && p.Type == models.MealBreakfast &&
				ev.Timestamp.In(rc.Loc).Hour() >= lateBreakfastHour
		},
		Build: func(ev models.Event, rc RuleContext) models.Insight {
			return immediate(models.InsightLateBreakfast,
				"Late breakfasts can shift your circadian rhythm. Try eating within an hour of waking.", rc)
		},
	},
	{
		Name: "late_dinner",
		Applies: func(ev models.Event, payload models.EventPayload, rc RuleContext) bool {
			p, ok := payload.(models.MealPayload)
			if !ok || p.Type != models.MealDinner || rc.SleepOnsetMean == nil {
				return false
			}
			// Dinners after the average onset yield a negative gap and count
			// as late too.
			gap := *rc.SleepOnsetMean - float64(minuteOfDay(ev.Timestamp, rc.Loc))
			return gap < dinnerSleepGapMinutes
		},
		Build: func(ev models.Event, rc RuleContext) models.Insight {
			return immediate(models.InsightLateDinner,
				"Eating close to bedtime can disrupt sleep quality. Aim to finish dinner at least 2-3 hours before sleep.", rc)
		},
	},
}

var sleepStartRules = []Rule{}

var lightExposureRules = []Rule{
	{
		Name: "late_morning_light",
		Applies: func(ev models.Event, payload models.EventPayload, rc RuleContext) bool {
			p, ok := payload.(models.LightExposurePayload)
			return ok && p.Phase == models.LightMorning &&
				ev.Timestamp.In(rc.Loc).Hour() >= lateMorningLightHour
		},
		Build: func(ev models.Event, rc RuleContext) models.Insight {
			return immediate(models.InsightLateMorningLight,
				"Morning light works best early. Try getting outside within an hour of waking tomorrow.", rc)
		},
	},
	{
		Name: "late_evening_light",
		Applies: func(ev models.Event, payload models.EventPayload, rc RuleContext) bool {
			p, ok := payload.(models.LightExposurePayload)
			return ok && p.Phase == models.LightEvening &&
				ev.Timestamp.In(rc.Loc).Hour() >= lateEveningLightHour
		},
		Build: func(ev models.Event, rc RuleContext) models.Insight {
			return immediate(models.InsightLateEveningLight,
				"Bright light this late can delay melatonin release. Consider dimming screens and lights.", rc)
		},
	},
}

// RulesFor returns the rule group for an event kind. The switch is exhaustive
// over the closed kind set; a kind with no rules yields an empty group.
func RulesFor(kind models.EventKind) []Rule {
	switch kind {
	case models.KindFastStart:
		return fastStartRules
	case models.KindMeal:
		return mealRules
	case models.KindSleepStart:
		return sleepStartRules
	case models.KindLightExposure:
		return lightExposureRules
	default:
		return nil
	}
}

// EvaluateRules runs every rule for the event's kind independently and
// returns the candidate insights. A single event can fire zero, one, or
// several rules; candidates are not yet stamped with a user or persisted.
func EvaluateRules(ev models.Event, payload models.EventPayload, rc RuleContext) []models.Insight {
	var candidates []models.Insight
	for _, rule := range RulesFor(ev.Kind) {
		if rule.Applies(ev, payload, rc) {
			candidates = append(candidates, rule.Build(ev, rc))
		}
	}
	return candidates
}
