package models

import "fmt"

// EventKind is the closed set of behavioral event types the engine understands.
// Dispatching on this type instead of free-form strings makes "unknown event
// type" a checked case rather than a silently skipped string comparison.
type EventKind string

const (
	KindFastStart     EventKind = "fast_start"
	KindMeal          EventKind = "meal"
	KindSleepStart    EventKind = "sleep_start"
	KindLightExposure EventKind = "light_exposure"
)

// ParseEventKind validates a wire-level event_type string.
func ParseEventKind(s string) (EventKind, error) {
	switch k := EventKind(s); k {
	case KindFastStart, KindMeal, KindSleepStart, KindLightExposure:
		return k, nil
	default:
		return "", fmt.Errorf("unknown event type %q", s)
	}
}

// MealType classifies a meal event.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// LightPhase classifies a light exposure event.
type LightPhase string

const (
	LightMorning LightPhase = "morning"
	LightEvening LightPhase = "evening"
)

// InsightType is the closed set of insights the rule evaluator can produce.
type InsightType string

const (
	InsightLongFast         InsightType = "long_fast"
	InsightLateBreakfast    InsightType = "late_breakfast"
	InsightLateDinner       InsightType = "late_dinner"
	InsightLateMorningLight InsightType = "late_morning_light"
	InsightLateEveningLight InsightType = "late_evening_light"
)

// EventPayload is the typed counterpart of an event's open metadata map.
// Each kind carries only the fields that are meaningful for it.
type EventPayload interface {
	isEventPayload()
}

// FastStartPayload marks the start of a fasting window. No metadata.
type FastStartPayload struct{}

// MealPayload carries the meal classification. Type is empty when the
// metadata did not name a recognized meal_type.
type MealPayload struct {
	Type MealType
}

// SleepStartPayload marks sleep onset. No metadata.
type SleepStartPayload struct{}

// LightExposurePayload carries the exposure phase. Phase is empty when the
// metadata did not name a recognized phase.
type LightExposurePayload struct {
	Phase LightPhase
}

func (FastStartPayload) isEventPayload()     {}
func (MealPayload) isEventPayload()          {}
func (SleepStartPayload) isEventPayload()    {}
func (LightExposurePayload) isEventPayload() {}

// DecodePayload maps an event's kind and metadata to its typed payload.
// Unknown or missing metadata values do not fail the decode; they produce a
// payload whose zero fields make the affected rules not applicable.
func DecodePayload(kind EventKind, metadata map[string]string) (EventPayload, error) {
	switch kind {
	case KindFastStart:
		return FastStartPayload{}, nil
	case KindSleepStart:
		return SleepStartPayload{}, nil
	case KindMeal:
		p := MealPayload{}
		switch mt := MealType(metadata["meal_type"]); mt {
		case MealBreakfast, MealLunch, MealDinner, MealSnack:
			p.Type = mt
		}
		return p, nil
	case KindLightExposure:
		p := LightExposurePayload{}
		switch ph := LightPhase(metadata["phase"]); ph {
		case LightMorning, LightEvening:
			p.Phase = ph
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown event kind %q", kind)
	}
}
