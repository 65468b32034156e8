package service

import (
	"time"

	"github.com/circadia-app/circadia/backend/internal/models"
)

// MeanMinuteOfDay reduces each event timestamp to minutes since midnight in
// loc and returns the arithmetic mean. An empty input returns ErrNoHistory;
// callers must skip the dependent rule rather than treat the mean as zero.
func MeanMinuteOfDay(events []models.Event, loc *time.Location) (float64, error) {
	if len(events) == 0 {
		return 0, ErrNoHistory
	}

	var total float64
	for _, ev := range events {
		total += float64(minuteOfDay(ev.Timestamp, loc))
	}

	return total / float64(len(events)), nil
}

// minuteOfDay converts an instant to minutes since midnight in loc.
func minuteOfDay(t time.Time, loc *time.Location) int {
	local := t.In(loc)
	return local.Hour()*60 + local.Minute()
}
