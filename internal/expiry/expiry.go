// Package expiry derives and checks event expiration times.
//
// Organizers describe how long the food lasts as a duration value plus a
// unit ("minutes" or "hours"). The duration is resolved into an absolute
// timestamp exactly once, at create/edit time; every later check is a plain
// timestamp comparison, so display and filtering never disagree about when
// an event ends.
package expiry

import (
	"time"

	"github.com/sparkbytes/server/internal/apperror"
	"github.com/sparkbytes/server/internal/model"
)

// Duration limits, in minutes. One day is the longest a food posting can
// stay live — surplus food does not survive longer than that.
const (
	MinDurationMinutes = 1
	MaxDurationMinutes = 1440
)

// Normalize converts a duration value + unit into minutes.
// Returns a validation error when the value is not positive, the unit is
// unknown, or the normalized duration falls outside [1, 1440] minutes.
func Normalize(value int, unit string) (int, error) {
	if value <= 0 {
		return 0, apperror.ValidationFailed("duration", "duration must be a positive integer")
	}

	minutes := value
	switch unit {
	case model.UnitMinutes:
	case model.UnitHours:
		minutes = value * 60
	default:
		return 0, apperror.ValidationFailed("durationUnit", `duration unit must be "minutes" or "hours"`)
	}

	if minutes < MinDurationMinutes || minutes > MaxDurationMinutes {
		return 0, apperror.ValidationFailed("duration", "duration must be between 1 minute and 24 hours")
	}

	return minutes, nil
}

// Compute returns the absolute expiry timestamp for an event created (or
// re-timed by an edit) at createdAt with the given duration input.
func Compute(createdAt time.Time, value int, unit string) (time.Time, error) {
	minutes, err := Normalize(value, unit)
	if err != nil {
		return time.Time{}, err
	}
	return createdAt.Add(time.Duration(minutes) * time.Minute), nil
}

// Expired reports whether now is strictly after expiresAt.
// An event ending exactly now is still live.
func Expired(expiresAt, now time.Time) bool {
	return now.After(expiresAt)
}

// Past classifies an event as past when it has expired OR its food is gone —
// the two conditions are OR-ed, so a "gone" event is past even with a future
// expiry timestamp.
func Past(status string, expiresAt, now time.Time) bool {
	return Expired(expiresAt, now) || status == model.StatusGone
}
