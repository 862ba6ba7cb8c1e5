package model

import "time"

// Food status values. The status is set by the organizer and downgraded as
// food runs out; "gone" also flips the event into the past bucket regardless
// of its expiry timestamp.
const (
	StatusPlenty     = "plenty"
	StatusRunningOut = "running out"
	StatusGone       = "gone"
)

// ValidStatus reports whether s is one of the three food status values.
func ValidStatus(s string) bool {
	return s == StatusPlenty || s == StatusRunningOut || s == StatusGone
}

// Duration units accepted on event creation and edit forms.
const (
	UnitMinutes = "minutes"
	UnitHours   = "hours"
)

// Event represents a surplus-food posting.
//
// Latitude/Longitude default to zero when the organizer typed the location by
// hand instead of picking a place suggestion. Zero coordinates keep the event
// out of map views but it still appears in list views.
//
// Campus is derived from the coordinates at create/edit time (see the campus
// package) and stored so it can be filtered on without re-classifying.
//
// ExpiresAt is absolute — the duration input is resolved against the creation
// time once, so later reads only compare timestamps. Events are never
// deleted; expired ones simply classify as "past".
type Event struct {
	ID                 string    `json:"id"                 db:"id"`
	Title              string    `json:"title"              db:"title"`
	Description        string    `json:"description"        db:"description"`
	Location           string    `json:"location"           db:"location"`
	Latitude           float64   `json:"latitude"           db:"latitude"`
	Longitude          float64   `json:"longitude"          db:"longitude"`
	Campus             string    `json:"campus"             db:"campus"`
	Status             string    `json:"status"             db:"status"`
	CreatedBy          string    `json:"createdBy"          db:"created_by"`
	Foods              []string  `json:"foods"              db:"foods"`
	DietaryPreferences []string  `json:"dietaryPreferences" db:"dietary_preferences"`
	DurationMinutes    int       `json:"durationMinutes"    db:"duration_minutes"`
	ExpiresAt          time.Time `json:"expiresAt"          db:"expires_at"`
	CreatedAt          time.Time `json:"createdAt"          db:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt"          db:"updated_at"`
}

// HasCoordinates reports whether the event carries a real geographic
// position. (0,0) is the zero default for manual-entry locations, not a
// place anyone posts food from.
func (e *Event) HasCoordinates() bool {
	return e.Latitude != 0 || e.Longitude != 0
}
