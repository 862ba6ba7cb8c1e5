package model

import "time"

// RSVP records a user's intent to attend an event and claim food.
// At most one exists per (user, event) pair; a second "going" click is
// rejected before insert. RSVPs are never removed.
type RSVP struct {
	ID        string    `json:"id"        db:"id"`
	EventID   string    `json:"eventId"   db:"event_id"`
	UserEmail string    `json:"userEmail" db:"user_email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
