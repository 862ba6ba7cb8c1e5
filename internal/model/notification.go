package model

import "time"

// Notification announces a newly posted event on the notifications feed.
// One is inserted as a side effect of event creation and never updated or
// deleted afterward — the feed is append-only.
type Notification struct {
	ID          string    `json:"id"          db:"id"`
	Title       string    `json:"title"       db:"title"`
	Description string    `json:"description" db:"description"`
	EventID     string    `json:"eventId"     db:"event_id"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
}
