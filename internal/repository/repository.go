// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage provides the concrete
// implementation; tests substitute in-memory mocks.
//
// One sqlite.DB value implements all four interfaces, so method names are
// disambiguated per entity (CreateEvent vs CreateRSVP, etc.).
package repository

import (
	"context"

	"github.com/sparkbytes/server/internal/model"
)

// UserRepository persists user accounts keyed by email.
type UserRepository interface {
	// UpsertUser inserts or updates the user record keyed by email.
	// The repository fills in CreatedAt/UpdatedAt.
	UpsertUser(ctx context.Context, user *model.User) error

	// GetUserByEmail returns the user with the given email, or
	// apperror.ErrNotFound if no such user exists.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// EventRepository persists food-event postings. There is no delete — events
// are never removed, they just age into the past bucket.
type EventRepository interface {
	CreateEvent(ctx context.Context, event *model.Event) error
	GetEventByID(ctx context.Context, id string) (*model.Event, error)

	// ListEvents returns all events, newest expiry first. Filtering happens
	// in memory over this snapshot (see the filter package).
	ListEvents(ctx context.Context) ([]model.Event, error)

	// ListEventsByCreator returns the events posted by the given user,
	// newest first.
	ListEventsByCreator(ctx context.Context, email string) ([]model.Event, error)

	UpdateEvent(ctx context.Context, event *model.Event) error
}

// NotificationRepository persists the append-only notifications feed.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *model.Notification) error

	// ListNotifications returns all notifications, newest first.
	ListNotifications(ctx context.Context) ([]model.Notification, error)
}

// RSVPRepository persists attendance records.
type RSVPRepository interface {
	CreateRSVP(ctx context.Context, rsvp *model.RSVP) error

	// RSVPExists reports whether the user already has an RSVP for the
	// event. Services call this before CreateRSVP to reject duplicates.
	RSVPExists(ctx context.Context, eventID, userEmail string) (bool, error)

	// CountRSVPsByEvent returns the number of RSVPs referencing the event.
	CountRSVPsByEvent(ctx context.Context, eventID string) (int, error)
}
