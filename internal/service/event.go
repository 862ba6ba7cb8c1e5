package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sparkbytes/server/internal/apperror"
	"github.com/sparkbytes/server/internal/campus"
	"github.com/sparkbytes/server/internal/expiry"
	"github.com/sparkbytes/server/internal/filter"
	"github.com/sparkbytes/server/internal/model"
	"github.com/sparkbytes/server/internal/repository"
)

// Validation constants.
const (
	MaxTitleLength       = 120
	MaxDescriptionLength = 2000
	MaxFoodItems         = 50
)

// EventService handles business logic for food-event postings.
type EventService struct {
	events        repository.EventRepository
	notifications repository.NotificationRepository
	users         repository.UserRepository
	zones         *campus.Classifier
	logger        *slog.Logger
}

// NewEventService creates an EventService.
func NewEventService(
	events repository.EventRepository,
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	zones *campus.Classifier,
	logger *slog.Logger,
) *EventService {
	return &EventService{
		events:        events,
		notifications: notifications,
		users:         users,
		zones:         zones,
		logger:        logger,
	}
}

// EventInput is the organizer-supplied portion of a new event. The service
// derives the rest (campus, expiry, timestamps, creator).
type EventInput struct {
	Title              string
	Description        string
	Location           string
	Latitude           float64
	Longitude          float64
	Status             string
	Foods              []string
	DietaryPreferences []string
	Duration           int
	DurationUnit       string
}

// Create validates and saves a new event posted by creator.
//
// Derivations happen here, once: the duration input becomes an absolute
// expiry timestamp and the coordinates become a campus name. A notification
// announcing the event is inserted afterward; if that insert fails, the
// event stands and the failure is only logged — re-running the whole
// creation would duplicate the posting, which is worse than a missing feed
// entry.
func (s *EventService) Create(ctx context.Context, creator string, in EventInput) (*model.Event, error) {
	if creator == "" {
		return nil, fmt.Errorf("service/event: creator must not be empty")
	}

	event, err := s.buildEvent(in)
	if err != nil {
		return nil, err
	}
	event.CreatedBy = creator

	now := time.Now()
	event.ExpiresAt, err = expiry.Compute(now, in.Duration, in.DurationUnit)
	if err != nil {
		return nil, err
	}
	event.DurationMinutes, _ = expiry.Normalize(in.Duration, in.DurationUnit)

	if err := s.events.CreateEvent(ctx, event); err != nil {
		s.logger.Error("failed to create event",
			slog.String("title", event.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating event: %w", err)
	}

	notification := &model.Notification{
		Title:       event.Title,
		Description: event.Description,
		EventID:     event.ID,
	}
	if err := s.notifications.CreateNotification(ctx, notification); err != nil {
		// Accepted inconsistency: the event row stands without its feed
		// entry. Failing the request here would invite a duplicate event
		// on the user's retry.
		s.logger.Error("failed to create notification for event",
			slog.String("eventID", event.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("event created",
		slog.String("id", event.ID),
		slog.String("title", event.Title),
		slog.String("campus", event.Campus),
		slog.Time("expiresAt", event.ExpiresAt),
	)

	return event, nil
}

// buildEvent validates the organizer input and assembles an event with the
// derived campus.
func (s *EventService) buildEvent(in EventInput) (*model.Event, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	location := strings.TrimSpace(in.Location)

	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if description == "" {
		return nil, apperror.ValidationFailed("description", "description is required")
	}
	if len(description) > MaxDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}
	if location == "" {
		return nil, apperror.ValidationFailed("location", "location is required")
	}

	status := in.Status
	if status == "" {
		status = model.StatusPlenty
	}
	if !model.ValidStatus(status) {
		return nil, apperror.ValidationFailed("status",
			`status must be "plenty", "running out", or "gone"`)
	}

	if len(in.Foods) > MaxFoodItems {
		return nil, apperror.ValidationFailed("foods",
			fmt.Sprintf("at most %d food items", MaxFoodItems))
	}
	foods := make([]string, 0, len(in.Foods))
	for _, f := range in.Foods {
		if f = strings.TrimSpace(f); f != "" {
			foods = append(foods, f)
		}
	}

	for _, p := range in.DietaryPreferences {
		if !model.ValidDietaryOption(p) {
			return nil, apperror.ValidationFailed("dietaryPreferences",
				fmt.Sprintf("%q is not a recognized dietary preference", p))
		}
	}

	return &model.Event{
		Title:              title,
		Description:        description,
		Location:           location,
		Latitude:           in.Latitude,
		Longitude:          in.Longitude,
		Campus:             s.zones.Classify(in.Latitude, in.Longitude),
		Status:             status,
		Foods:              foods,
		DietaryPreferences: in.DietaryPreferences,
	}, nil
}

// GetByID retrieves a single event.
func (s *EventService) GetByID(ctx context.Context, id string) (*model.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "event ID is required")
	}
	return s.events.GetEventByID(ctx, id)
}

// List fetches the full event corpus and applies the filter/sort query to
// an in-memory snapshot. The snapshot model keeps filtering idempotent and
// free of shared mutable state.
func (s *EventService) List(ctx context.Context, q filter.Query) ([]model.Event, error) {
	events, err := s.events.ListEvents(ctx)
	if err != nil {
		s.logger.Error("failed to list events", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return filter.Apply(events, q, time.Now()), nil
}

// Options returns the distinct filter choices over the unfiltered corpus.
func (s *EventService) Options(ctx context.Context) (filter.Options, error) {
	events, err := s.events.ListEvents(ctx)
	if err != nil {
		s.logger.Error("failed to list events for options", slog.String("error", err.Error()))
		return filter.Options{}, fmt.Errorf("listing events: %w", err)
	}
	return filter.CollectOptions(events), nil
}

// ListMine returns the events the given user created, newest first.
func (s *EventService) ListMine(ctx context.Context, email string) ([]model.Event, error) {
	if email == "" {
		return nil, fmt.Errorf("service/event: email must not be empty")
	}
	events, err := s.events.ListEventsByCreator(ctx, email)
	if err != nil {
		s.logger.Error("failed to list user events",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing events for %s: %w", email, err)
	}
	return events, nil
}

// UpdateEventInput carries an edit. Nil pointers mean "leave unchanged";
// slices replace wholesale when non-nil (the edit form always submits the
// full list).
type UpdateEventInput struct {
	Title              *string
	Description        *string
	Location           *string
	Latitude           *float64
	Longitude          *float64
	Status             *string
	Foods              []string
	DietaryPreferences []string
	Duration           *int
	DurationUnit       *string
}

// Update edits an existing event.
//
// Only the creator (or an admin) may edit. Campus is re-derived when the
// coordinates change, and supplying a new duration re-times the expiry from
// the moment of the edit; otherwise the stored expiry stands.
func (s *EventService) Update(ctx context.Context, editor, id string, in UpdateEventInput) (*model.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "event ID is required")
	}

	event, err := s.events.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeEdit(ctx, editor, event); err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "title is required")
		}
		if len(title) > MaxTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
		}
		event.Title = title
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if description == "" {
			return nil, apperror.ValidationFailed("description", "description is required")
		}
		event.Description = description
	}
	if in.Location != nil {
		location := strings.TrimSpace(*in.Location)
		if location == "" {
			return nil, apperror.ValidationFailed("location", "location is required")
		}
		event.Location = location
	}
	if in.Status != nil {
		if !model.ValidStatus(*in.Status) {
			return nil, apperror.ValidationFailed("status",
				`status must be "plenty", "running out", or "gone"`)
		}
		event.Status = *in.Status
	}
	if in.Foods != nil {
		event.Foods = in.Foods
	}
	if in.DietaryPreferences != nil {
		for _, p := range in.DietaryPreferences {
			if !model.ValidDietaryOption(p) {
				return nil, apperror.ValidationFailed("dietaryPreferences",
					fmt.Sprintf("%q is not a recognized dietary preference", p))
			}
		}
		event.DietaryPreferences = in.DietaryPreferences
	}

	coordsChanged := false
	if in.Latitude != nil {
		event.Latitude = *in.Latitude
		coordsChanged = true
	}
	if in.Longitude != nil {
		event.Longitude = *in.Longitude
		coordsChanged = true
	}
	if coordsChanged {
		event.Campus = s.zones.Classify(event.Latitude, event.Longitude)
	}

	if in.Duration != nil {
		unit := model.UnitMinutes
		if in.DurationUnit != nil {
			unit = *in.DurationUnit
		}
		expiresAt, err := expiry.Compute(time.Now(), *in.Duration, unit)
		if err != nil {
			return nil, err
		}
		event.ExpiresAt = expiresAt
		event.DurationMinutes, _ = expiry.Normalize(*in.Duration, unit)
	}

	if err := s.events.UpdateEvent(ctx, event); err != nil {
		s.logger.Error("failed to update event",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating event: %w", err)
	}

	s.logger.Info("event updated",
		slog.String("id", event.ID),
		slog.String("editor", editor),
	)

	return event, nil
}

// authorizeEdit enforces the edit rule: the creator always may; anyone else
// needs the admin role.
func (s *EventService) authorizeEdit(ctx context.Context, editor string, event *model.Event) error {
	if editor == event.CreatedBy {
		return nil
	}

	user, err := s.users.GetUserByEmail(ctx, editor)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.Forbidden("only the event creator can edit this event")
		}
		return fmt.Errorf("service/event: looking up editor %s: %w", editor, err)
	}
	if !user.IsAdmin() {
		return apperror.Forbidden("only the event creator can edit this event")
	}
	return nil
}
