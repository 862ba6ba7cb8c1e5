package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sparkbytes/server/internal/apperror"
	"github.com/sparkbytes/server/internal/model"
	"github.com/sparkbytes/server/internal/repository"
)

// RSVPService handles the "I'm going" interaction on events.
type RSVPService struct {
	rsvps  repository.RSVPRepository
	events repository.EventRepository
	logger *slog.Logger
}

// NewRSVPService creates an RSVPService.
func NewRSVPService(rsvps repository.RSVPRepository, events repository.EventRepository, logger *slog.Logger) *RSVPService {
	return &RSVPService{
		rsvps:  rsvps,
		events: events,
		logger: logger,
	}
}

// Going records that userEmail plans to attend the event. Each user counts
// once per event: a repeat RSVP is rejected with a conflict rather than
// silently ignored so the client can tell the user why nothing changed.
func (s *RSVPService) Going(ctx context.Context, eventID, userEmail string) (*model.RSVP, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, apperror.ValidationFailed("eventID", "event ID is required")
	}
	if userEmail == "" {
		return nil, fmt.Errorf("service/rsvp: user email must not be empty")
	}

	// Confirm the event exists so a bad ID surfaces as 404, not a dangling
	// RSVP row.
	if _, err := s.events.GetEventByID(ctx, eventID); err != nil {
		return nil, err
	}

	exists, err := s.rsvps.RSVPExists(ctx, eventID, userEmail)
	if err != nil {
		s.logger.Error("failed to check existing RSVP",
			slog.String("eventID", eventID),
			slog.String("email", userEmail),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("checking RSVP: %w", err)
	}
	if exists {
		return nil, apperror.Conflict("you have already RSVP'd to this event")
	}

	rsvp := &model.RSVP{
		EventID:   eventID,
		UserEmail: userEmail,
	}
	if err := s.rsvps.CreateRSVP(ctx, rsvp); err != nil {
		// The unique index catches the check-then-act race; report it the
		// same way as the pre-check.
		s.logger.Warn("failed to create RSVP",
			slog.String("eventID", eventID),
			slog.String("email", userEmail),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Conflict("you have already RSVP'd to this event")
	}

	s.logger.Info("rsvp recorded",
		slog.String("eventID", eventID),
		slog.String("email", userEmail),
	)

	return rsvp, nil
}

// GoingCount returns how many distinct users have RSVP'd to the event.
func (s *RSVPService) GoingCount(ctx context.Context, eventID string) (int, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return 0, apperror.ValidationFailed("eventID", "event ID is required")
	}
	count, err := s.rsvps.CountRSVPsByEvent(ctx, eventID)
	if err != nil {
		s.logger.Error("failed to count RSVPs",
			slog.String("eventID", eventID),
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("counting RSVPs: %w", err)
	}
	return count, nil
}
