package handler

import (
	"log/slog"
	"net/http"

	"github.com/sparkbytes/server/internal/auth"
	"github.com/sparkbytes/server/internal/service"
)

// RSVPHandler manages the attendance endpoints on events.
type RSVPHandler struct {
	rsvps  *service.RSVPService
	logger *slog.Logger
}

// NewRSVPHandler creates an RSVPHandler.
func NewRSVPHandler(rsvps *service.RSVPService, logger *slog.Logger) *RSVPHandler {
	return &RSVPHandler{rsvps: rsvps, logger: logger}
}

// goingResponse is the body returned after an RSVP, and by the count
// endpoint.
type goingResponse struct {
	EventID    string `json:"eventId"`
	GoingCount int    `json:"goingCount"`
}

// HandleGoing records the signed-in user's RSVP and returns the new count.
//
// HTTP: POST /api/events/{id}/rsvp
// Auth: required
//
// A repeat RSVP by the same user returns 409.
func (h *RSVPHandler) HandleGoing(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.UserEmailFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	eventID := r.PathValue("id")
	if _, err := h.rsvps.Going(r.Context(), eventID, email); err != nil {
		writeError(w, err)
		return
	}

	count, err := h.rsvps.GoingCount(r.Context(), eventID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, goingResponse{EventID: eventID, GoingCount: count})
}

// HandleGoingCount returns how many people have RSVP'd to an event.
//
// HTTP: GET /api/events/{id}/going
func (h *RSVPHandler) HandleGoingCount(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")

	count, err := h.rsvps.GoingCount(r.Context(), eventID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, goingResponse{EventID: eventID, GoingCount: count})
}
