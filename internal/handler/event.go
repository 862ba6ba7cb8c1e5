package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sparkbytes/server/internal/auth"
	"github.com/sparkbytes/server/internal/filter"
	"github.com/sparkbytes/server/internal/model"
	"github.com/sparkbytes/server/internal/service"
)

// EventHandler manages the food-event endpoints: browsing with filters,
// creating, and editing.
type EventHandler struct {
	events *service.EventService
	rsvps  *service.RSVPService
	logger *slog.Logger
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(events *service.EventService, rsvps *service.RSVPService, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		events: events,
		rsvps:  rsvps,
		logger: logger,
	}
}

// createEventRequest is the body of POST /api/events.
type createEventRequest struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Location           string   `json:"location"`
	Latitude           float64  `json:"latitude"`
	Longitude          float64  `json:"longitude"`
	Status             string   `json:"status"`
	Foods              []string `json:"foods"`
	DietaryPreferences []string `json:"dietaryPreferences"`
	Duration           int      `json:"duration"`
	DurationUnit       string   `json:"durationUnit"`
}

// updateEventRequest is the body of PUT /api/events/{id}. Absent fields stay
// untouched, which is why everything scalar is a pointer.
type updateEventRequest struct {
	Title              *string  `json:"title"`
	Description        *string  `json:"description"`
	Location           *string  `json:"location"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	Status             *string  `json:"status"`
	Foods              []string `json:"foods"`
	DietaryPreferences []string `json:"dietaryPreferences"`
	Duration           *int     `json:"duration"`
	DurationUnit       *string  `json:"durationUnit"`
}

// HandleList returns events matching the query parameters.
//
// HTTP: GET /api/events
// Query:
//
//	filter   = current (default) | past
//	location = exact location string
//	diet     = exact dietary tag
//	campus   = exact campus name
//	sort     = nearest (requires lat and lng)
//	view     = map (only events with real coordinates)
func (h *EventHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	events, svcErr := h.events.List(r.Context(), q)
	if svcErr != nil {
		writeError(w, svcErr)
		return
	}

	writeJSON(w, http.StatusOK, events)
}

// parseListQuery turns the URL query into a filter.Query.
func parseListQuery(r *http.Request) (filter.Query, error) {
	query := r.URL.Query()

	q := filter.Query{
		Time:     filter.TimeCurrent,
		Location: query.Get("location"),
		Diet:     query.Get("diet"),
		Campus:   query.Get("campus"),
	}

	switch query.Get("filter") {
	case "", "current":
		q.Time = filter.TimeCurrent
	case "past":
		q.Time = filter.TimePast
	default:
		return filter.Query{}, &badQueryError{`filter must be "current" or "past"`}
	}

	if query.Get("view") == "map" {
		q.MapOnly = true
	}

	if query.Get("sort") == "nearest" {
		lat, latErr := strconv.ParseFloat(query.Get("lat"), 64)
		lng, lngErr := strconv.ParseFloat(query.Get("lng"), 64)
		if latErr != nil || lngErr != nil {
			return filter.Query{}, &badQueryError{"sort=nearest requires numeric lat and lng"}
		}
		q.Nearest = &filter.Origin{Lat: lat, Lng: lng}
	}

	return q, nil
}

type badQueryError struct{ msg string }

func (e *badQueryError) Error() string { return e.msg }

// HandleOptions returns the distinct filter values across all events.
//
// HTTP: GET /api/events/options
//
// The lists come from the whole corpus, not the current filter result, so
// dropdown choices don't shrink as filters are applied.
func (h *EventHandler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.events.Options(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// HandleListMine returns the signed-in user's own events, newest first.
//
// HTTP: GET /api/events/mine
// Auth: required
func (h *EventHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.UserEmailFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	events, err := h.events.ListMine(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// eventDetail is the single-event response: the event plus its RSVP count.
type eventDetail struct {
	Event      *model.Event `json:"event"`
	GoingCount int          `json:"goingCount"`
}

// HandleGet returns one event with its attendance count.
//
// HTTP: GET /api/events/{id}
func (h *EventHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	event, err := h.events.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	count, err := h.rsvps.GoingCount(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, eventDetail{Event: event, GoingCount: count})
}

// HandleCreate posts a new event.
//
// HTTP: POST /api/events
// Auth: required
func (h *EventHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.UserEmailFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid event JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	event, err := h.events.Create(r.Context(), email, service.EventInput{
		Title:              req.Title,
		Description:        req.Description,
		Location:           req.Location,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		Status:             req.Status,
		Foods:              req.Foods,
		DietaryPreferences: req.DietaryPreferences,
		Duration:           req.Duration,
		DurationUnit:       req.DurationUnit,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// HandleUpdate edits an event.
//
// HTTP: PUT /api/events/{id}
// Auth: required (creator or admin; the service enforces it)
func (h *EventHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.UserEmailFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req updateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid event JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	event, err := h.events.Update(r.Context(), email, r.PathValue("id"), service.UpdateEventInput{
		Title:              req.Title,
		Description:        req.Description,
		Location:           req.Location,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		Status:             req.Status,
		Foods:              req.Foods,
		DietaryPreferences: req.DietaryPreferences,
		Duration:           req.Duration,
		DurationUnit:       req.DurationUnit,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}
