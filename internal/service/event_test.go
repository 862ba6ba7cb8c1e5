package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sparkbytes/server/internal/apperror"
	"github.com/sparkbytes/server/internal/filter"
	"github.com/sparkbytes/server/internal/model"
)

func validInput() EventInput {
	return EventInput{
		Title:              "Free Pizza at GDC",
		Description:        "Leftover pizza from the CS seminar, first come first served",
		Location:           "CDS Room 1101",
		Latitude:           42.3500,
		Longitude:          -71.1050,
		Foods:              []string{"Pizza", "Soda"},
		DietaryPreferences: []string{"Vegetarian"},
		Duration:           90,
		DurationUnit:       model.UnitMinutes,
	}
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestEventCreate_Success(t *testing.T) {
	svc, f := newTestEventService(t)

	before := time.Now()
	event, err := svc.Create(context.Background(), "alice@bu.edu", validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if event.ID == "" {
		t.Error("expected event to have an ID")
	}
	if event.CreatedBy != "alice@bu.edu" {
		t.Errorf("CreatedBy = %q, want %q", event.CreatedBy, "alice@bu.edu")
	}
	if event.Status != model.StatusPlenty {
		t.Errorf("Status = %q, want default %q", event.Status, model.StatusPlenty)
	}
	// (42.3500, -71.1050) falls inside the Charles River zone.
	if event.Campus != "Charles River Campus" {
		t.Errorf("Campus = %q, want %q", event.Campus, "Charles River Campus")
	}

	wantExpiry := before.Add(90 * time.Minute)
	if event.ExpiresAt.Before(wantExpiry) || event.ExpiresAt.After(wantExpiry.Add(time.Minute)) {
		t.Errorf("ExpiresAt = %v, want about %v", event.ExpiresAt, wantExpiry)
	}
	if event.DurationMinutes != 90 {
		t.Errorf("DurationMinutes = %d, want 90", event.DurationMinutes)
	}

	if len(f.notifications.notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(f.notifications.notifications))
	}
	n := f.notifications.notifications[0]
	if n.EventID != event.ID {
		t.Errorf("notification EventID = %q, want %q", n.EventID, event.ID)
	}
	if n.Title != event.Title {
		t.Errorf("notification Title = %q, want %q", n.Title, event.Title)
	}
}

func TestEventCreate_HoursUnit(t *testing.T) {
	svc, _ := newTestEventService(t)

	in := validInput()
	in.Duration = 2
	in.DurationUnit = model.UnitHours

	event, err := svc.Create(context.Background(), "alice@bu.edu", in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if event.DurationMinutes != 120 {
		t.Errorf("DurationMinutes = %d, want 120", event.DurationMinutes)
	}
}

func TestEventCreate_TrimsWhitespace(t *testing.T) {
	svc, _ := newTestEventService(t)

	in := validInput()
	in.Title = "  Free Bagels  "
	in.Foods = []string{" Bagels ", "", "  "}

	event, err := svc.Create(context.Background(), "alice@bu.edu", in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if event.Title != "Free Bagels" {
		t.Errorf("Title = %q, want trimmed %q", event.Title, "Free Bagels")
	}
	if len(event.Foods) != 1 || event.Foods[0] != "Bagels" {
		t.Errorf("Foods = %v, want [Bagels]", event.Foods)
	}
}

func TestEventCreate_ValidationErrors(t *testing.T) {
	svc, _ := newTestEventService(t)

	tests := []struct {
		name   string
		mutate func(*EventInput)
	}{
		{"empty title", func(in *EventInput) { in.Title = "" }},
		{"whitespace title", func(in *EventInput) { in.Title = "   " }},
		{"title too long", func(in *EventInput) { in.Title = strings.Repeat("a", MaxTitleLength+1) }},
		{"empty description", func(in *EventInput) { in.Description = "" }},
		{"empty location", func(in *EventInput) { in.Location = "" }},
		{"bad status", func(in *EventInput) { in.Status = "everything is fine" }},
		{"bad dietary preference", func(in *EventInput) { in.DietaryPreferences = []string{"Carnivore"} }},
		{"zero duration", func(in *EventInput) { in.Duration = 0 }},
		{"negative duration", func(in *EventInput) { in.Duration = -30 }},
		{"duration too long", func(in *EventInput) { in.Duration = 25; in.DurationUnit = model.UnitHours }},
		{"unknown unit", func(in *EventInput) { in.DurationUnit = "days" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), "alice@bu.edu", in)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestEventCreate_OutsideZonesIsOther(t *testing.T) {
	svc, _ := newTestEventService(t)

	in := validInput()
	in.Latitude = 40.7128
	in.Longitude = -74.0060

	event, err := svc.Create(context.Background(), "alice@bu.edu", in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if event.Campus != "Other" {
		t.Errorf("Campus = %q, want %q", event.Campus, "Other")
	}
}

// TestEventCreate_NotificationFailureDoesNotFailCreate pins the side-effect
// contract: the event survives a failed notification insert.
func TestEventCreate_NotificationFailureDoesNotFailCreate(t *testing.T) {
	svc, f := newTestEventService(t)
	f.notifications.failCreate = true

	event, err := svc.Create(context.Background(), "alice@bu.edu", validInput())
	if err != nil {
		t.Fatalf("Create() error = %v, want success despite notification failure", err)
	}

	if _, err := svc.GetByID(context.Background(), event.ID); err != nil {
		t.Errorf("event should exist after notification failure: %v", err)
	}
	if len(f.notifications.notifications) != 0 {
		t.Errorf("expected 0 notifications, got %d", len(f.notifications.notifications))
	}
}

// =========================================================================
// GET / LIST TESTS
// =========================================================================

func TestEventGetByID_NotFound(t *testing.T) {
	svc, _ := newTestEventService(t)

	_, err := svc.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestEventGetByID_EmptyID(t *testing.T) {
	svc, _ := newTestEventService(t)

	_, err := svc.GetByID(context.Background(), "  ")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestEventList_AppliesTimeFilter(t *testing.T) {
	svc, _ := newTestEventService(t)

	long := validInput()
	long.Title = "still running"
	long.Duration = 120
	if _, err := svc.Create(context.Background(), "alice@bu.edu", long); err != nil {
		t.Fatalf("setup: %v", err)
	}

	goneIn := validInput()
	goneIn.Title = "all gone"
	goneIn.Status = model.StatusGone
	if _, err := svc.Create(context.Background(), "alice@bu.edu", goneIn); err != nil {
		t.Fatalf("setup: %v", err)
	}

	current, err := svc.List(context.Background(), filter.Query{Time: filter.TimeCurrent})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(current) != 1 || current[0].Title != "still running" {
		t.Errorf("current = %v, want only %q", titles(current), "still running")
	}

	past, err := svc.List(context.Background(), filter.Query{Time: filter.TimePast})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(past) != 1 || past[0].Title != "all gone" {
		t.Errorf("past = %v, want only %q", titles(past), "all gone")
	}
}

func titles(events []model.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Title
	}
	return out
}

func TestEventOptions_CoversAllEvents(t *testing.T) {
	svc, _ := newTestEventService(t)

	a := validInput()
	a.Location = "CDS Room 1101"
	if _, err := svc.Create(context.Background(), "alice@bu.edu", a); err != nil {
		t.Fatalf("setup: %v", err)
	}

	b := validInput()
	b.Title = "gone already"
	b.Location = "GSU Backcourt"
	b.Status = model.StatusGone
	if _, err := svc.Create(context.Background(), "alice@bu.edu", b); err != nil {
		t.Fatalf("setup: %v", err)
	}

	opts, err := svc.Options(context.Background())
	if err != nil {
		t.Fatalf("Options() error = %v", err)
	}
	// Option lists come from every event, including ones no longer current.
	if len(opts.Locations) != 2 {
		t.Errorf("Locations = %v, want both locations", opts.Locations)
	}
}

func TestEventListMine_FiltersByCreator(t *testing.T) {
	svc, _ := newTestEventService(t)

	if _, err := svc.Create(context.Background(), "alice@bu.edu", validInput()); err != nil {
		t.Fatalf("setup: %v", err)
	}
	other := validInput()
	other.Title = "not alice's"
	if _, err := svc.Create(context.Background(), "bob@bu.edu", other); err != nil {
		t.Fatalf("setup: %v", err)
	}

	mine, err := svc.ListMine(context.Background(), "alice@bu.edu")
	if err != nil {
		t.Fatalf("ListMine() error = %v", err)
	}
	if len(mine) != 1 || mine[0].CreatedBy != "alice@bu.edu" {
		t.Errorf("ListMine() = %v, want only alice's event", titles(mine))
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func strPtr(s string) *string     { return &s }
func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

func TestEventUpdate_Success(t *testing.T) {
	svc, _ := newTestEventService(t)

	created, err := svc.Create(context.Background(), "alice@bu.edu", validInput())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	updated, err := svc.Update(context.Background(), "alice@bu.edu", created.ID, UpdateEventInput{
		Title:  strPtr("Updated Pizza"),
		Status: strPtr(model.StatusRunningOut),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Title != "Updated Pizza" {
		t.Errorf("Title = %q, want %q", updated.Title, "Updated Pizza")
	}
	if updated.Status != model.StatusRunningOut {
		t.Errorf("Status = %q, want %q", updated.Status, model.StatusRunningOut)
	}
	// Untouched fields survive.
	if updated.Location != created.Location {
		t.Errorf("Location = %q, want unchanged %q", updated.Location, created.Location)
	}
	if !updated.ExpiresAt.Equal(created.ExpiresAt) {
		t.Errorf("ExpiresAt changed without a new duration: %v -> %v", created.ExpiresAt, updated.ExpiresAt)
	}
}

func TestEventUpdate_NotFound(t *testing.T) {
	svc, _ := newTestEventService(t)

	_, err := svc.Update(context.Background(), "alice@bu.edu", "nonexistent", UpdateEventInput{})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestEventUpdate_NonCreatorForbidden(t *testing.T) {
	svc, _ := newTestEventService(t)

	created, err := svc.Create(context.Background(), "alice@bu.edu", validInput())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, err = svc.Update(context.Background(), "bob@bu.edu", created.ID, UpdateEventInput{
		Title: strPtr("hijacked"),
	})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
}

func TestEventUpdate_AdminCanEdit(t *testing.T) {
	svc, f := newTestEventService(t)

	f.users.users["admin@bu.edu"] = &model.User{
		Email: "admin@bu.edu",
		Role:  model.RoleAdmin,
	}

	created, err := svc.Create(context.Background(), "alice@bu.edu", validInput())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	updated, err := svc.Update(context.Background(), "admin@bu.edu", created.ID, UpdateEventInput{
		Status: strPtr(model.StatusGone),
	})
	if err != nil {
		t.Fatalf("admin Update() error = %v", err)
	}
	if updated.Status != model.StatusGone {
		t.Errorf("Status = %q, want %q", updated.Status, model.StatusGone)
	}
	// Ownership never transfers on edit.
	if updated.CreatedBy != "alice@bu.edu" {
		t.Errorf("CreatedBy = %q, want %q", updated.CreatedBy, "alice@bu.edu")
	}
}

func TestEventUpdate_CoordinatesReclassifyCampus(t *testing.T) {
	svc, _ := newTestEventService(t)

	created, err := svc.Create(context.Background(), "alice@bu.edu", validInput())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if created.Campus != "Charles River Campus" {
		t.Fatalf("setup: Campus = %q, want Charles River Campus", created.Campus)
	}

	updated, err := svc.Update(context.Background(), "alice@bu.edu", created.ID, UpdateEventInput{
		Latitude:  floatPtr(42.3350),
		Longitude: floatPtr(-71.0730),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Campus != "BU Medical Campus" {
		t.Errorf("Campus = %q, want %q", updated.Campus, "BU Medical Campus")
	}
}

func TestEventUpdate_NewDurationRetimesExpiry(t *testing.T) {
	svc, _ := newTestEventService(t)

	created, err := svc.Create(context.Background(), "alice@bu.edu", validInput())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	before := time.Now()
	updated, err := svc.Update(context.Background(), "alice@bu.edu", created.ID, UpdateEventInput{
		Duration:     intPtr(4),
		DurationUnit: strPtr(model.UnitHours),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	wantExpiry := before.Add(4 * time.Hour)
	if updated.ExpiresAt.Before(wantExpiry) || updated.ExpiresAt.After(wantExpiry.Add(time.Minute)) {
		t.Errorf("ExpiresAt = %v, want about %v", updated.ExpiresAt, wantExpiry)
	}
	if updated.DurationMinutes != 240 {
		t.Errorf("DurationMinutes = %d, want 240", updated.DurationMinutes)
	}
}

func TestEventUpdate_InvalidStatusRejected(t *testing.T) {
	svc, _ := newTestEventService(t)

	created, err := svc.Create(context.Background(), "alice@bu.edu", validInput())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, err = svc.Update(context.Background(), "alice@bu.edu", created.ID, UpdateEventInput{
		Status: strPtr("sold out"),
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}
