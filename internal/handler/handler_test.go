package handler_test

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/sparkbytes/server/internal/auth"
	"github.com/sparkbytes/server/internal/campus"
	"github.com/sparkbytes/server/internal/handler"
	"github.com/sparkbytes/server/internal/model"
	"github.com/sparkbytes/server/internal/repository/sqlite"
	"github.com/sparkbytes/server/internal/service"
)

// testEnv wires real services over an in-memory SQLite database, so handler
// tests cover the whole request path below HTTP.
type testEnv struct {
	db            *sqlite.DB
	auth          *handler.AuthHandler
	events        *handler.EventHandler
	rsvps         *handler.RSVPHandler
	notifications *handler.NotificationHandler
	authSvc       *service.AuthService
	eventSvc      *service.EventService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("setup: sqlite.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	tokens, err := auth.NewTokenService("test-secret-key-that-is-long-enough")
	if err != nil {
		t.Fatalf("setup: NewTokenService() error = %v", err)
	}

	google := auth.NewGoogleProvider("client-id", "client-secret", "http://localhost/auth/google/callback")

	authSvc := service.NewAuthService(db, tokens, logger)
	eventSvc := service.NewEventService(db, db, db, campus.Default(), logger)
	rsvpSvc := service.NewRSVPService(db, db, logger)
	notificationSvc := service.NewNotificationService(db, logger)

	return &testEnv{
		db:            db,
		auth:          handler.NewAuthHandler(google, authSvc, logger),
		events:        handler.NewEventHandler(eventSvc, rsvpSvc, logger),
		rsvps:         handler.NewRSVPHandler(rsvpSvc, logger),
		notifications: handler.NewNotificationHandler(notificationSvc, logger),
		authSvc:       authSvc,
		eventSvc:      eventSvc,
	}
}

// seedUser registers a user so foreign keys on events and RSVPs hold.
func (e *testEnv) seedUser(t *testing.T, email, name string) {
	t.Helper()
	user := &model.User{Email: email, Name: name}
	if err := e.db.UpsertUser(context.Background(), user); err != nil {
		t.Fatalf("setup: seeding user %s: %v", email, err)
	}
}

// seedEvent creates an event through the service so campus and expiry are
// derived exactly as in production.
func (e *testEnv) seedEvent(t *testing.T, creator string, in service.EventInput) *model.Event {
	t.Helper()
	event, err := e.eventSvc.Create(context.Background(), creator, in)
	if err != nil {
		t.Fatalf("setup: seeding event: %v", err)
	}
	return event
}

func baseEventInput() service.EventInput {
	return service.EventInput{
		Title:              "Free Pizza at CDS",
		Description:        "Leftovers from the data science mixer",
		Location:           "CDS Room 1101",
		Latitude:           42.3500,
		Longitude:          -71.1050,
		Foods:              []string{"Pizza"},
		DietaryPreferences: []string{"Vegetarian"},
		Duration:           90,
		DurationUnit:       model.UnitMinutes,
	}
}

// asUser attaches an authenticated identity to the request, standing in for
// the RequireAuth middleware.
func asUser(r *http.Request, email string) *http.Request {
	return r.WithContext(auth.ContextWithUserEmail(r.Context(), email))
}
