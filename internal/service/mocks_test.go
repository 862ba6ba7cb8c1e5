package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/sparkbytes/server/internal/apperror"
	"github.com/sparkbytes/server/internal/campus"
	"github.com/sparkbytes/server/internal/model"
)

// Hand-written in-memory mocks. The services only see the repository
// interfaces, so a map-backed fake slots in exactly where sqlite.DB does.
// Each mock stores copies, never the caller's pointers, so tests can't
// accidentally share state through the mock.

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) UpsertUser(_ context.Context, user *model.User) error {
	stored := *user
	m.users[user.Email] = &stored
	return nil
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	user, ok := m.users[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	result := *user
	return &result, nil
}

type mockEventRepo struct {
	events map[string]*model.Event
	nextID int
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{events: make(map[string]*model.Event)}
}

func (m *mockEventRepo) CreateEvent(_ context.Context, event *model.Event) error {
	m.nextID++
	event.ID = fmt.Sprintf("event-%d", m.nextID)
	stored := *event
	m.events[event.ID] = &stored
	return nil
}

func (m *mockEventRepo) GetEventByID(_ context.Context, id string) (*model.Event, error) {
	event, ok := m.events[id]
	if !ok {
		return nil, apperror.NotFound("event", id)
	}
	result := *event
	return &result, nil
}

func (m *mockEventRepo) ListEvents(_ context.Context) ([]model.Event, error) {
	result := make([]model.Event, 0, len(m.events))
	for _, e := range m.events {
		result = append(result, *e)
	}
	return result, nil
}

func (m *mockEventRepo) ListEventsByCreator(_ context.Context, email string) ([]model.Event, error) {
	result := make([]model.Event, 0)
	for _, e := range m.events {
		if e.CreatedBy == email {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockEventRepo) UpdateEvent(_ context.Context, event *model.Event) error {
	if _, ok := m.events[event.ID]; !ok {
		return apperror.NotFound("event", event.ID)
	}
	stored := *event
	m.events[event.ID] = &stored
	return nil
}

type mockNotificationRepo struct {
	notifications []model.Notification
	nextID        int
	failCreate    bool // simulate an insert failure
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) CreateNotification(_ context.Context, n *model.Notification) error {
	if m.failCreate {
		return fmt.Errorf("mock: notification insert failed")
	}
	m.nextID++
	n.ID = fmt.Sprintf("notification-%d", m.nextID)
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *mockNotificationRepo) ListNotifications(_ context.Context) ([]model.Notification, error) {
	result := make([]model.Notification, len(m.notifications))
	copy(result, m.notifications)
	return result, nil
}

type mockRSVPRepo struct {
	rsvps  []model.RSVP
	nextID int
}

func newMockRSVPRepo() *mockRSVPRepo {
	return &mockRSVPRepo{}
}

func (m *mockRSVPRepo) CreateRSVP(_ context.Context, rsvp *model.RSVP) error {
	for _, r := range m.rsvps {
		if r.EventID == rsvp.EventID && r.UserEmail == rsvp.UserEmail {
			return fmt.Errorf("mock: UNIQUE constraint failed: rsvps.event_id, rsvps.user_email")
		}
	}
	m.nextID++
	rsvp.ID = fmt.Sprintf("rsvp-%d", m.nextID)
	m.rsvps = append(m.rsvps, *rsvp)
	return nil
}

func (m *mockRSVPRepo) RSVPExists(_ context.Context, eventID, userEmail string) (bool, error) {
	for _, r := range m.rsvps {
		if r.EventID == eventID && r.UserEmail == userEmail {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRSVPRepo) CountRSVPsByEvent(_ context.Context, eventID string) (int, error) {
	count := 0
	for _, r := range m.rsvps {
		if r.EventID == eventID {
			count++
		}
	}
	return count, nil
}

// testLogger discards everything below error so test output stays readable.
func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// testFixtures bundles every mock so each test can reach into the ones it
// cares about.
type testFixtures struct {
	users         *mockUserRepo
	events        *mockEventRepo
	notifications *mockNotificationRepo
	rsvps         *mockRSVPRepo
}

func newTestEventService(t *testing.T) (*EventService, *testFixtures) {
	t.Helper()
	f := &testFixtures{
		users:         newMockUserRepo(),
		events:        newMockEventRepo(),
		notifications: newMockNotificationRepo(),
		rsvps:         newMockRSVPRepo(),
	}
	svc := NewEventService(f.events, f.notifications, f.users, campus.Default(), testLogger(t))
	return svc, f
}

func newTestRSVPService(t *testing.T) (*RSVPService, *testFixtures) {
	t.Helper()
	f := &testFixtures{
		events: newMockEventRepo(),
		rsvps:  newMockRSVPRepo(),
	}
	svc := NewRSVPService(f.rsvps, f.events, testLogger(t))
	return svc, f
}
