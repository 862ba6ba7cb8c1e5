package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sparkbytes/server/internal/apperror"
	"github.com/sparkbytes/server/internal/model"
	"github.com/sparkbytes/server/internal/repository"
)

// compile-time check that *DB implements repository.EventRepository
var _ repository.EventRepository = (*DB)(nil)

const eventColumns = `id, title, description, location, latitude, longitude,
	campus, status, created_by, foods, dietary_preferences,
	duration_minutes, expires_at, created_at, updated_at`

// CreateEvent inserts a new event. The repository owns ID generation and
// timestamps; everything else (expiry, campus, validation) was decided by
// the service before this call.
func (db *DB) CreateEvent(ctx context.Context, event *model.Event) error {
	foods, err := encodeStrings(event.Foods)
	if err != nil {
		return fmt.Errorf("sqlite: inserting event: %w", err)
	}
	prefs, err := encodeStrings(event.DietaryPreferences)
	if err != nil {
		return fmt.Errorf("sqlite: inserting event: %w", err)
	}

	now := time.Now()
	event.ID = xid.New().String()
	event.CreatedAt = now
	event.UpdatedAt = now

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Title,
		event.Description,
		event.Location,
		event.Latitude,
		event.Longitude,
		event.Campus,
		event.Status,
		event.CreatedBy,
		foods,
		prefs,
		event.DurationMinutes,
		event.ExpiresAt,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting event %q: %w", event.Title, err)
	}

	return nil
}

// GetEventByID retrieves an event by its ID.
// Returns apperror.ErrNotFound if no event exists with that ID.
func (db *DB) GetEventByID(ctx context.Context, id string) (*model.Event, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)

	event, err := scanEvent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("event", id)
		}
		return nil, fmt.Errorf("sqlite: getting event %s: %w", id, err)
	}

	return event, nil
}

// ListEvents returns every event, newest expiry first. Filtering happens in
// memory over this snapshot, so the query itself stays unconditional.
func (db *DB) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY expires_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListEventsByCreator returns the events posted by one user, newest first.
func (db *DB) ListEventsByCreator(ctx context.Context, email string) ([]model.Event, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE created_by = ? ORDER BY created_at DESC`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing events for %s: %w", email, err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// UpdateEvent rewrites an event row. ID, creator, and created_at never change.
// Returns apperror.ErrNotFound if the event doesn't exist.
func (db *DB) UpdateEvent(ctx context.Context, event *model.Event) error {
	foods, err := encodeStrings(event.Foods)
	if err != nil {
		return fmt.Errorf("sqlite: updating event %s: %w", event.ID, err)
	}
	prefs, err := encodeStrings(event.DietaryPreferences)
	if err != nil {
		return fmt.Errorf("sqlite: updating event %s: %w", event.ID, err)
	}

	event.UpdatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE events SET
			title = ?, description = ?, location = ?,
			latitude = ?, longitude = ?, campus = ?, status = ?,
			foods = ?, dietary_preferences = ?,
			duration_minutes = ?, expires_at = ?, updated_at = ?
		 WHERE id = ?`,
		event.Title,
		event.Description,
		event.Location,
		event.Latitude,
		event.Longitude,
		event.Campus,
		event.Status,
		foods,
		prefs,
		event.DurationMinutes,
		event.ExpiresAt,
		event.UpdatedAt,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating event %s: %w", event.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating event %s: %w", event.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("event", event.ID)
	}

	return nil
}

// scanner covers both *sql.Row and *sql.Rows so scanEvent works for single
// and multi-row queries.
type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (*model.Event, error) {
	var (
		e     model.Event
		foods string
		prefs string
	)

	err := s.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.Location,
		&e.Latitude,
		&e.Longitude,
		&e.Campus,
		&e.Status,
		&e.CreatedBy,
		&foods,
		&prefs,
		&e.DurationMinutes,
		&e.ExpiresAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if e.Foods, err = decodeStrings(foods); err != nil {
		return nil, err
	}
	if e.DietaryPreferences, err = decodeStrings(prefs); err != nil {
		return nil, err
	}

	return &e, nil
}

func collectEvents(rows *sql.Rows) ([]model.Event, error) {
	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning event row: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating event rows: %w", err)
	}
	return events, nil
}
