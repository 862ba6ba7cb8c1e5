package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sparkbytes/server/internal/model"
	"github.com/sparkbytes/server/internal/repository"
)

// compile-time check that *DB implements repository.RSVPRepository
var _ repository.RSVPRepository = (*DB)(nil)

// CreateRSVP inserts an attendance record.
//
// The service rejects duplicates with RSVPExists before calling this, but
// the unique index on (event_id, user_email) backstops the invariant: if two
// requests from the same user race past the check, the second insert fails
// here instead of producing a second row.
func (db *DB) CreateRSVP(ctx context.Context, rsvp *model.RSVP) error {
	rsvp.ID = xid.New().String()
	rsvp.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO rsvps (id, event_id, user_email, created_at)
		 VALUES (?, ?, ?, ?)`,
		rsvp.ID,
		rsvp.EventID,
		rsvp.UserEmail,
		rsvp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting rsvp (event=%s user=%s): %w",
			rsvp.EventID, rsvp.UserEmail, err)
	}

	return nil
}

// RSVPExists reports whether the user already has an RSVP for the event.
func (db *DB) RSVPExists(ctx context.Context, eventID, userEmail string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rsvps WHERE event_id = ? AND user_email = ?`,
		eventID, userEmail,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rsvp (event=%s user=%s): %w",
			eventID, userEmail, err)
	}
	return count > 0, nil
}

// CountRSVPsByEvent returns the going-count for an event.
func (db *DB) CountRSVPsByEvent(ctx context.Context, eventID string) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rsvps WHERE event_id = ?`,
		eventID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting rsvps for event %s: %w", eventID, err)
	}
	return count, nil
}
