package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sparkbytes/server/internal/model"
	"github.com/sparkbytes/server/internal/repository"
)

// compile-time check that *DB implements repository.NotificationRepository
var _ repository.NotificationRepository = (*DB)(nil)

// CreateNotification inserts a notification row. Notifications are written once, as a
// side effect of event creation, and never updated.
func (db *DB) CreateNotification(ctx context.Context, n *model.Notification) error {
	n.ID = xid.New().String()
	n.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO notifications (id, title, description, event_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		n.ID,
		n.Title,
		n.Description,
		n.EventID,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting notification for event %s: %w", n.EventID, err)
	}

	return nil
}

// ListNotifications returns all notifications, newest first.
func (db *DB) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, description, event_id, created_at
		 FROM notifications ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing notifications: %w", err)
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.Title, &n.Description, &n.EventID, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning notification row: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating notification rows: %w", err)
	}

	return notifications, nil
}
