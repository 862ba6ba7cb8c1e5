package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sparkbytes/server/internal/apperror"
	"github.com/sparkbytes/server/internal/model"
	"github.com/sparkbytes/server/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// UpsertUser inserts or updates a user keyed by email.
//
// Email is the natural key (it comes verified from the identity provider),
// so there is no generated ID here. On conflict we update name, preferences,
// and updated_at but leave role and created_at alone — a returning admin
// stays an admin.
//
// Preference merging (never overwrite with empty) is the service layer's
// job; by the time Upsert runs, user.DietaryPreferences is the final value.
func (db *DB) UpsertUser(ctx context.Context, user *model.User) error {
	prefs, err := encodeStrings(user.DietaryPreferences)
	if err != nil {
		return fmt.Errorf("sqlite: upserting user %s: %w", user.Email, err)
	}

	if user.Role == "" {
		user.Role = model.RoleUser
	}

	now := time.Now()
	user.UpdatedAt = now
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (email, name, dietary_preferences, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(email) DO UPDATE SET
			name                = excluded.name,
			dietary_preferences = excluded.dietary_preferences,
			updated_at          = excluded.updated_at`,
		user.Email,
		user.Name,
		prefs,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting user %s: %w", user.Email, err)
	}

	return nil
}

// GetUserByEmail retrieves a user by email.
// Returns apperror.ErrNotFound if no user exists with that email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var (
		u     model.User
		prefs string
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT email, name, dietary_preferences, role, created_at, updated_at
		 FROM users WHERE email = ?`,
		email,
	).Scan(
		&u.Email,
		&u.Name,
		&prefs,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", email, err)
	}

	if u.DietaryPreferences, err = decodeStrings(prefs); err != nil {
		return nil, fmt.Errorf("sqlite: getting user %s: %w", email, err)
	}

	return &u, nil
}
