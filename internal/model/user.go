// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other
// languages, but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Roles a user can hold. Everyone starts as an ordinary user; admins are
// promoted directly in the database (there is no self-service promotion).
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DietaryOptions is the fixed list of dietary-preference tags users and
// events can carry. Both user preferences and event tags are validated
// against this list, so a typo can never create a new category.
var DietaryOptions = []string{
	"Vegetarian", "Vegan", "Gluten-Free", "Dairy-Free", "Nut-Free",
	"Halal", "Kosher", "No Pork", "Low Sugar",
}

// ValidDietaryOption reports whether tag is one of DietaryOptions.
func ValidDietaryOption(tag string) bool {
	for _, opt := range DietaryOptions {
		if opt == tag {
			return true
		}
	}
	return false
}

// User represents a registered user account.
//
// We use Google OAuth as the identity provider, so the primary identifier is
// the verified email address Google returns. Email is the natural key: the
// UNIQUE constraint in the DB ensures one Google account maps to exactly one
// app account, and every other table references users by email.
//
// DietaryPreferences is ordered — the order the user picked the tags in is
// the order we show them back. On repeat sign-ins the stored preferences are
// carried forward, never overwritten with an empty list (see service/auth).
type User struct {
	Email              string    `json:"email"              db:"email"`
	Name               string    `json:"name"               db:"name"`
	DietaryPreferences []string  `json:"dietaryPreferences" db:"dietary_preferences"`
	Role               string    `json:"role"               db:"role"`
	CreatedAt          time.Time `json:"createdAt"          db:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt"          db:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
