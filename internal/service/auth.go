// Package service contains the business logic layer of the application.
//
// Handlers parse HTTP and write responses; services validate, enforce the
// rules, and orchestrate repositories; repositories talk to the database.
// Services receive repository interfaces, so tests swap in in-memory mocks
// and the HTTP layer never touches SQL.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sparkbytes/server/internal/apperror"
	"github.com/sparkbytes/server/internal/auth"
	"github.com/sparkbytes/server/internal/model"
	"github.com/sparkbytes/server/internal/repository"
)

// AuthService is the identity bridge: it maps a Google sign-in to the local
// user record and issues session tokens.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// AuthResult bundles the user record and the issued JWT so the callback
// handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// LoginOrRegister handles a completed Google sign-in.
//
// The sign-in itself carries no preference data, so the stored
// dietary preferences must survive the upsert: we read the existing record
// first and carry its preferences (and creation time) forward. A first-time
// sign-in starts with empty preferences.
//
// Any failure to read or upsert aborts the sign-in — the caller gets an
// error and no cookie is issued. No retries.
func (s *AuthService) LoginOrRegister(ctx context.Context, gUser *auth.GoogleUser) (*AuthResult, error) {
	if gUser == nil {
		return nil, fmt.Errorf("service/auth: Google user must not be nil")
	}

	user := &model.User{
		Email:              gUser.Email,
		Name:               gUser.Name,
		DietaryPreferences: []string{},
	}

	// Returning user: carry forward everything the sign-in doesn't know
	// about. apperror.ErrNotFound means first login; any other read error
	// aborts the sign-in rather than risk wiping the stored preferences.
	existing, err := s.users.GetUserByEmail(ctx, gUser.Email)
	switch {
	case err == nil:
		user.DietaryPreferences = existing.DietaryPreferences
		user.Role = existing.Role
		user.CreatedAt = existing.CreatedAt
	case errors.Is(err, apperror.ErrNotFound):
		// first sign-in, nothing to carry forward
	default:
		return nil, fmt.Errorf("service/auth: looking up user %s: %w", gUser.Email, err)
	}

	if err := s.users.UpsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user %s: %w", gUser.Email, err)
	}

	s.logger.Info("user signed in",
		slog.String("email", user.Email),
		slog.Bool("firstLogin", existing == nil),
	)

	token, err := s.tokens.Generate(user.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for %s: %w", user.Email, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// GetUser returns the user record for the given email.
// Used by /api/me after the middleware validates the session cookie.
func (s *AuthService) GetUser(ctx context.Context, email string) (*model.User, error) {
	if email == "" {
		return nil, fmt.Errorf("service/auth: user email must not be empty")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", email, err)
	}

	return user, nil
}

// SetPreferences replaces the user's dietary-preference tags.
//
// Tags are validated against the fixed option list and de-duplicated while
// keeping the order the user picked them in. An explicit empty list IS
// allowed here — this is the user editing their own profile, unlike the
// sign-in path where empty means "no information".
func (s *AuthService) SetPreferences(ctx context.Context, email string, prefs []string) (*model.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", email, err)
	}

	cleaned := make([]string, 0, len(prefs))
	seen := map[string]bool{}
	for _, p := range prefs {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		if !model.ValidDietaryOption(p) {
			return nil, apperror.ValidationFailed("dietaryPreferences",
				fmt.Sprintf("%q is not a recognized dietary preference", p))
		}
		seen[p] = true
		cleaned = append(cleaned, p)
	}

	user.DietaryPreferences = cleaned
	if err := s.users.UpsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: updating preferences for %s: %w", email, err)
	}

	s.logger.Info("preferences updated",
		slog.String("email", email),
		slog.Int("count", len(cleaned)),
	)

	return user, nil
}

// ValidateToken validates a JWT string and returns the email it encodes.
// Thin delegation so callers only import the service package.
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	email, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return "", fmt.Errorf("service/auth: %w", err)
	}
	return email, nil
}
