// Package services – UserService
//
// UserService resolves authenticated subjects to users, serves the goal
// catalogue and applies onboarding (goal, timezone and preferences).
// Preferences are normalized and validated here, once, so the rest of the
// system can read them without re-checking.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // timezone validation must not depend on the host zoneinfo

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-habit-backend/internal/domain"
	"github.com/tbourn/go-habit-backend/internal/repo"
)

// OnboardingInput is the payload accepted by Onboard.
type OnboardingInput struct {
	GoalID      string
	Timezone    string
	Preferences domain.Preferences
}

// UserService implements identity and onboarding use cases.
type UserService struct {
	DB *gorm.DB
}

// Resolve returns the user for an external auth subject, creating a free
// account on first sight.
func (s *UserService) Resolve(ctx context.Context, subject, email string) (*domain.User, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, ErrUserRequired
	}
	u, created, err := repo.FindOrCreateUser(ctx, s.DB, subject, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if created {
		loggerFrom(ctx).Info().Str("user_id", u.ID).Msg("user created")
	}
	return u, nil
}

// Get loads a user with its goal.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// ListGoals returns the goal catalogue ordered by name.
func (s *UserService) ListGoals(ctx context.Context) ([]domain.Goal, error) {
	return repo.ListGoals(ctx, s.DB)
}

// Onboard stores the user's goal, timezone and preferences and returns the
// updated user. An empty timezone means UTC.
func (s *UserService) Onboard(ctx context.Context, userID string, in OnboardingInput) (*domain.User, error) {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "Onboard",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("goal.id", in.GoalID),
		),
	)
	defer span.End()

	if _, err := repo.GetGoal(ctx, s.DB, strings.TrimSpace(in.GoalID)); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}

	tz := strings.TrimSpace(in.Timezone)
	if tz == "" {
		tz = "UTC"
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, ErrInvalidTimezone
	}

	prefs := in.Preferences.Normalize()
	if err := prefs.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreferences, err)
	}

	if err := repo.UpdateOnboarding(ctx, s.DB, userID, strings.TrimSpace(in.GoalID), tz, prefs); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.Get(ctx, userID)
}
