// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User and
// Goal models.
//
// Users are keyed internally by a UUID and externally by the auth provider
// subject. Billing linkage (Stripe customer and subscription ids) and the
// subscription status are written by the webhook flow only.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tbourn/go-habit-backend/internal/domain"
)

// GetUser fetches a user by id with its goal preloaded.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Preload("Goal").
		Where("id = ?", id).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserBySubject fetches a user by external auth subject.
func GetUserBySubject(ctx context.Context, db *gorm.DB, subject string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Preload("Goal").
		Where("subject = ?", subject).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindOrCreateUser returns the user for subject, creating a free-tier user
// with default preferences on first sight. Concurrent first requests for the
// same subject converge on the row that won the unique index.
func FindOrCreateUser(ctx context.Context, db *gorm.DB, subject, email string) (*domain.User, bool, error) {
	u, err := GetUserBySubject(ctx, db, subject)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	now := time.Now().UTC()
	u = &domain.User{
		ID:          uuid.NewString(),
		Subject:     subject,
		Email:       email,
		Timezone:    "UTC",
		Preferences: datatypes.NewJSONType(domain.DefaultPreferences()),
		Status:      domain.StatusFree,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			u, err = GetUserBySubject(ctx, db, subject)
			return u, false, err
		}
		return nil, false, err
	}
	return u, true, nil
}

// UpdateOnboarding stores the selected goal, timezone and preferences and
// stamps OnboardedAt. Returns ErrNotFound if the user does not exist.
func UpdateOnboarding(ctx context.Context, db *gorm.DB, userID, goalID, timezone string, prefs domain.Preferences) error {
	now := time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"goal_id":      goalID,
			"timezone":     timezone,
			"preferences":  datatypes.NewJSONType(prefs),
			"onboarded_at": now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatusByCustomer updates the subscription status of the user linked to
// the Stripe customer. Returns ErrNotFound when no user is linked.
func SetStatusByCustomer(ctx context.Context, db *gorm.DB, customerID string, status domain.SubscriptionStatus, subscriptionID string) error {
	updates := map[string]any{"status": status, "updated_at": time.Now().UTC()}
	if subscriptionID != "" {
		updates["stripe_subscription_id"] = subscriptionID
	}
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("stripe_customer_id = ?", customerID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// LinkCustomer attaches Stripe ids to the user and sets its status.
func LinkCustomer(ctx context.Context, db *gorm.DB, userID, customerID, subscriptionID string, status domain.SubscriptionStatus) error {
	updates := map[string]any{
		"stripe_customer_id": customerID,
		"status":             status,
		"updated_at":         time.Now().UTC(),
	}
	if subscriptionID != "" {
		updates["stripe_subscription_id"] = subscriptionID
	}
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListProUserIDs returns the ids of users whose status unlocks pro features.
func ListProUserIDs(ctx context.Context, db *gorm.DB) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("status IN ?", []domain.SubscriptionStatus{domain.StatusActive, domain.StatusTrial}).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

// ListGoals returns every goal ordered by name.
func ListGoals(ctx context.Context, db *gorm.DB) ([]domain.Goal, error) {
	var out []domain.Goal
	err := db.WithContext(ctx).Order("name asc").Find(&out).Error
	return out, err
}

// GetGoal fetches a goal by id, or ErrNotFound.
func GetGoal(ctx context.Context, db *gorm.DB, id string) (*domain.Goal, error) {
	var g domain.Goal
	if err := db.WithContext(ctx).Where("id = ?", id).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}
