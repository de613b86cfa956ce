// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for AIResult and
// WeeklySummary, both of which are written at most once per key.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-habit-backend/internal/domain"
)

// GetResult returns the AI result for a check-in, or ErrNotFound.
func GetResult(ctx context.Context, db *gorm.DB, checkInID string) (*domain.AIResult, error) {
	var r domain.AIResult
	if err := db.WithContext(ctx).Where("check_in_id = ?", checkInID).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// SaveResult inserts r. The unique index on check_in_id arbitrates
// concurrent writers: the loser receives the persisted row and ErrDuplicate.
func SaveResult(ctx context.Context, db *gorm.DB, r *domain.AIResult) (*domain.AIResult, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	err := db.WithContext(ctx).Create(r).Error
	if err == nil {
		return r, nil
	}
	if !isUniqueViolation(err) {
		return nil, err
	}
	existing, gerr := GetResult(ctx, db, r.CheckInID)
	if gerr != nil {
		return nil, errors.Join(ErrDuplicate, gerr)
	}
	return existing, ErrDuplicate
}

// GetWeeklySummary returns the summary for (userID, weekKey), or ErrNotFound.
func GetWeeklySummary(ctx context.Context, db *gorm.DB, userID, weekKey string) (*domain.WeeklySummary, error) {
	var s domain.WeeklySummary
	err := db.WithContext(ctx).
		Where("user_id = ? AND week_key = ?", userID, weekKey).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveWeeklySummary inserts s with the same first-writer-wins semantics as
// SaveResult.
func SaveWeeklySummary(ctx context.Context, db *gorm.DB, s *domain.WeeklySummary) (*domain.WeeklySummary, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	err := db.WithContext(ctx).Create(s).Error
	if err == nil {
		return s, nil
	}
	if !isUniqueViolation(err) {
		return nil, err
	}
	existing, gerr := GetWeeklySummary(ctx, db, s.UserID, s.WeekKey)
	if gerr != nil {
		return nil, errors.Join(ErrDuplicate, gerr)
	}
	return existing, ErrDuplicate
}

// ListWeeklySummaries returns up to limit summaries for userID, newest week
// first.
func ListWeeklySummaries(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.WeeklySummary, error) {
	var out []domain.WeeklySummary
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("week_key desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}
