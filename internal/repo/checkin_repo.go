// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the CheckIn
// aggregate (check-in, photos and answers).
//
// Every read and write is scoped by owner: a check-in belonging to another
// user is indistinguishable from a missing one and yields ErrNotFound.
//
// Functions:
//
//   - CreateCheckIn(ctx, db, ci) -> error
//     Inserts the check-in with its photos and answers in one transaction.
//
//   - GetCheckIn(ctx, db, id, userID) -> *domain.CheckIn, error
//     Loads one check-in with photos, answers and AI result.
//
//   - ListCheckIns(ctx, db, userID, sinceDate, limit) -> []domain.CheckIn, error
//     Newest first, restricted to Date >= sinceDate.
//
//   - RecentCheckIns(ctx, db, userID, target, limit) -> []domain.CheckIn, error
//     Prompt context: analyzed check-ins logged before target, newest first.
//
//   - CheckInsBetween(ctx, db, userID, from, to) -> []domain.CheckIn, error
//     Inclusive date range, oldest first, for weekly summaries.
//
//   - UpdateCheckIn(ctx, db, id, userID, notes, answers) -> error
//     Replaces notes and/or answers, the only mutable fields.
//
//   - DeleteCheckIn(ctx, db, id, userID) -> error
//     Removes the check-in and its dependent rows.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-habit-backend/internal/domain"
)

// CreateCheckIn persists ci together with its photos and answers. Missing
// IDs and timestamps are filled in.
func CreateCheckIn(ctx context.Context, db *gorm.DB, ci *domain.CheckIn) error {
	now := time.Now().UTC()
	if ci.ID == "" {
		ci.ID = uuid.NewString()
	}
	if ci.CreatedAt.IsZero() {
		ci.CreatedAt = now
	}
	ci.UpdatedAt = ci.CreatedAt
	for i := range ci.Photos {
		if ci.Photos[i].ID == "" {
			ci.Photos[i].ID = uuid.NewString()
		}
		ci.Photos[i].CheckInID = ci.ID
		ci.Photos[i].CreatedAt = ci.CreatedAt
	}
	if ci.Answers != nil {
		if ci.Answers.ID == "" {
			ci.Answers.ID = uuid.NewString()
		}
		ci.Answers.CheckInID = ci.ID
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("User", "AIResult").Create(ci).Error
	})
}

// GetCheckIn fetches a check-in owned by userID with its photos, answers and
// AI result.
func GetCheckIn(ctx context.Context, db *gorm.DB, id, userID string) (*domain.CheckIn, error) {
	var c domain.CheckIn
	err := db.WithContext(ctx).
		Preload("Photos", func(q *gorm.DB) *gorm.DB { return q.Order("created_at asc, id asc") }).
		Preload("Answers").
		Preload("AIResult").
		Where("id = ? AND user_id = ?", id, userID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCheckIns returns up to limit check-ins for userID dated on or after
// sinceDate (YYYY-MM-DD), newest first.
func ListCheckIns(ctx context.Context, db *gorm.DB, userID, sinceDate string, limit int) ([]domain.CheckIn, error) {
	var out []domain.CheckIn
	err := db.WithContext(ctx).
		Preload("Photos").
		Preload("Answers").
		Preload("AIResult").
		Where("user_id = ? AND date >= ?", userID, sinceDate).
		Order("date desc, created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// RecentCheckIns returns up to limit of the user's check-ins that precede
// target (by date, then creation time) and already have an AI result,
// newest first, with the results preloaded.
func RecentCheckIns(ctx context.Context, db *gorm.DB, userID string, target *domain.CheckIn, limit int) ([]domain.CheckIn, error) {
	var out []domain.CheckIn
	err := db.WithContext(ctx).
		Preload("AIResult").
		Where("user_id = ? AND id <> ?", userID, target.ID).
		Where("(date < ? OR (date = ? AND created_at < ?))", target.Date, target.Date, target.CreatedAt).
		Where("EXISTS (SELECT 1 FROM ai_results r WHERE r.check_in_id = check_ins.id)").
		Order("date desc, created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CheckInsBetween returns the user's check-ins dated within [from, to],
// oldest first, with AI results preloaded.
func CheckInsBetween(ctx context.Context, db *gorm.DB, userID, from, to string) ([]domain.CheckIn, error) {
	var out []domain.CheckIn
	err := db.WithContext(ctx).
		Preload("AIResult").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date asc, created_at asc").
		Find(&out).Error
	return out, err
}

// UpdateCheckIn replaces the notes and/or answers of a check-in owned by
// userID. A nil argument leaves that field unchanged. Returns ErrNotFound if
// the check-in is missing or owned by someone else.
func UpdateCheckIn(ctx context.Context, db *gorm.DB, id, userID string, notes *string, answers *domain.CheckInAnswers) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"updated_at": time.Now().UTC()}
		if notes != nil {
			updates["notes"] = *notes
		}
		res := tx.Model(&domain.CheckIn{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if answers == nil {
			return nil
		}

		a := *answers
		a.ID = uuid.NewString()
		a.CheckInID = id
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "check_in_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"drinks_calories", "alcohol", "snacks", "cooking_tastes",
				"supplements", "missed_meals", "hunger_level", "stress_level",
			}),
		}).Create(&a).Error
	})
}

// DeleteCheckIn removes a check-in owned by userID together with its photos,
// answers and AI result. The children are deleted explicitly so the result
// does not depend on the driver enforcing foreign keys.
func DeleteCheckIn(ctx context.Context, db *gorm.DB, id, userID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.CheckIn{}).
			Where("id = ? AND user_id = ?", id, userID).
			Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
		for _, child := range []any{&domain.CheckInPhoto{}, &domain.CheckInAnswers{}, &domain.AIResult{}} {
			if err := tx.Where("check_in_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ? AND user_id = ?", id, userID).Delete(&domain.CheckIn{}).Error
	})
}
