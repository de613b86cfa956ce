// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file implements fixed-window usage counters shared by
// every instance of the service.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-habit-backend/internal/domain"
)

// ConsumeQuota takes one unit from the (userID, action, window) counter.
// The row is created on first use; the increment only applies while the
// count is below limit, so the database arbitrates concurrent callers.
// Returns the remaining units, or ErrQuotaExceeded when the window is spent.
func ConsumeQuota(ctx context.Context, db *gorm.DB, userID, action, window string, limit int, expiresAt time.Time) (int, error) {
	var remaining int
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := domain.UsageCounter{
			UserID:    userID,
			Action:    action,
			Window:    window,
			Count:     0,
			ExpiresAt: expiresAt,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}

		res := tx.Model(&domain.UsageCounter{}).
			Where("user_id = ? AND action = ? AND period = ? AND count < ?", userID, action, window, limit).
			Update("count", gorm.Expr("count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrQuotaExceeded
		}

		var c domain.UsageCounter
		if err := tx.Where("user_id = ? AND action = ? AND period = ?", userID, action, window).
			First(&c).Error; err != nil {
			return err
		}
		remaining = limit - c.Count
		return nil
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

// UsageCount returns the current count for a window, 0 when none exists.
func UsageCount(ctx context.Context, db *gorm.DB, userID, action, window string) (int, error) {
	var c domain.UsageCounter
	err := db.WithContext(ctx).
		Where("user_id = ? AND action = ? AND period = ?", userID, action, window).
		Limit(1).
		Find(&c).Error
	return c.Count, err
}

// PurgeExpiredUsage deletes counters whose window ended at or before now.
func PurgeExpiredUsage(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.UsageCounter{})
	return res.RowsAffected, res.Error
}
