// Package services – IdempotencyService
//
// IdempotencyService records which resource an Idempotency-Key produced so a
// retried POST can be answered with the original resource instead of
// creating a second one. Records expire after TTL and are purged daily.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-habit-backend/internal/repo"
)

// IdempotencyService looks up and records idempotency keys.
type IdempotencyService struct {
	DB  *gorm.DB
	TTL time.Duration
}

// Lookup returns the resource recorded for (userID, scope, key) if it has
// not expired at now.
func (s *IdempotencyService) Lookup(ctx context.Context, userID, scope, key string, now time.Time) (string, bool, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, userID, scope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec.ResourceID, true, nil
}

// Remember records resourceID as the outcome of (userID, scope, key). A key
// already recorded by a concurrent retry is not an error.
func (s *IdempotencyService) Remember(ctx context.Context, userID, scope, key, resourceID string, status int) error {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	_, err := repo.CreateIdempotency(ctx, s.DB, userID, scope, key, resourceID, status, ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}
