// Package services – QuotaService
//
// QuotaService enforces the per-user daily limits on check-ins, analyses and
// upload URLs. Counters live in the shared usage_counters table and reset at
// UTC midnight, so limits hold across every instance of the service.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-habit-backend/internal/config"
	"github.com/tbourn/go-habit-backend/internal/repo"
)

// Quota actions.
const (
	ActionCheckIn = "checkin"
	ActionAnalyze = "analyze"
	ActionUpload  = "upload"
)

const dayLayout = "2006-01-02"

// QuotaService consumes and inspects daily usage counters.
type QuotaService struct {
	DB *gorm.DB
	// Limits maps an action to its daily allowance. Actions without an
	// entry are unlimited.
	Limits map[string]int
	// Now is overridable in tests.
	Now func() time.Time
}

// NewQuotaService builds a QuotaService from the configured limits.
func NewQuotaService(db *gorm.DB, cfg config.QuotaConfig) *QuotaService {
	return &QuotaService{
		DB: db,
		Limits: map[string]int{
			ActionCheckIn: cfg.CheckInsPerDay,
			ActionAnalyze: cfg.AnalysesPerDay,
			ActionUpload:  cfg.UploadsPerDay,
		},
		Now: time.Now,
	}
}

// Consume takes one unit of action for userID and returns what is left of
// today's allowance. ErrQuotaExceeded is returned once the allowance is spent.
func (s *QuotaService) Consume(ctx context.Context, userID, action string) (int, error) {
	limit, ok := s.Limits[action]
	if !ok || limit <= 0 {
		return -1, nil
	}
	day, reset := s.window()
	remaining, err := repo.ConsumeQuota(ctx, s.DB, userID, action, day, limit, reset)
	if errors.Is(err, repo.ErrQuotaExceeded) {
		return 0, ErrQuotaExceeded
	}
	return remaining, err
}

// Remaining reports today's unused allowance for action without consuming it.
func (s *QuotaService) Remaining(ctx context.Context, userID, action string) (int, error) {
	limit, ok := s.Limits[action]
	if !ok || limit <= 0 {
		return -1, nil
	}
	day, _ := s.window()
	used, err := repo.UsageCount(ctx, s.DB, userID, action, day)
	if err != nil {
		return 0, err
	}
	if used >= limit {
		return 0, nil
	}
	return limit - used, nil
}

// PurgeExpired deletes expired usage counters and idempotency records.
func (s *QuotaService) PurgeExpired(ctx context.Context) (usage, idem int64, err error) {
	now := s.now()
	if usage, err = repo.PurgeExpiredUsage(ctx, s.DB, now); err != nil {
		return 0, 0, err
	}
	if idem, err = repo.PurgeExpiredIdempotency(ctx, s.DB, now); err != nil {
		return usage, 0, err
	}
	return usage, idem, nil
}

// window returns the current UTC day key and the instant it ends.
func (s *QuotaService) window() (string, time.Time) {
	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start.Format(dayLayout), start.AddDate(0, 0, 1)
}

func (s *QuotaService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
