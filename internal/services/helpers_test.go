package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-habit-backend/internal/completion"
	"github.com/tbourn/go-habit-backend/internal/domain"
	"github.com/tbourn/go-habit-backend/internal/repo"
)

func sp(s string) *string { return &s }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, subject string, status domain.SubscriptionStatus) *domain.User {
	t.Helper()
	u, _, err := repo.FindOrCreateUser(context.Background(), db, subject, subject+"@example.com")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if status != domain.StatusFree {
		if err := db.Model(&domain.User{}).Where("id = ?", u.ID).Update("status", status).Error; err != nil {
			t.Fatalf("set status: %v", err)
		}
		u.Status = status
	}
	return u
}

func seedCheckIn(t *testing.T, db *gorm.DB, userID, date string, notes *string, photos ...string) *domain.CheckIn {
	t.Helper()
	ci := &domain.CheckIn{UserID: userID, Date: date, MealType: domain.MealLunch, Notes: notes}
	for _, p := range photos {
		ci.Photos = append(ci.Photos, domain.CheckInPhoto{URL: p})
	}
	if err := repo.CreateCheckIn(context.Background(), db, ci); err != nil {
		t.Fatalf("seed check-in: %v", err)
	}
	return ci
}

// fakeCompletion replays scripted replies and records every request.
type fakeCompletion struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	reqs    []completion.Request
}

func (f *fakeCompletion) Complete(_ context.Context, req completion.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := len(f.reqs)
	f.reqs = append(f.reqs, req)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	if len(f.replies) > 0 {
		return f.replies[len(f.replies)-1], nil
	}
	return "{}", nil
}

func (f *fakeCompletion) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

// panicCompletion panics on every call.
type panicCompletion struct{}

func (panicCompletion) Complete(context.Context, completion.Request) (string, error) {
	panic("boom")
}

const validFeedback = `{
  "type": "checkin_feedback",
  "habit_score": {"protein": "ok", "plants": "partial", "liquid_calories": "low", "snacks": "high", "timing": "needs_attention"},
  "feedback_short": "Solid lunch with good protein.",
  "one_action": "Add a side salad tomorrow.",
  "confidence": "medium",
  "flags": {"needs_clarification": false, "safety_escalation": false},
  "assumptions": []
}`

const escalatedFeedback = `{
  "type": "checkin_feedback",
  "habit_score": {"protein": "missing", "plants": "missing", "liquid_calories": "unknown", "snacks": "unknown", "timing": "unknown"},
  "feedback_short": "Let's check in with someone who can help.",
  "one_action": "Talk to a professional.",
  "confidence": "low",
  "flags": {"needs_clarification": true, "safety_escalation": true, "flag_reasons": ["mentions skipping meals for days"]},
  "assumptions": ["notes describe several skipped meals"]
}`

// invalidFeedback has an unknown top-level key.
const invalidFeedback = `{
  "type": "checkin_feedback",
  "habit_score": {"protein": "ok", "plants": "ok", "liquid_calories": "low", "snacks": "low", "timing": "ok"},
  "feedback_short": "Nice.",
  "one_action": "Keep going.",
  "confidence": "high",
  "flags": {"needs_clarification": false, "safety_escalation": false},
  "assumptions": [],
  "extra": true
}`

func fixedNow(s string) func() time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}
